// Command users fetches player stats for a list of usernames from Lichess or
// Chess.com and writes them to a compressed JSON file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/chesscom"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/dump"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/lichess"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/logx"
)

func main() {
	var (
		site     = flag.String("site", "lichess", "Which API to query: lichess or chesscom")
		inPath   = flag.String("in", "", "File with one username per line (\"-\" = stdin); positional args are appended")
		outPath  = flag.String("out", "users.json.zst", "Output path (.json, .json.gz, .json.zst)")
		workers  = flag.Int("workers", 8, "Parallel requests")
		timeout  = flag.Duration("timeout", 30*time.Second, "Per-request timeout")
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	logger := logx.New(*logLevel)

	usernames, err := readUsernames(*inPath)
	if err != nil {
		logger.Fatal().Err(err).Str("in", *inPath).Msg("read usernames")
	}
	usernames = append(usernames, flag.Args()...)
	if len(usernames) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: users --site lichess|chesscom [--in names.txt] [username ...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info().
		Str("site", *site).
		Int("usernames", len(usernames)).
		Int("workers", *workers).
		Msg("fetching user data")
	startTime := time.Now()

	var (
		fetched int
		result  any
	)
	switch *site {
	case "lichess":
		client := lichess.New(lichess.Config{Workers: *workers, Timeout: *timeout, Logger: logger})
		users, err := client.UsersByIDs(ctx, usernames)
		if err != nil {
			logger.Fatal().Err(err).Msg("lichess lookup failed")
		}
		fetched, result = len(users), users
	case "chesscom":
		client := chesscom.New(chesscom.Config{Workers: *workers, Timeout: *timeout, Logger: logger})
		players, err := client.Players(ctx, usernames)
		if err != nil {
			logger.Fatal().Err(err).Msg("chess.com lookup failed")
		}
		fetched, result = len(players), players
	default:
		logger.Fatal().Str("site", *site).Msg("unknown site")
	}

	if err := dump.Save(*outPath, result); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}

	logger.Info().
		Int("requested", len(usernames)).
		Int("fetched", fetched).
		Str("out", *outPath).
		Dur("elapsed", time.Since(startTime)).
		Msg("user data written")
}

func readUsernames(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
		defer f.Close()
	}

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	return names, sc.Err()
}
