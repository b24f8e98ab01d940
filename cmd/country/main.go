// Command country lists every Chess.com username registered under a country
// code, to stdout or a compressed JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/chesscom"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/dump"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/logx"
)

func main() {
	var (
		code     = flag.String("code", "", "ISO 3166 alpha-2 country code (XW = Wales, XS = Scotland, ...)")
		outPath  = flag.String("out", "", "Output path (.json, .json.gz, .json.zst); empty prints one name per line")
		timeout  = flag.Duration("timeout", 2*time.Minute, "Request timeout; large countries are slow")
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *code == "" {
		fmt.Fprintln(os.Stderr, "Usage: country --code <XX> [--out players.json.zst]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.New(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := chesscom.New(chesscom.Config{Timeout: *timeout, Logger: logger})

	startTime := time.Now()
	players, err := client.CountryPlayers(ctx, *code)
	if err != nil {
		logger.Fatal().Err(err).Str("code", *code).Msg("country lookup failed")
	}

	if *outPath == "" {
		for _, p := range players {
			fmt.Println(p)
		}
	} else if err := dump.Save(*outPath, players); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}

	logger.Info().
		Str("code", *code).
		Int("players", len(players)).
		Dur("elapsed", time.Since(startTime)).
		Msg("country listing complete")
}
