// Command extract streams game records out of a compressed PGN archive and
// writes them as JSON lines, or prints a result tally by time format.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/logx"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/pgnstream"
	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/report"
)

type record struct {
	Tags  map[string]string `json:"tags,omitempty"`
	Moves []string          `json:"moves,omitempty"`
}

func main() {
	var (
		archivePath = flag.String("archive", "", "Path to PGN archive (.pgn, .pgn.zst, .pgn.gz, .pgn.bz2)")
		tagList     = flag.String("tags", "Event,Result", "Comma-separated header tags to extract")
		withMoves   = flag.Bool("moves", false, "Include movetext tokens")
		maxGames    = flag.Int("max-games", 0, "Maximum games to extract (0 = unlimited)")
		strict      = flag.Bool("strict", false, "Discard games with malformed tag lines instead of just the line")
		outPath     = flag.String("out", "-", "JSONL output path (\"-\" = stdout)")
		tally       = flag.Bool("tally", false, "Print a result tally by time format instead of records")
		validate    = flag.Bool("validate", false, "Replay moves and count games with illegal movetext")
		logLevel    = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *archivePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: extract --archive <file.pgn[.zst]> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.New(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tags := splitTags(*tagList)
	if *tally {
		// The tally is computed from these two tags.
		tags = appendMissing(tags, "Event", "Result")
	}

	opts := pgnstream.Options{
		Tags:         tags,
		IncludeMoves: *withMoves || *validate,
		MaxGames:     -1,
		Strict:       *strict,
	}
	if *maxGames > 0 {
		opts.MaxGames = *maxGames
	}

	ex, err := pgnstream.Open(*archivePath, opts)
	if err != nil {
		logger.Fatal().Err(err).Str("archive", *archivePath).Msg("open archive")
	}
	defer ex.Close()

	var out io.Writer = os.Stdout
	if *outPath != "-" && !*tally {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Fatal().Err(err).Str("out", *outPath).Msg("create output")
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)

	logger.Info().
		Str("archive", *archivePath).
		Strs("tags", tags).
		Bool("moves", opts.IncludeMoves).
		Int("max_games", *maxGames).
		Msg("starting extraction")

	counts := report.NewTally()
	var invalid int
	startTime := time.Now()
	lastLog := time.Now()

gameLoop:
	for ex.Next() {
		select {
		case <-ctx.Done():
			logger.Info().Int("games", ex.GamesRead()).Msg("interrupted")
			break gameLoop
		default:
		}

		g := ex.Game()

		if *validate {
			if _, err := report.ValidateMoves(g.Moves); err != nil {
				invalid++
				logger.Debug().Err(err).Int("game", ex.GamesRead()).Msg("illegal movetext")
			}
		}

		if *tally {
			counts.Add(g.Tags["Event"], g.Tags["Result"])
		} else {
			rec := record{Tags: g.Tags}
			if *withMoves {
				rec.Moves = g.Moves
			}
			if err := enc.Encode(rec); err != nil {
				logger.Fatal().Err(err).Msg("write record")
			}
		}

		if time.Since(lastLog) > 10*time.Second {
			elapsed := time.Since(startTime)
			logger.Info().
				Int("games", ex.GamesRead()).
				Int("skipped", ex.Skipped()).
				Float64("games_per_sec", float64(ex.GamesRead())/elapsed.Seconds()).
				Msg("extraction progress")
			lastLog = time.Now()
		}
	}

	if err := ex.Err(); err != nil {
		logger.Fatal().Err(err).Msg("archive stream failed")
	}

	if *tally {
		fmt.Print(counts.String())
	}

	elapsed := time.Since(startTime)
	done := logger.Info().
		Int("games", ex.GamesRead()).
		Int("skipped", ex.Skipped()).
		Dur("elapsed", elapsed)
	if *validate {
		done = done.Int("illegal_movetext", invalid)
	}
	done.Msg("extraction complete")
}

func splitTags(list string) []string {
	var tags []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func appendMissing(tags []string, extra ...string) []string {
	for _, e := range extra {
		found := false
		for _, t := range tags {
			if t == e {
				found = true
				break
			}
		}
		if !found {
			tags = append(tags, e)
		}
	}
	return tags
}
