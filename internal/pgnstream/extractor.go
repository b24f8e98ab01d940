// Package pgnstream extracts game records from block-compressed PGN archives
// such as the Lichess database dumps. Decompression and line scanning are
// incremental, so memory stays bounded to one game's header and movetext no
// matter how large the archive is.
package pgnstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound reports that the archive path does not exist.
var ErrNotFound = errors.New("pgn archive not found")

// FormatError reports container-level corruption: the archive could not be
// decompressed, either on open or mid-stream. Partial decompression cannot be
// trusted, so these are fatal to the extraction.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string { return fmt.Sprintf("pgn archive %s: %v", e.Path, e.Err) }
func (e *FormatError) Unwrap() error { return e.Err }

// Options configures an extraction pass.
type Options struct {
	// Tags is the set of header tags to project into each game. Tags absent
	// from the source are absent from the result; nothing is fabricated.
	// Empty means no tags are collected.
	Tags []string

	// IncludeMoves retains movetext as SAN tokens (move numbers and the
	// terminating result stripped, brace comments kept as single tokens).
	IncludeMoves bool

	// MaxGames caps how many games the extractor yields. Negative means
	// unlimited; zero yields nothing.
	MaxGames int

	// Strict discards whole games containing malformed tag lines instead of
	// dropping just the offending line.
	Strict bool
}

// Game is one extracted record. It is handed to the caller and never
// retained by the extractor.
type Game struct {
	Tags  map[string]string
	Moves []string
}

// Extractor is a pull-based scanner over an archive's games:
//
//	ex, err := pgnstream.Open(path, opts)
//	...
//	defer ex.Close()
//	for ex.Next() {
//	    g := ex.Game()
//	    ...
//	}
//	if err := ex.Err(); err != nil { ... }
//
// An exhausted extractor cannot be rewound; a second pass reopens the archive.
type Extractor struct {
	path     string
	file     *os.File
	closeDec func()
	sc       *bufio.Scanner
	opts     Options
	want     map[string]struct{}

	pending string // pushed-back header line between games
	hasPend bool

	cur     *Game
	err     error
	done    bool
	closed  bool
	yielded int
	skipped int
}

// Open opens a decompression stream over the archive at path. It fails with
// an error wrapping ErrNotFound when the path does not exist and with a
// *FormatError when the container cannot be decoded.
func Open(path string, opts Options) (*Extractor, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	r, closeDec, err := openContainer(f, path)
	if err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Err: err}
	}

	// Pull the first block now so a truncated or foreign file fails at Open
	// rather than on the first Next.
	br := bufio.NewReaderSize(r, 64*1024)
	if _, err := br.Peek(1); err != nil && err != io.EOF {
		closeDec()
		f.Close()
		return nil, &FormatError{Path: path, Err: err}
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	want := make(map[string]struct{}, len(opts.Tags))
	for _, t := range opts.Tags {
		want[t] = struct{}{}
	}

	return &Extractor{
		path:     path,
		file:     f,
		closeDec: closeDec,
		sc:       sc,
		opts:     opts,
		want:     want,
	}, nil
}

// Next advances to the next game. It returns false when the stream is
// exhausted, the MaxGames cap is reached, or an error occurred; Err
// distinguishes failure from normal completion.
func (e *Extractor) Next() bool {
	if e.err != nil || e.done || e.closed {
		return false
	}
	if e.opts.MaxGames >= 0 && e.yielded >= e.opts.MaxGames {
		e.done = true
		return false
	}
	g, err := e.scanGame()
	if err != nil {
		if err == io.EOF {
			e.done = true
		} else {
			e.err = err
		}
		return false
	}
	e.cur = g
	e.yielded++
	return true
}

// Game returns the record produced by the last successful Next.
func (e *Extractor) Game() *Game { return e.cur }

// Err returns the fatal error that stopped the stream, or nil if iteration
// ended by exhaustion, cap, or Close.
func (e *Extractor) Err() error { return e.err }

// GamesRead reports how many games have been yielded so far.
func (e *Extractor) GamesRead() int { return e.yielded }

// Skipped reports how many games were discarded by strict-mode recovery.
func (e *Extractor) Skipped() int { return e.skipped }

// Close releases the decoder and the underlying file. Safe to call at any
// point of the iteration, including before exhaustion.
func (e *Extractor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.closeDec != nil {
		e.closeDec()
	}
	return e.file.Close()
}

// scanGame reads lines until one complete game has been accumulated. It
// returns io.EOF on clean exhaustion and *FormatError when the decompressor
// fails mid-stream.
func (e *Extractor) scanGame() (*Game, error) {
	var (
		tags      map[string]string
		rawTags   int
		moves     []string
		sawMoves  bool
		inMoves   bool
		malformed bool
	)
	reset := func() {
		tags = nil
		rawTags = 0
		moves = nil
		sawMoves = false
		inMoves = false
		malformed = false
	}
	build := func() *Game {
		g := &Game{Tags: tags}
		if g.Tags == nil {
			g.Tags = map[string]string{}
		}
		if e.opts.IncludeMoves {
			g.Moves = moves
		}
		return g
	}

	for {
		line, ok, err := e.nextLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			if rawTags == 0 && !sawMoves {
				return nil, io.EOF
			}
			if e.opts.Strict && malformed {
				e.skipped++
				return nil, io.EOF
			}
			return build(), nil
		}

		line = strings.TrimRight(line, " \t\r")
		switch {
		case line == "":
			if inMoves && sawMoves {
				// Game boundary.
				if e.opts.Strict && malformed {
					e.skipped++
					reset()
					continue
				}
				return build(), nil
			}
			if !inMoves && rawTags > 0 {
				inMoves = true
			}
			// Stray blank before any header: ignore.

		case line[0] == '[':
			key, val, tagOK := parseTag(line)
			if !tagOK {
				// Malformed header line. Drop it and resync on the next
				// recognizable line; strict mode poisons the whole game.
				malformed = true
				continue
			}
			if inMoves {
				// Header of the next game. Push it back and emit what we
				// have, movetext or not.
				e.pending, e.hasPend = line, true
				if e.opts.Strict && (malformed || !sawMoves) {
					e.skipped++
					reset()
					continue
				}
				return build(), nil
			}
			rawTags++
			if _, wanted := e.want[key]; wanted {
				if tags == nil {
					tags = make(map[string]string, len(e.want))
				}
				tags[key] = val
			}

		case line[0] == '%':
			// Escape-notation line, ignored per the export format.

		default:
			if !inMoves {
				inMoves = true // missing blank separator, tolerate
			}
			sawMoves = true
			if e.opts.IncludeMoves {
				moves = tokenizeMoves(moves, line)
			}
		}
	}
}

func (e *Extractor) nextLine() (string, bool, error) {
	if e.hasPend {
		e.hasPend = false
		return e.pending, true, nil
	}
	if e.sc.Scan() {
		return e.sc.Text(), true, nil
	}
	if err := e.sc.Err(); err != nil {
		return "", false, &FormatError{Path: e.path, Err: err}
	}
	return "", false, nil
}

// parseTag parses a `[Key "Value"]` header line.
func parseTag(line string) (key, value string, ok bool) {
	if len(line) < 7 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", "", false
	}
	inner := line[1 : len(line)-1]
	open := strings.IndexByte(inner, '"')
	if open < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(inner[:open])
	rest := inner[open+1:]
	end := strings.LastIndexByte(rest, '"')
	if end < 0 || key == "" {
		return "", "", false
	}
	return key, rest[:end], true
}
