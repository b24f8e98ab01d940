// Package report aggregates extracted game records into the summaries the
// command-line tools print.
package report

import (
	"fmt"
	"strings"
)

// DefaultFormats are the Lichess time-format words tallied when the caller
// does not choose their own.
var DefaultFormats = []string{"Bullet", "Blitz", "Classical"}

// Tally counts game results per time format. The format is the second word
// of the Event tag ("Rated Blitz game" -> "Blitz"), the way the Lichess
// dumps name them.
type Tally struct {
	formats []string
	index   map[string]int
	wins    []int
	draws   []int
	losses  []int
}

// NewTally creates a tally over the given formats, or DefaultFormats when
// none are given.
func NewTally(formats ...string) *Tally {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	t := &Tally{
		formats: formats,
		index:   make(map[string]int, len(formats)),
		wins:    make([]int, len(formats)),
		draws:   make([]int, len(formats)),
		losses:  make([]int, len(formats)),
	}
	for i, f := range formats {
		t.index[f] = i
	}
	return t
}

// Add records one game from its Event and Result tags. Games in formats the
// tally does not track, or with unknown results, are ignored; the return
// value reports whether the game counted.
func (t *Tally) Add(event, result string) bool {
	words := strings.Fields(event)
	if len(words) < 2 {
		return false
	}
	i, tracked := t.index[words[1]]
	if !tracked {
		return false
	}
	switch result {
	case "1-0":
		t.wins[i]++
	case "1/2-1/2":
		t.draws[i]++
	case "0-1":
		t.losses[i]++
	default:
		return false
	}
	return true
}

// Row is one format's results, with percentages of that format's total.
type Row struct {
	Format string
	Games  int
	Wins   int
	Draws  int
	Losses int

	WinPct  float64
	DrawPct float64
	LossPct float64
}

// Rows returns one row per tracked format, in construction order.
func (t *Tally) Rows() []Row {
	rows := make([]Row, len(t.formats))
	for i, f := range t.formats {
		r := Row{
			Format: f,
			Wins:   t.wins[i],
			Draws:  t.draws[i],
			Losses: t.losses[i],
		}
		r.Games = r.Wins + r.Draws + r.Losses
		if r.Games > 0 {
			r.WinPct = 100 * float64(r.Wins) / float64(r.Games)
			r.DrawPct = 100 * float64(r.Draws) / float64(r.Games)
			r.LossPct = 100 * float64(r.Losses) / float64(r.Games)
		}
		rows[i] = r
	}
	return rows
}

// String renders the tally as a fixed-width table.
func (t *Tally) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %8s %8s %8s %8s %7s %7s %7s\n",
		"Format", "Games", "1-0", "1/2", "0-1", "Win%", "Draw%", "Loss%")
	for _, r := range t.Rows() {
		fmt.Fprintf(&sb, "%-12s %8d %8d %8d %8d %6.1f%% %6.1f%% %6.1f%%\n",
			r.Format, r.Games, r.Wins, r.Draws, r.Losses, r.WinPct, r.DrawPct, r.LossPct)
	}
	return sb.String()
}
