package report_test

import (
	"strings"
	"testing"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/report"
)

func TestTally(t *testing.T) {
	tally := report.NewTally()

	games := []struct {
		event, result string
		counted       bool
	}{
		{"Rated Blitz game", "1-0", true},
		{"Rated Blitz game", "0-1", true},
		{"Rated Blitz game", "1/2-1/2", true},
		{"Rated Bullet game", "1-0", true},
		{"Rated Classical game", "0-1", true},
		{"Rated Correspondence game", "1-0", false}, // untracked format
		{"Rated Blitz game", "*", false},            // unknown result
		{"Casual", "1-0", false},                    // no format word
	}
	for _, g := range games {
		if got := tally.Add(g.event, g.result); got != g.counted {
			t.Errorf("Add(%q, %q) = %v, want %v", g.event, g.result, got, g.counted)
		}
	}

	rows := tally.Rows()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	blitz := rows[1]
	if blitz.Format != "Blitz" || blitz.Games != 3 || blitz.Wins != 1 || blitz.Draws != 1 || blitz.Losses != 1 {
		t.Errorf("blitz row = %+v", blitz)
	}
	if blitz.WinPct < 33.2 || blitz.WinPct > 33.4 {
		t.Errorf("blitz win%% = %f, want ~33.3", blitz.WinPct)
	}

	if out := tally.String(); !strings.Contains(out, "Bullet") || !strings.Contains(out, "33.3%") {
		t.Errorf("table output missing expected cells:\n%s", out)
	}
}

func TestValidateMoves(t *testing.T) {
	applied, err := report.ValidateMoves([]string{"e4", "{ [%clk 0:01:00] }", "e5", "$1", "Nf3", "Nc6", "Bb5"})
	if err != nil {
		t.Fatalf("ValidateMoves: %v", err)
	}
	if applied != 5 {
		t.Errorf("applied = %d, want 5", applied)
	}
}

func TestValidateMovesIllegal(t *testing.T) {
	applied, err := report.ValidateMoves([]string{"e4", "e5", "Ke4"})
	if err == nil {
		t.Fatal("expected an illegal-move error")
	}
	if applied != 2 {
		t.Errorf("applied = %d, want the legal prefix counted", applied)
	}
}

func TestValidateMovesSkipsVariations(t *testing.T) {
	applied, err := report.ValidateMoves([]string{"e4", "(", "d4", "d5", ")", "e5"})
	if err != nil {
		t.Fatalf("ValidateMoves: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2 (variation skipped)", applied)
	}
}
