package pgnstream

import (
	"reflect"
	"testing"
)

func TestTokenizeMoves(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain",
			line: "1. e4 e5 2. Nf3 Nc6 1-0",
			want: []string{"e4", "e5", "Nf3", "Nc6"},
		},
		{
			name: "black continuation numbers",
			line: "12... Qxd4 13. Rd1 *",
			want: []string{"Qxd4", "Rd1"},
		},
		{
			name: "comments kept whole",
			line: `1. e4 { [%eval 0.2] [%clk 0:05:00] } e5 1/2-1/2`,
			want: []string{"e4", "{ [%eval 0.2] [%clk 0:05:00] }", "e5"},
		},
		{
			name: "nags survive",
			line: "1. e4 $1 e5 $2",
			want: []string{"e4", "$1", "e5", "$2"},
		},
		{
			name: "unterminated comment closed at eol",
			line: "1. e4 { no closer",
			want: []string{"e4", "{ no closer}"},
		},
		{
			name: "castling not mistaken for numbers",
			line: "10. O-O O-O-O 11. Kb1",
			want: []string{"O-O", "O-O-O", "Kb1"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tokenizeMoves(nil, tc.line)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("tokenizeMoves(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	cases := []struct {
		line   string
		key    string
		value  string
		wantOK bool
	}{
		{`[Event "Rated Blitz game"]`, "Event", "Rated Blitz game", true},
		{`[Site "https://lichess.org/abc"]`, "Site", "https://lichess.org/abc", true},
		{`[Opening "King's \"Gambit\""]`, "Opening", `King's \"Gambit\"`, true},
		{`[Empty ""]`, "Empty", "", true},
		{`[Event "missing bracket"`, "", "", false},
		{`[NoQuotes]`, "", "", false},
		{`not a tag`, "", "", false},
		{`[ "value only"]`, "", "", false},
	}

	for _, tc := range cases {
		key, value, ok := parseTag(tc.line)
		if ok != tc.wantOK || key != tc.key || value != tc.value {
			t.Errorf("parseTag(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.line, key, value, ok, tc.key, tc.value, tc.wantOK)
		}
	}
}
