package report

import (
	"fmt"

	"github.com/notnil/chess"
)

// ValidateMoves replays SAN move tokens from the starting position and
// returns the number of legal moves applied. Comment, NAG, and variation
// tokens are skipped (variations in full, at any nesting). The first illegal
// move stops the replay with an error.
func ValidateMoves(moves []string) (int, error) {
	game := chess.NewGame()
	applied := 0
	depth := 0

	for _, tok := range moves {
		switch {
		case tok == "(":
			depth++
			continue
		case tok == ")":
			if depth > 0 {
				depth--
			}
			continue
		case depth > 0:
			continue
		case tok == "" || tok[0] == '{' || tok[0] == '$':
			continue
		}
		if err := game.MoveStr(tok); err != nil {
			return applied, fmt.Errorf("move %d %q: %w", applied+1, tok, err)
		}
		applied++
	}
	return applied, nil
}
