package pgnstream

// tokenizeMoves appends the move tokens of one movetext line to dst. Move
// numbers ("1.", "23...") and terminating results are dropped; SAN moves,
// NAGs, and brace comments (clock/eval annotations in the Lichess dumps)
// survive, a comment as one token. A comment left open at end of line is
// closed there; the dumps never wrap them.
func tokenizeMoves(dst []string, line string) []string {
	for i := 0; i < len(line); {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '{':
			end := indexByteFrom(line, '}', i)
			if end < 0 {
				dst = append(dst, line[i:]+"}")
				return dst
			}
			dst = append(dst, line[i:end+1])
			i = end + 1
		case c == '(' || c == ')':
			// Variation delimiters, kept so the caller can see structure.
			dst = append(dst, string(c))
			i++
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' && line[j] != '{' {
				j++
			}
			tok := line[i:j]
			i = j
			if isMoveNumber(tok) || isResult(tok) {
				continue
			}
			dst = append(dst, tok)
		}
	}
	return dst
}

func indexByteFrom(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// isMoveNumber matches "12." and "12..." style tokens.
func isMoveNumber(tok string) bool {
	n := 0
	for n < len(tok) && tok[n] >= '0' && tok[n] <= '9' {
		n++
	}
	if n == 0 {
		return false
	}
	for i := n; i < len(tok); i++ {
		if tok[i] != '.' {
			return false
		}
	}
	return true
}

func isResult(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}
