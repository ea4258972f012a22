package chess

import (
	"fmt"
	"strings"
)

// ParseSquare converts algebraic notation ("e4") into a square. It returns
// NoSquare for anything else.
func ParseSquare(sq string) Square {
	if len(sq) != 2 {
		return NoSquare
	}

	file := int(sq[0]) - 'a'
	rank := int(sq[1]) - '1'

	s, ok := SquareAt(rank, file)
	if !ok {
		return NoSquare
	}
	return s
}

// ParseMove reads move text such as "e2e4" or "e2-e4".
func ParseMove(text string) (Move, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if len(s) == 5 && s[2] == '-' {
		s = s[:2] + s[3:]
	}
	if len(s) != 4 {
		return NoMove, fmt.Errorf("%w, got %q", ErrMoveFormat, text)
	}

	from := ParseSquare(s[:2])
	to := ParseSquare(s[2:])
	if from == NoSquare || to == NoSquare {
		return NoMove, fmt.Errorf("%w: %q", ErrBadSquare, text)
	}
	return Move{From: from, To: to}, nil
}

// IsQuitCommand reports whether text asks to end the session.
func IsQuitCommand(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "q", "quit":
		return true
	default:
		return false
	}
}
