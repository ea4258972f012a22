package chess

import (
	"strings"
	"unicode"
)

const (
	EmptyChar   = '.'
	UnknownChar = '#'
)

// Letter returns the grid character for p: KQRBNP for White, lowercase for
// Black, '.' for empty and '#' for unknown.
func (p Piece) Letter() byte {
	var c byte
	switch p.Kind {
	case Pawn:
		c = 'P'
	case Knight:
		c = 'N'
	case Bishop:
		c = 'B'
	case Rook:
		c = 'R'
	case Queen:
		c = 'Q'
	case King:
		c = 'K'
	case Hidden:
		return UnknownChar
	default:
		return EmptyChar
	}
	if p.Color == Black {
		c += 'a' - 'A'
	}
	return c
}

func pieceFromLetter(r rune) (Piece, bool) {
	color := White
	if unicode.IsLower(r) {
		color = Black
	}
	var kind PieceKind
	switch unicode.ToUpper(r) {
	case 'P':
		kind = Pawn
	case 'N':
		kind = Knight
	case 'B':
		kind = Bishop
	case 'R':
		kind = Rook
	case 'Q':
		kind = Queen
	case 'K':
		kind = King
	default:
		return NoPiece, false
	}
	return Piece{Kind: kind, Color: color}, true
}

// FormatGrid renders 64 cells as eight lines of eight characters, rank 8 first.
func FormatGrid(cells [64]Piece) string {
	var sb strings.Builder
	sb.Grow(72)
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sb.WriteByte(cells[rank*8+file].Letter())
		}
		if rank > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseGrid reads the FormatGrid format back into cells.
func ParseGrid(s string) ([64]Piece, error) {
	var cells [64]Piece
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 8 {
		return cells, invalidPosition("grid has %d lines, want 8", len(lines))
	}
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if len(line) != 8 {
			return cells, invalidPosition("grid line %d has %d cells, want 8", i+1, len(line))
		}
		rank := 7 - i
		for file, r := range line {
			sq := rank*8 + file
			switch r {
			case EmptyChar:
				cells[sq] = NoPiece
			case UnknownChar:
				cells[sq] = Unknown
			default:
				p, ok := pieceFromLetter(r)
				if !ok {
					return cells, invalidPosition("unexpected %q in grid line %d", r, i+1)
				}
				cells[sq] = p
			}
		}
	}
	return cells, nil
}
