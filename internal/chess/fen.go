package chess

import (
	"strconv"
	"strings"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a board plus the FEN fields this engine tracks.
type Position struct {
	Board    Board
	Turn     Color
	Fullmove int
}

// ParseFEN builds a position from a FEN string. Only the piece placement is
// required; side to move, castling availability and the en passant square are
// read when present and default to White, no castling restrictions and none.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return Position{}, invalidPosition("empty FEN")
	}

	board, err := parsePlacement(fields[0])
	if err != nil {
		return Position{}, err
	}
	pos := Position{Board: board, Turn: White, Fullmove: 1}

	if len(fields) > 1 {
		turn, ok := ParseColor(fields[1])
		if !ok {
			return Position{}, invalidPosition("bad side to move %q", fields[1])
		}
		pos.Turn = turn
	}
	if len(fields) > 2 {
		if err := parseCastling(fields[2], &pos.Board.Castling); err != nil {
			return Position{}, err
		}
	}
	if len(fields) > 3 && fields[3] != "-" {
		last, err := enPassantOrigin(fields[3], pos.Turn, &pos.Board)
		if err != nil {
			return Position{}, err
		}
		pos.Board.LastMove = last
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return Position{}, invalidPosition("bad fullmove number %q", fields[5])
		}
		pos.Fullmove = n
	}

	if err := pos.Board.validate(); err != nil {
		return Position{}, err
	}
	return pos, nil
}

func parsePlacement(placement string) (Board, error) {
	board := NewBoard()
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return board, invalidPosition("placement has %d ranks, want 8", len(ranks))
	}

	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for _, r := range row {
			if r >= '1' && r <= '8' {
				file += int(r - '0')
			} else {
				p, ok := pieceFromLetter(r)
				if !ok {
					return board, invalidPosition("unexpected %q in rank %d", r, rank+1)
				}
				sq, ok := SquareAt(rank, file)
				if !ok {
					return board, invalidPosition("rank %d is longer than 8 files", rank+1)
				}
				board.Set(sq, p)
				file++
			}
			if file > 8 {
				return board, invalidPosition("rank %d is longer than 8 files", rank+1)
			}
		}
		if file != 8 {
			return board, invalidPosition("rank %d covers %d files, want 8", rank+1, file)
		}
	}
	return board, nil
}

// parseCastling turns FEN availability letters into has-moved flags: a
// missing letter marks that rook as moved.
func parseCastling(field string, cr *CastlingRights) error {
	if field != "-" && strings.Trim(field, "KQkq") != "" {
		return invalidPosition("bad castling field %q", field)
	}
	cr.WhiteKingRookMoved = !strings.ContainsRune(field, 'K')
	cr.WhiteQueenRookMoved = !strings.ContainsRune(field, 'Q')
	cr.BlackKingRookMoved = !strings.ContainsRune(field, 'k')
	cr.BlackQueenRookMoved = !strings.ContainsRune(field, 'q')
	return nil
}

// enPassantOrigin reconstructs the double push that produced the en passant
// square, since the engine derives en passant from the previous move.
func enPassantOrigin(field string, turn Color, b *Board) (Move, error) {
	target := ParseSquare(field)
	if target == NoSquare {
		return NoMove, invalidPosition("bad en passant square %q", field)
	}
	pusher := turn.Opponent()
	dir := pawnDirection(pusher)
	if target.Rank() != pawnHomeRank(pusher)+dir {
		return NoMove, invalidPosition("en passant square %s does not fit %s to move", target, turn)
	}
	from, _ := target.offset(-dir, 0)
	to, _ := target.offset(dir, 0)
	if b.At(to) != (Piece{Kind: Pawn, Color: pusher}) || !b.At(target).IsEmpty() || !b.At(from).IsEmpty() {
		return NoMove, invalidPosition("no double-pushed pawn behind %s", target)
	}
	return Move{From: from, To: to}, nil
}

// FEN renders the position as a six-field FEN. The halfmove clock is always
// 0 since this variant has no fifty-move rule.
func (p Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Board.At(Square(rank*8 + file))
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	turn := "w"
	if p.Turn == Black {
		turn = "b"
	}

	ep := "-"
	if sq, ok := doublePushTarget(&p.Board); ok {
		ep = sq.String()
	}

	fullmove := p.Fullmove
	if fullmove < 1 {
		fullmove = 1
	}
	return strings.Join([]string{sb.String(), turn, castlingField(&p.Board), ep, "0", strconv.Itoa(fullmove)}, " ")
}

func castlingField(b *Board) string {
	var sb strings.Builder
	for _, cs := range castleSides {
		if b.Castling.KingMoved(cs.color) || b.Castling.RookMoved(cs.color, cs.kingside) {
			continue
		}
		if b.At(cs.king) != (Piece{Kind: King, Color: cs.color}) || b.At(cs.rook) != (Piece{Kind: Rook, Color: cs.color}) {
			continue
		}
		letter := Piece{Kind: Queen, Color: cs.color}
		if cs.kingside {
			letter.Kind = King
		}
		sb.WriteByte(letter.Letter())
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// doublePushTarget returns the square skipped by the previous move when it
// was a pawn double push.
func doublePushTarget(b *Board) (Square, bool) {
	last := b.LastMove
	if last.IsNone() {
		return NoSquare, false
	}
	pc := b.At(last.To)
	if pc.Kind != Pawn || last.From.File() != last.To.File() || abs(last.To.Rank()-last.From.Rank()) != 2 {
		return NoSquare, false
	}
	return last.From.offset(pawnDirection(pc.Color), 0)
}
