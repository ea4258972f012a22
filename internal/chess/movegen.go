package chess

type offset struct{ dr, df int }

var (
	kingSteps = []offset{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightSteps = []offset{{2, 1}, {1, 2}, {-1, 2}, {-2, 1}, {-2, -1}, {-1, -2}, {1, -2}, {2, -1}}

	diagonals   = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonals = []offset{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
)

// castleSide describes one castling option.
type castleSide struct {
	color    Color
	kingside bool
	king     Square
	kingTo   Square
	rook     Square
	rookTo   Square
	between  []Square
}

var castleSides = []castleSide{
	{color: White, kingside: true, king: E1, kingTo: G1, rook: H1, rookTo: F1, between: []Square{F1, G1}},
	{color: White, kingside: false, king: E1, kingTo: C1, rook: A1, rookTo: D1, between: []Square{B1, C1, D1}},
	{color: Black, kingside: true, king: E8, kingTo: G8, rook: H8, rookTo: F8, between: []Square{F8, G8}},
	{color: Black, kingside: false, king: E8, kingTo: C8, rook: A8, rookTo: D8, between: []Square{B8, C8, D8}},
}

// castleFor returns the castling side a king move corresponds to, if any.
func castleFor(c Color, m Move) (castleSide, bool) {
	for _, cs := range castleSides {
		if cs.color == c && cs.king == m.From && cs.kingTo == m.To {
			return cs, true
		}
	}
	return castleSide{}, false
}

// cornerOf returns the castling side whose rook starts on s.
func cornerOf(s Square) (castleSide, bool) {
	for _, cs := range castleSides {
		if cs.rook == s {
			return cs, true
		}
	}
	return castleSide{}, false
}

func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func pawnHomeRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

func promotionRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// CandidateMoves returns the pseudo-legal destinations of the piece on from.
// Check does not exist in this variant, so a move may leave the king en prise.
// An empty or off-board origin yields no destinations.
func CandidateMoves(b *Board, from Square) []Square {
	if !from.Valid() {
		return nil
	}
	p := b.At(from)
	if !p.IsPiece() {
		return nil
	}

	switch p.Kind {
	case Pawn:
		return pawnMoves(b, from, p.Color)
	case Knight:
		return stepMoves(b, from, p.Color, knightSteps)
	case King:
		return append(stepMoves(b, from, p.Color, kingSteps), castlingMoves(b, from, p.Color)...)
	}

	var dst []Square
	if p.Kind.slidesDiagonally() {
		dst = slideMoves(b, from, p.Color, diagonals, dst)
	}
	if p.Kind.slidesOrthogonally() {
		dst = slideMoves(b, from, p.Color, orthogonals, dst)
	}
	return dst
}

func stepMoves(b *Board, from Square, c Color, steps []offset) []Square {
	var dst []Square
	for _, st := range steps {
		to, ok := from.offset(st.dr, st.df)
		if !ok || b.At(to).BelongsTo(c) {
			continue
		}
		dst = append(dst, to)
	}
	return dst
}

func slideMoves(b *Board, from Square, c Color, rays []offset, dst []Square) []Square {
	for _, ray := range rays {
		for to, ok := from.offset(ray.dr, ray.df); ok; to, ok = to.offset(ray.dr, ray.df) {
			target := b.At(to)
			if target.BelongsTo(c) {
				break
			}
			dst = append(dst, to)
			if target.IsPiece() {
				break
			}
		}
	}
	return dst
}

func pawnMoves(b *Board, from Square, c Color) []Square {
	var dst []Square
	dir := pawnDirection(c)

	if one, ok := from.offset(dir, 0); ok && b.At(one).IsEmpty() {
		dst = append(dst, one)
		if from.Rank() == pawnHomeRank(c) {
			if two, ok := from.offset(2*dir, 0); ok && b.At(two).IsEmpty() {
				dst = append(dst, two)
			}
		}
	}

	for _, df := range []int{-1, 1} {
		to, ok := from.offset(dir, df)
		if !ok {
			continue
		}
		if target := b.At(to); target.IsPiece() && target.Color != c {
			dst = append(dst, to)
		}
	}

	if to, ok := enPassantTarget(b, from, c); ok {
		dst = append(dst, to)
	}
	return dst
}

// enPassantTarget returns the square a pawn of color c on from may capture
// onto en passant. The window is the single ply after an enemy double push.
func enPassantTarget(b *Board, from Square, c Color) (Square, bool) {
	last := b.LastMove
	if last.IsNone() {
		return NoSquare, false
	}
	victim := b.At(last.To)
	if victim.Kind != Pawn || victim.Color == c {
		return NoSquare, false
	}
	if last.From.File() != last.To.File() || last.From.Rank() != pawnHomeRank(victim.Color) {
		return NoSquare, false
	}
	if abs(last.To.Rank()-last.From.Rank()) != 2 {
		return NoSquare, false
	}
	if from.Rank() != last.To.Rank() || abs(from.File()-last.To.File()) != 1 {
		return NoSquare, false
	}
	to, ok := last.To.offset(pawnDirection(c), 0)
	if !ok || !b.At(to).IsEmpty() {
		return NoSquare, false
	}
	return to, true
}

// castlingMoves offers the two-file king move when king and rook are both
// unmoved and every square between them is empty.
func castlingMoves(b *Board, from Square, c Color) []Square {
	if b.Castling.KingMoved(c) {
		return nil
	}
	var dst []Square
	for _, cs := range castleSides {
		if cs.color != c || cs.king != from || b.Castling.RookMoved(c, cs.kingside) {
			continue
		}
		if b.At(cs.rook) != (Piece{Kind: Rook, Color: c}) {
			continue
		}
		empty := true
		for _, s := range cs.between {
			if !b.At(s).IsEmpty() {
				empty = false
				break
			}
		}
		if empty {
			dst = append(dst, cs.kingTo)
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
