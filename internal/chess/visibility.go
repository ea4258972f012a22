package chess

import (
	"fmt"
	"strings"
)

// LineOfSight decides which pieces block a sliding piece's vision.
type LineOfSight uint8

const (
	// LichessLike rays are blocked only by the viewer's own pieces.
	LichessLike LineOfSight = iota
	// StrictLineOfSight rays stop at the first piece of either colour.
	StrictLineOfSight
)

func (r LineOfSight) String() string {
	if r == StrictLineOfSight {
		return "strict"
	}
	return "lichess"
}

// ParseLineOfSight accepts "lichess" / "lichess-like" and "strict" / "strict-los".
func ParseLineOfSight(s string) (LineOfSight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lichess", "lichess-like", "lichesslike":
		return LichessLike, nil
	case "strict", "strict-los", "strictlineofsight":
		return StrictLineOfSight, nil
	default:
		return LichessLike, fmt.Errorf("unknown fog rule %q", s)
	}
}

// SquareSet is a membership table over the 64 squares.
type SquareSet [64]bool

func (s *SquareSet) Add(sq Square) {
	if sq.Valid() {
		s[sq] = true
	}
}

func (s *SquareSet) Has(sq Square) bool {
	return sq.Valid() && s[sq]
}

func (s *SquareSet) Len() int {
	n := 0
	for _, in := range s {
		if in {
			n++
		}
	}
	return n
}

// VisibleSquares returns every square side may observe: squares it occupies
// plus every square its pieces reach. Step pieces and pawns see their target
// squares whatever stands there. Sliding rays follow rule.
func VisibleSquares(b *Board, side Color, rule LineOfSight) SquareSet {
	var vis SquareSet
	for sq := Square(0); sq < 64; sq++ {
		p := b.At(sq)
		if !p.BelongsTo(side) {
			continue
		}
		vis.Add(sq)

		switch p.Kind {
		case Pawn:
			markPawn(&vis, sq, side)
		case Knight:
			markSteps(&vis, sq, knightSteps)
		case King:
			markSteps(&vis, sq, kingSteps)
		default:
			if p.Kind.slidesDiagonally() {
				markRays(&vis, b, sq, side, rule, diagonals)
			}
			if p.Kind.slidesOrthogonally() {
				markRays(&vis, b, sq, side, rule, orthogonals)
			}
		}

		// castling and en passant destinations
		for _, to := range CandidateMoves(b, sq) {
			vis.Add(to)
		}
	}
	return vis
}

func markSteps(vis *SquareSet, from Square, steps []offset) {
	for _, st := range steps {
		if to, ok := from.offset(st.dr, st.df); ok {
			vis.Add(to)
		}
	}
}

func markRays(vis *SquareSet, b *Board, from Square, side Color, rule LineOfSight, rays []offset) {
	for _, ray := range rays {
		for to, ok := from.offset(ray.dr, ray.df); ok; to, ok = to.offset(ray.dr, ray.df) {
			vis.Add(to)
			target := b.At(to)
			if target.BelongsTo(side) {
				break
			}
			if rule == StrictLineOfSight && target.IsPiece() {
				break
			}
		}
	}
}

func markPawn(vis *SquareSet, from Square, side Color) {
	dir := pawnDirection(side)
	if one, ok := from.offset(dir, 0); ok {
		vis.Add(one)
	}
	if from.Rank() == pawnHomeRank(side) {
		if two, ok := from.offset(2*dir, 0); ok {
			vis.Add(two)
		}
	}
	for _, df := range []int{-1, 1} {
		if diag, ok := from.offset(dir, df); ok {
			vis.Add(diag)
		}
	}
}

// View is one side's fogged picture of the board. Squares outside the side's
// vision hold Unknown.
type View struct {
	Side  Color
	Cells [64]Piece
}

// NewView computes side's view of b from scratch.
func NewView(b *Board, side Color, rule LineOfSight) View {
	vis := VisibleSquares(b, side, rule)
	v := View{Side: side}
	for sq := Square(0); sq < 64; sq++ {
		if vis.Has(sq) {
			v.Cells[sq] = b.At(sq)
		} else {
			v.Cells[sq] = Unknown
		}
	}
	return v
}

func (v View) At(sq Square) Piece {
	if !sq.Valid() {
		return Unknown
	}
	return v.Cells[sq]
}

// String renders the view in the wire grid format.
func (v View) String() string {
	return FormatGrid(v.Cells)
}
