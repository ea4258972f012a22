package chess

// Color identifies which side owns a piece.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Opponent returns the other side. NoColor has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Title is the capitalised side name used in player prompts.
func (c Color) Title() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "Nobody"
	}
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return NoColor, false
	}
}

// PieceKind is the movement class of a piece, independent of its owner.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
	// Hidden marks a square a player cannot see. It only appears in fogged views.
	Hidden
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	case Hidden:
		return "unknown"
	default:
		return "none"
	}
}

// A queen has both the bishop's and the rook's rays.
func (k PieceKind) slidesDiagonally() bool { return k == Bishop || k == Queen }

func (k PieceKind) slidesOrthogonally() bool { return k == Rook || k == Queen }

// Piece is a kind plus an owner. The zero value is an empty square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

var (
	NoPiece = Piece{}
	Unknown = Piece{Kind: Hidden}
)

func (p Piece) IsEmpty() bool { return p.Kind == NoKind }

func (p Piece) IsUnknown() bool { return p.Kind == Hidden }

// IsPiece reports whether p is a real piece on the board.
func (p Piece) IsPiece() bool { return p.Kind != NoKind && p.Kind != Hidden }

// BelongsTo reports whether p is a real piece owned by c.
func (p Piece) BelongsTo(c Color) bool { return p.IsPiece() && p.Color == c }

func (p Piece) String() string { return string(p.Letter()) }

// Square is a board index 0-63: rank = index/8, file = index%8, a1 = 0.
type Square int8

const NoSquare Square = -1

const (
	A1 Square = 0
	B1 Square = 1
	C1 Square = 2
	D1 Square = 3
	E1 Square = 4
	F1 Square = 5
	G1 Square = 6
	H1 Square = 7
	A8 Square = 56
	B8 Square = 57
	C8 Square = 58
	D8 Square = 59
	E8 Square = 60
	F8 Square = 61
	G8 Square = 62
	H8 Square = 63
)

// SquareAt returns the square at rank and file, or false when off the board.
func SquareAt(rank, file int) (Square, bool) {
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return NoSquare, false
	}
	return Square(rank*8 + file), true
}

func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) Rank() int { return int(s) / 8 }

func (s Square) File() int { return int(s) % 8 }

func (s Square) offset(dr, df int) (Square, bool) {
	return SquareAt(s.Rank()+dr, s.File()+df)
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// Move is an origin/destination pair. Captures, promotion, castling and en
// passant are derived from the board when the move is applied.
type Move struct {
	From Square
	To   Square
}

var NoMove = Move{From: NoSquare, To: NoSquare}

func (m Move) IsNone() bool { return m.From == NoSquare || m.To == NoSquare }

func (m Move) String() string {
	if m.IsNone() {
		return "-"
	}
	return m.From.String() + m.To.String()
}

// CastlingRights holds the has-moved flags. Flags only ever go from false to true.
type CastlingRights struct {
	WhiteKingMoved      bool
	WhiteKingRookMoved  bool
	WhiteQueenRookMoved bool
	BlackKingMoved      bool
	BlackKingRookMoved  bool
	BlackQueenRookMoved bool
}

func (cr CastlingRights) KingMoved(c Color) bool {
	if c == White {
		return cr.WhiteKingMoved
	}
	return cr.BlackKingMoved
}

func (cr CastlingRights) RookMoved(c Color, kingside bool) bool {
	switch {
	case c == White && kingside:
		return cr.WhiteKingRookMoved
	case c == White:
		return cr.WhiteQueenRookMoved
	case kingside:
		return cr.BlackKingRookMoved
	default:
		return cr.BlackQueenRookMoved
	}
}

func (cr *CastlingRights) markKing(c Color) {
	if c == White {
		cr.WhiteKingMoved = true
	} else {
		cr.BlackKingMoved = true
	}
}

func (cr *CastlingRights) markRook(c Color, kingside bool) {
	switch {
	case c == White && kingside:
		cr.WhiteKingRookMoved = true
	case c == White:
		cr.WhiteQueenRookMoved = true
	case kingside:
		cr.BlackKingRookMoved = true
	default:
		cr.BlackQueenRookMoved = true
	}
}

// Board is the authoritative position: 64 squares, castling flags and the
// previous move (needed for en passant).
type Board struct {
	squares  [64]Piece
	Castling CastlingRights
	LastMove Move
}

// NewBoard returns an empty board with no previous move.
func NewBoard() Board {
	return Board{LastMove: NoMove}
}

// At returns the piece on s. Off-board squares read as empty.
func (b Board) At(s Square) Piece {
	if !s.Valid() {
		return NoPiece
	}
	return b.squares[s]
}

// Set places p on s. Off-board squares are ignored.
func (b *Board) Set(s Square, p Piece) {
	if s.Valid() {
		b.squares[s] = p
	}
}

// Squares returns a copy of the 64 cells.
func (b Board) Squares() [64]Piece {
	return b.squares
}

// Find returns every square holding p.
func (b Board) Find(p Piece) []Square {
	var out []Square
	for s := Square(0); s < 64; s++ {
		if b.squares[s] == p {
			out = append(out, s)
		}
	}
	return out
}

func (b Board) String() string {
	return FormatGrid(b.squares)
}

// validate checks the structural invariants every playable position needs.
func (b *Board) validate() error {
	for _, c := range []Color{White, Black} {
		if n := len(b.Find(Piece{Kind: King, Color: c})); n != 1 {
			return invalidPosition("expected exactly one %s king, found %d", c, n)
		}
	}
	for s := Square(0); s < 64; s++ {
		if b.squares[s].IsUnknown() {
			return invalidPosition("unknown piece on %s", s)
		}
	}
	return nil
}
