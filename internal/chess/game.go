package chess

import "fmt"

// Game is the authoritative state of one fog-of-war game: the board, the side
// to move, the winner once a king falls, and both sides' fogged views.
//
// A Game is not safe for concurrent use. Callers serialize moves.
type Game struct {
	board    Board
	turn     Color
	rule     LineOfSight
	winner   Color
	fullmove int
	views    [2]View
	history  []MoveResult
}

type Option func(*Game)

// WithLineOfSight selects how sliding pieces see past other pieces.
func WithLineOfSight(rule LineOfSight) Option {
	return func(g *Game) {
		g.rule = rule
	}
}

// NewGame starts a game from the standard position.
func NewGame(opts ...Option) *Game {
	pos, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(fmt.Sprintf("chess: starting position does not parse: %v", err))
	}
	return NewGameFromPosition(pos, opts...)
}

// NewGameFromFEN starts a game from a FEN string.
func NewGameFromFEN(fen string, opts ...Option) (*Game, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return NewGameFromPosition(pos, opts...), nil
}

// NewGameFromPosition starts a game from an already parsed position.
func NewGameFromPosition(pos Position, opts ...Option) *Game {
	g := &Game{
		board:    pos.Board,
		turn:     pos.Turn,
		rule:     LichessLike,
		fullmove: pos.Fullmove,
	}
	if g.turn == NoColor {
		g.turn = White
	}
	if g.fullmove < 1 {
		g.fullmove = 1
	}
	for _, opt := range opts {
		opt(g)
	}
	g.refreshViews()
	return g
}

// IsValidMove reports whether the side to move may play m. Legality is
// judged on the full board, never on a fogged view.
func (g *Game) IsValidMove(m Move) bool {
	if g.Over() {
		return false
	}
	if !m.From.Valid() || !m.To.Valid() {
		return false
	}
	if !g.board.At(m.From).BelongsTo(g.turn) {
		return false
	}
	if g.board.At(m.To).BelongsTo(g.turn) {
		return false
	}
	for _, to := range CandidateMoves(&g.board, m.From) {
		if to == m.To {
			return true
		}
	}
	return false
}

// MakeMove applies m if it is valid. A rejected move changes nothing.
func (g *Game) MakeMove(m Move) bool {
	_, ok := g.apply(m)
	return ok
}

// Submit applies m and describes the result, or reports why it was refused.
func (g *Game) Submit(m Move) (*MoveResult, error) {
	if g.Over() {
		return nil, ErrGameOver
	}
	res, ok := g.apply(m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	return &res, nil
}

// Play parses move text and submits it.
func (g *Game) Play(text string) (*MoveResult, error) {
	m, err := ParseMove(text)
	if err != nil {
		return nil, err
	}
	return g.Submit(m)
}

func (g *Game) apply(m Move) (MoveResult, bool) {
	if !g.IsValidMove(m) {
		return MoveResult{}, false
	}

	b := &g.board
	mover := b.At(m.From)
	captured := b.At(m.To)
	captureSq := m.To

	res := MoveResult{
		Side:  mover.Color.String(),
		From:  m.From.String(),
		To:    m.To.String(),
		Piece: mover.String(),
	}

	// a diagonal pawn move onto an empty square can only be en passant
	if mover.Kind == Pawn && m.From.File() != m.To.File() && captured.IsEmpty() {
		captureSq, _ = SquareAt(m.From.Rank(), m.To.File())
		captured = b.At(captureSq)
		b.Set(captureSq, NoPiece)
		res.EnPassant = true
	}

	b.Set(m.To, mover)
	b.Set(m.From, NoPiece)

	switch mover.Kind {
	case King:
		b.Castling.markKing(mover.Color)
		if cs, ok := castleFor(mover.Color, m); ok {
			b.Set(cs.rookTo, b.At(cs.rook))
			b.Set(cs.rook, NoPiece)
			b.Castling.markRook(mover.Color, cs.kingside)
			res.Castle = "O-O-O"
			if cs.kingside {
				res.Castle = "O-O"
			}
		}
	case Rook:
		if cs, ok := cornerOf(m.From); ok && cs.color == mover.Color {
			b.Castling.markRook(mover.Color, cs.kingside)
		}
	case Pawn:
		if m.To.Rank() == promotionRank(mover.Color) {
			promoted := Piece{Kind: Queen, Color: mover.Color}
			b.Set(m.To, promoted)
			res.Promotion = promoted.String()
		}
	}

	if captured.Kind == Rook {
		if cs, ok := cornerOf(captureSq); ok && cs.color == captured.Color {
			b.Castling.markRook(captured.Color, cs.kingside)
		}
	}
	if captured.IsPiece() {
		res.Captured = captured.String()
	}

	b.LastMove = m
	if mover.Color == Black {
		g.fullmove++
	}
	if captured.Kind == King {
		g.winner = mover.Color
	} else {
		g.turn = g.turn.Opponent()
	}
	g.refreshViews()

	res.GameOver = g.Over()
	if g.Over() {
		res.Winner = g.winner.String()
	}
	res.Status = g.Status()
	g.history = append(g.history, res)
	return res, true
}

// views are always rebuilt from the board, never patched
func (g *Game) refreshViews() {
	g.views[0] = NewView(&g.board, White, g.rule)
	g.views[1] = NewView(&g.board, Black, g.rule)
}

// View returns side's fogged view of the current position.
func (g *Game) View(side Color) View {
	if side == Black {
		return g.views[1]
	}
	return g.views[0]
}

// Board returns a copy of the authoritative board.
func (g *Game) Board() Board {
	return g.board
}

// Turn returns the side to move. After a king capture it stays with the winner.
func (g *Game) Turn() Color {
	return g.turn
}

func (g *Game) LineOfSight() LineOfSight {
	return g.rule
}

func (g *Game) Over() bool {
	return g.winner != NoColor
}

// Winner returns the side that captured the enemy king.
func (g *Game) Winner() (Color, bool) {
	return g.winner, g.winner != NoColor
}

func (g *Game) Status() GameStatus {
	switch g.winner {
	case White:
		return StatusWhiteWon
	case Black:
		return StatusBlackWon
	default:
		return StatusActive
	}
}

// History returns the accepted moves in order.
func (g *Game) History() []MoveResult {
	out := make([]MoveResult, len(g.history))
	copy(out, g.history)
	return out
}

// Position returns the current position for FEN export.
func (g *Game) Position() Position {
	return Position{Board: g.board, Turn: g.turn, Fullmove: g.fullmove}
}

func (g *Game) FEN() string {
	return g.Position().FEN()
}
