package web

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justinabrahms/fogchess/internal/chess"
)

var (
	ErrGameNotFound = errors.New("game not found")
	// ErrNotYourTurn wraps chess.ErrIllegalMove so it is reported like any
	// other rejected move.
	ErrNotYourTurn = fmt.Errorf("%w: not your turn", chess.ErrIllegalMove)
)

// GameView is what one seat is allowed to know about its game.
type GameView struct {
	GameID   string           `json:"gameId"`
	Side     string           `json:"side"`
	Turn     string           `json:"turn"`
	Status   chess.GameStatus `json:"status"`
	Winner   string           `json:"winner,omitempty"`
	FogRule  string           `json:"fogRule"`
	Grid     string           `json:"grid"`
	LastMove string           `json:"lastMove,omitempty"`
	Moves    int              `json:"moves"`
}

// Table is a registered game. Every access to the game goes through the
// table's mutex.
type Table struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	game *chess.Game
}

// View returns side's current view.
func (t *Table) View(side chess.Color) GameView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(side)
}

func (t *Table) viewLocked(side chess.Color) GameView {
	g := t.game
	v := GameView{
		GameID:  t.ID,
		Side:    side.String(),
		Turn:    g.Turn().String(),
		Status:  g.Status(),
		FogRule: g.LineOfSight().String(),
		Grid:    g.View(side).String(),
	}
	if winner, ok := g.Winner(); ok {
		v.Winner = winner.String()
	}

	history := g.History()
	v.Moves = len(history)
	// the opponent's last move would leak squares the side cannot see
	if n := len(history); n > 0 && history[n-1].Side == side.String() {
		v.LastMove = history[n-1].From + history[n-1].To
	}
	return v
}

// MoveOutcome is an accepted move plus both sides' views after it, taken
// under the same lock.
type MoveOutcome struct {
	Result *chess.MoveResult
	White  GameView
	Black  GameView
}

// Play submits a move for side. Moving out of turn is an illegal move.
func (t *Table) Play(side chess.Color, text string) (MoveOutcome, error) {
	m, err := chess.ParseMove(text)
	if err != nil {
		return MoveOutcome{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.game.Over() {
		return MoveOutcome{}, chess.ErrGameOver
	}
	if t.game.Turn() != side {
		return MoveOutcome{}, ErrNotYourTurn
	}

	res, err := t.game.Submit(m)
	if err != nil {
		return MoveOutcome{}, err
	}
	return MoveOutcome{
		Result: res,
		White:  t.viewLocked(chess.White),
		Black:  t.viewLocked(chess.Black),
	}, nil
}

// Registry holds independent games keyed by id.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Add registers g under a fresh id.
func (r *Registry) Add(g *chess.Game) *Table {
	t := &Table{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		game:      g,
	}

	r.mu.Lock()
	r.tables[t.ID] = t
	r.mu.Unlock()
	return t
}

func (r *Registry) Get(id string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return t, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.tables, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Prune removes finished games created before cutoff and reports how many
// were dropped.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, t := range r.tables {
		t.mu.Lock()
		over := t.game.Over()
		t.mu.Unlock()
		if over && t.CreatedAt.Before(cutoff) {
			delete(r.tables, id)
			n++
		}
	}
	return n
}
