package chess

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// MoveResult describes an accepted move. It is reported to the mover only;
// the opponent learns about it through their fogged view.
type MoveResult struct {
	Side      string     `json:"side"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Piece     string     `json:"piece"`
	Captured  string     `json:"captured,omitempty"`
	Promotion string     `json:"promotion,omitempty"`
	Castle    string     `json:"castle,omitempty"`
	EnPassant bool       `json:"enPassant"`
	GameOver  bool       `json:"gameOver"`
	Winner    string     `json:"winner,omitempty"`
	Status    GameStatus `json:"status"`
}
