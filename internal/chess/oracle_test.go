package chess

import (
	"testing"

	notnil "github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every move a standard chess engine allows must also be a candidate here:
// without check our candidate set is a superset of standard legal moves.
func TestCandidateMovesCoverStandardLegalMoves(t *testing.T) {
	fens := []string{
		StartingFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1",
		"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R b KQkq - 0 1",
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
		"8/P6k/8/8/8/8/6Kp/8 w - - 0 1",
		"8/P6k/8/8/8/8/6Kp/8 b - - 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			opt, err := notnil.FEN(fen)
			require.NoError(t, err)
			ref := notnil.NewGame(opt)

			pos, err := ParseFEN(fen)
			require.NoError(t, err)

			for _, m := range ref.ValidMoves() {
				from, to := Square(m.S1()), Square(m.S2())
				assert.Contains(t, CandidateMoves(&pos.Board, from), to, "reference move %s", m)
			}
		})
	}
}
