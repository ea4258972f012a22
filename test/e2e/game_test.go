package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/fogchess/internal/auth"
	"github.com/justinabrahms/fogchess/internal/chess"
	"github.com/justinabrahms/fogchess/internal/config"
	"github.com/justinabrahms/fogchess/internal/web"
)

// startServer runs the full HTTP stack in-process.
func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.Defaults()
	issuer, err := auth.NewIssuer("e2e-secret", time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := web.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(web.NewService(cfg, issuer, hub).Router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv.URL
}

func call(t *testing.T, method, url, token string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createGame(t *testing.T, base string, req web.CreateGameRequest) web.CreateGameResponse {
	t.Helper()
	var game web.CreateGameResponse
	require.Equal(t, http.StatusCreated, call(t, "POST", base+"/api/games", "", req, &game))
	return game
}

func makeMove(t *testing.T, base, gameID, token, move string) chess.MoveResult {
	t.Helper()
	var res chess.MoveResult
	status := call(t, "POST", fmt.Sprintf("%s/api/games/%s/moves", base, gameID), token, web.MakeMoveRequest{Move: move}, &res)
	require.Equal(t, http.StatusOK, status, "move %s", move)
	return res
}

func getView(t *testing.T, base, gameID, token string) web.GameView {
	t.Helper()
	var v web.GameView
	require.Equal(t, http.StatusOK, call(t, "GET", fmt.Sprintf("%s/api/games/%s/view", base, gameID), token, nil, &v))
	return v
}

// TestQueenRaidCapturesKing plays f3 e5 g4 Qh4 a3 Qxe1: without check,
// White's blunder is only punished by the king capture.
func TestQueenRaidCapturesKing(t *testing.T) {
	base := startServer(t)
	game := createGame(t, base, web.CreateGameRequest{})

	tokens := map[string]string{"white": game.WhiteToken, "black": game.BlackToken}
	moves := []struct{ side, move string }{
		{"white", "f2f3"},
		{"black", "e7e5"},
		{"white", "g2g4"},
		{"black", "d8h4"},
		{"white", "a2a3"},
	}
	for _, m := range moves {
		res := makeMove(t, base, game.GameID, tokens[m.side], m.move)
		assert.Equal(t, m.side, res.Side)
		assert.False(t, res.GameOver)
	}

	// the queen's diagonal reaches the king, so Black sees it
	black := getView(t, base, game.GameID, game.BlackToken)
	rank1 := strings.Split(black.Grid, "\n")[7]
	assert.Equal(t, byte('K'), rank1[4], black.Grid)

	res := makeMove(t, base, game.GameID, game.BlackToken, "h4e1")
	assert.True(t, res.GameOver)
	assert.Equal(t, "black", res.Winner)
	assert.Equal(t, "K", res.Captured)
	assert.Equal(t, chess.StatusBlackWon, res.Status)

	white := getView(t, base, game.GameID, game.WhiteToken)
	assert.Equal(t, chess.StatusBlackWon, white.Status)
	assert.NotContains(t, white.Grid, "K")

	status := call(t, "POST", fmt.Sprintf("%s/api/games/%s/moves", base, game.GameID), game.WhiteToken, web.MakeMoveRequest{Move: "a3a4"}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

// TestViewsNeverLeakHiddenPieces checks both views against the board after
// every move of a short game.
func TestViewsNeverLeakHiddenPieces(t *testing.T) {
	base := startServer(t)
	game := createGame(t, base, web.CreateGameRequest{FogRule: "strict"})

	// a reference game replays the same moves to know the true board
	ref := chess.NewGame(chess.WithLineOfSight(chess.StrictLineOfSight))
	tokens := [2]string{game.WhiteToken, game.BlackToken}
	line := []string{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5e5", "f1e2", "e5e4", "g1f3", "e4c2"}

	for i, mv := range line {
		makeMove(t, base, game.GameID, tokens[i%2], mv)
		_, err := ref.Play(mv)
		require.NoError(t, err)

		for side, token := range map[chess.Color]string{chess.White: game.WhiteToken, chess.Black: game.BlackToken} {
			v := getView(t, base, game.GameID, token)
			assert.Equal(t, ref.View(side).String(), v.Grid, "after %s", mv)

			cells, err := chess.ParseGrid(v.Grid)
			require.NoError(t, err)
			board := ref.Board()
			for sq, p := range cells {
				if !p.IsUnknown() {
					assert.Equal(t, board.At(chess.Square(sq)), p)
				}
			}
		}
	}
}
