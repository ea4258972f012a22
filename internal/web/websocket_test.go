package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/fogchess/internal/chess"
)

type wireUpdate struct {
	GameID string          `json:"gameId"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

func dialSeat(t *testing.T, srv *httptest.Server, gameID, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/games/" + gameID + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) wireUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var u wireUpdate
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func readView(t *testing.T, conn *websocket.Conn) GameView {
	t.Helper()
	u := readUpdate(t, conn)
	require.Equal(t, "view", u.Type)
	var v GameView
	require.NoError(t, json.Unmarshal(u.Data, &v))
	return v
}

func postMove(t *testing.T, srv *httptest.Server, gameID, token, move string) {
	t.Helper()
	body := strings.NewReader(`{"move":"` + move + `"}`)
	req, err := http.NewRequest("POST", srv.URL+"/api/games/"+gameID+"/moves", body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketPushesOwnViewOnly(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()
	game := ts.createGame(t, CreateGameRequest{})

	white := dialSeat(t, srv, game.GameID, game.WhiteToken)
	black := dialSeat(t, srv, game.GameID, game.BlackToken)

	w0 := readView(t, white)
	b0 := readView(t, black)
	assert.Equal(t, "white", w0.Side)
	assert.Equal(t, "black", b0.Side)
	assert.Equal(t, 0, w0.Moves)

	postMove(t, srv, game.GameID, game.WhiteToken, "e2e4")

	w1 := readView(t, white)
	assert.Equal(t, "white", w1.Side)
	assert.Equal(t, "e2e4", w1.LastMove)
	assert.Equal(t, "black", w1.Turn)

	b1 := readView(t, black)
	assert.Equal(t, "black", b1.Side)
	assert.Empty(t, b1.LastMove)
	assert.Equal(t, 1, b1.Moves)

	table, err := ts.service.Registry().Get(game.GameID)
	require.NoError(t, err)
	assert.Equal(t, table.View(chess.Black).Grid, b1.Grid)
	assert.Equal(t, 2, ts.hub.Clients(game.GameID))
}

func TestWebSocketGameOver(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()
	game := ts.createGame(t, CreateGameRequest{FEN: rookTakesKingFEN})

	white := dialSeat(t, srv, game.GameID, game.WhiteToken)
	black := dialSeat(t, srv, game.GameID, game.BlackToken)
	readView(t, white)
	readView(t, black)

	postMove(t, srv, game.GameID, game.WhiteToken, "e1e8")

	for _, conn := range []*websocket.Conn{white, black} {
		v := readView(t, conn)
		assert.Equal(t, "white", v.Winner)

		u := readUpdate(t, conn)
		assert.Equal(t, "game_over", u.Type)
		assert.Equal(t, game.GameID, u.GameID)

		var data map[string]string
		require.NoError(t, json.Unmarshal(u.Data, &data))
		assert.Equal(t, "white", data["winner"])
		assert.Equal(t, "white_won", data["status"])
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()
	game := ts.createGame(t, CreateGameRequest{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/games/" + game.GameID + "/ws?token=forged"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
