package duel

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/fogchess/internal/chess"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

// playClient sends its whole script up front and collects everything the
// server says until the connection closes.
func playClient(t *testing.T, addr string, input string) <-chan string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	out := make(chan string, 1)
	go func() {
		defer conn.Close()
		_, _ = io.WriteString(conn, input)
		data, _ := io.ReadAll(conn)
		out <- string(data)
	}()
	return out
}

func TestServerPlaysOneGame(t *testing.T) {
	wl, bl := listen(t), listen(t)
	srv := &Server{MaxGames: 1}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(context.Background(), wl, bl) }()

	white := playClient(t, wl.Addr().String(), "f2f3\ng2g4\na2a3\n")
	black := playClient(t, bl.Addr().String(), "e7e5\nd8h4\nh4e1\n")

	for name, ch := range map[string]<-chan string{"white": white, "black": black} {
		select {
		case out := <-ch:
			assert.Contains(t, out, "Black captured the king. Game over!\n", name)
		case <-time.After(5 * time.Second):
			t.Fatalf("%s client timed out", name)
		}
	}

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after MaxGames")
	}
}

func TestServerUsesGameFactory(t *testing.T) {
	wl, bl := listen(t), listen(t)
	srv := &Server{
		MaxGames: 1,
		NewGame: func() (*chess.Game, error) {
			return chess.NewGameFromFEN("4k3/8/8/8/8/8/8/4RK2 w - - 0 1")
		},
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(context.Background(), wl, bl) }()

	white := playClient(t, wl.Addr().String(), "e1e8\n")
	black := playClient(t, bl.Addr().String(), "")

	out := <-white
	assert.Contains(t, out, "Connected as White.")
	assert.Contains(t, out, "White captured the king. Game over!\n")
	assert.Contains(t, <-black, "White captured the king. Game over!\n")
	assert.NoError(t, <-errc)
}

func TestServerStopsOnCancel(t *testing.T) {
	wl, bl := listen(t), listen(t)
	srv := &Server{}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, wl, bl) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
