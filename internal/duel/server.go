package duel

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/fogchess/internal/chess"
)

// Server seats White on one listener and Black on another and plays one
// game at a time.
type Server struct {
	WhiteAddr string
	BlackAddr string
	// NewGame creates the game for each pairing.
	NewGame func() (*chess.Game, error)
	// MaxGames stops the server after that many games. Zero means no limit.
	MaxGames int
}

// ListenAndServe listens on both addresses and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	white, err := net.Listen("tcp", s.WhiteAddr)
	if err != nil {
		return fmt.Errorf("failed to listen for white on %s: %w", s.WhiteAddr, err)
	}
	black, err := net.Listen("tcp", s.BlackAddr)
	if err != nil {
		white.Close()
		return fmt.Errorf("failed to listen for black on %s: %w", s.BlackAddr, err)
	}
	return s.Serve(ctx, white, black)
}

// Serve accepts a White connection, then a Black one, and runs a session
// between them. It closes both listeners when it returns.
func (s *Server) Serve(ctx context.Context, white, black net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		white.Close()
		black.Close()
	}()

	log.Info().
		Str("white", white.Addr().String()).
		Str("black", black.Addr().String()).
		Msg("Duel server listening")

	for played := 0; s.MaxGames == 0 || played < s.MaxGames; played++ {
		outcome, err := s.playOne(ctx, white, black)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		log.Info().
			Str("reason", string(outcome.Reason)).
			Str("by", outcome.By.String()).
			Str("winner", outcome.Winner.String()).
			Int("moves", outcome.Moves).
			Msg("Game finished")
	}
	return nil
}

func (s *Server) playOne(ctx context.Context, white, black net.Listener) (Outcome, error) {
	wc, err := white.Accept()
	if err != nil {
		return Outcome{}, fmt.Errorf("accept white: %w", err)
	}
	defer wc.Close()
	log.Info().Str("remote", wc.RemoteAddr().String()).Msg("White connected")
	fmt.Fprint(wc, "Connected as White. Waiting for Black...\n")

	bc, err := black.Accept()
	if err != nil {
		return Outcome{}, fmt.Errorf("accept black: %w", err)
	}
	defer bc.Close()
	log.Info().Str("remote", bc.RemoteAddr().String()).Msg("Black connected")
	fmt.Fprint(bc, "Connected as Black.\n")

	newGame := s.NewGame
	if newGame == nil {
		newGame = func() (*chess.Game, error) { return chess.NewGame(), nil }
	}
	g, err := newGame()
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create game: %w", err)
	}

	return NewSession(g, wc, bc).Run(ctx)
}
