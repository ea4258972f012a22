// Package duel runs a fog of war game between two line-oriented text
// clients, one per side, such as two telnet or netcat sessions.
package duel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/fogchess/internal/chess"
)

const movePrompt = "Enter move (e.g., e2e4) or 'q': "

// Reason says why a session ended.
type Reason string

const (
	ReasonKingCaptured Reason = "king_captured"
	ReasonQuit         Reason = "quit"
	ReasonDisconnected Reason = "disconnected"
	ReasonCanceled     Reason = "canceled"
)

// Outcome describes how a session ended. By is the side that ended it: the
// capturer, the quitter or the side whose connection dropped.
type Outcome struct {
	Reason Reason
	By     chess.Color
	Winner chess.Color
	Moves  int
}

type player struct {
	side chess.Color
	conn io.ReadWriter
	in   *bufio.Reader
}

// readLine returns the next line without its terminator. A final line with
// no newline is still returned.
func (p *player) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *player) send(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(p.conn, format, args...)
	return err
}

// Session referees one game. The side to move is prompted with its fogged
// view and only its input is read.
type Session struct {
	game    *chess.Game
	players [2]*player
}

func NewSession(g *chess.Game, white, black io.ReadWriter) *Session {
	return &Session{
		game: g,
		players: [2]*player{
			{side: chess.White, conn: white, in: bufio.NewReader(white)},
			{side: chess.Black, conn: black, in: bufio.NewReader(black)},
		},
	}
}

func (s *Session) player(side chess.Color) *player {
	if side == chess.Black {
		return s.players[1]
	}
	return s.players[0]
}

func (s *Session) board(side chess.Color) string {
	return s.game.View(side).String()
}

// Run plays until a king is captured, a player quits or disconnects, or ctx
// is canceled. Connections that implement io.Closer are closed on cancel to
// unblock pending reads. A disconnect is an outcome, not an error.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	stop := s.closeOnCancel(ctx)
	defer stop()

	for {
		side := s.game.Turn()
		p := s.player(side)
		moves := len(s.game.History())

		if err := ctx.Err(); err != nil {
			return Outcome{Reason: ReasonCanceled, Moves: moves}, err
		}

		log.Debug().Str("side", side.String()).Str("board", s.game.Board().String()).Msg("Awaiting move")

		err := p.send("%s to move\n%s\n%s", side.Title(), s.board(side), movePrompt)
		var line string
		if err == nil {
			line, err = p.readLine()
		}
		if err != nil {
			return s.dropped(ctx, side, moves, err)
		}

		if chess.IsQuitCommand(line) {
			log.Info().Str("side", side.String()).Msg("Player quit")
			s.player(side.Opponent()).send("%s quit. Game over!\n", side.Title())
			return Outcome{Reason: ReasonQuit, By: side, Moves: moves}, nil
		}

		res, err := s.game.Play(line)
		if err != nil {
			log.Debug().Err(err).Str("side", side.String()).Str("move", line).Msg("Move rejected")
			if err := p.send("%s\n", rejection(err)); err != nil {
				return s.dropped(ctx, side, moves, err)
			}
			continue
		}

		event := log.Info().Str("side", side.String()).Str("move", res.From+res.To)
		if res.Captured != "" {
			event = event.Str("captured", res.Captured)
		}
		event.Msg("Move played")

		if res.GameOver {
			for _, q := range s.players {
				q.send("%s\n%s captured the king. Game over!\n", s.board(q.side), side.Title())
			}
			log.Info().Str("winner", side.String()).Int("moves", moves+1).Msg("King captured")
			return Outcome{Reason: ReasonKingCaptured, By: side, Winner: side, Moves: moves + 1}, nil
		}

		// the mover sees the result of its move while the opponent thinks
		if err := p.send("%s to move\n%s\n", s.game.Turn().Title(), s.board(side)); err != nil {
			return s.dropped(ctx, side, moves+1, err)
		}
	}
}

// dropped ends the game after I/O with side failed. A failure caused by
// cancellation is reported as such; otherwise the opponent is told that
// side disconnected.
func (s *Session) dropped(ctx context.Context, side chess.Color, moves int, err error) (Outcome, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{Reason: ReasonCanceled, Moves: moves}, ctxErr
	}
	log.Info().Err(err).Str("side", side.String()).Msg("Player disconnected")
	s.player(side.Opponent()).send("%s disconnected. Game over!\n", side.Title())
	return Outcome{Reason: ReasonDisconnected, By: side, Moves: moves}, nil
}

// rejection is the reply sent for a refused move.
func rejection(err error) string {
	switch {
	case errors.Is(err, chess.ErrBadSquare):
		return "Bad squares"
	case errors.Is(err, chess.ErrMalformedInput):
		return "Format: e2e4"
	default:
		return "Illegal (pseudo-legal) move for this variant."
	}
}

func (s *Session) closeOnCancel(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			for _, p := range s.players {
				if c, ok := p.conn.(io.Closer); ok {
					c.Close()
				}
			}
		case <-done:
		}
	}()
	return func() { close(done) }
}
