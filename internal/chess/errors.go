package chess

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned for move text that is not two squares.
	ErrMalformedInput = errors.New("malformed input")
	// ErrIllegalMove is returned for moves the side to move may not play.
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned for any move after a king has been captured.
	ErrGameOver = errors.New("game over")
	// ErrInvalidPosition is returned when a FEN or grid cannot describe a playable board.
	ErrInvalidPosition = errors.New("invalid position")

	ErrMoveFormat = fmt.Errorf("%w: expected a move like e2e4", ErrMalformedInput)
	ErrBadSquare  = fmt.Errorf("%w: square out of range", ErrMalformedInput)
)

func invalidPosition(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPosition, fmt.Sprintf(format, args...))
}
