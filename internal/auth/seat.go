// Package auth issues and verifies seat tokens. A seat token binds a bearer
// to one side of one game.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/justinabrahms/fogchess/internal/chess"
)

const issuerName = "fogchess"

var (
	// ErrInvalidToken covers every token that fails parsing, signature or
	// expiry checks.
	ErrInvalidToken = errors.New("invalid seat token")
	// ErrWrongGame is returned when a valid token names a different game.
	ErrWrongGame = errors.New("seat token is for another game")
)

// SeatClaims are the JWT claims carried by a seat token.
type SeatClaims struct {
	Game string `json:"game"`
	Side string `json:"side"`
	jwt.RegisteredClaims
}

// Seat is a verified seat token.
type Seat struct {
	GameID string
	Side   chess.Color
}

// Issuer signs seat tokens with HS256.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer. An empty secret gets a random one, which means
// tokens do not survive a restart.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}
	return &Issuer{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue creates a token for one side of a game.
func (i *Issuer) Issue(gameID string, side chess.Color) (string, error) {
	if side != chess.White && side != chess.Black {
		return "", fmt.Errorf("cannot issue a seat for side %q", side)
	}

	now := i.now()
	claims := SeatClaims{
		Game: gameID,
		Side: side.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   gameID + "/" + side.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its seat.
func (i *Issuer) Verify(token string) (Seat, error) {
	var claims SeatClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Seat{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	side, ok := chess.ParseColor(claims.Side)
	if !ok || claims.Game == "" {
		return Seat{}, fmt.Errorf("%w: missing game or side", ErrInvalidToken)
	}
	return Seat{GameID: claims.Game, Side: side}, nil
}

// VerifyFor verifies a token and checks that it belongs to gameID.
func (i *Issuer) VerifyFor(token, gameID string) (Seat, error) {
	seat, err := i.Verify(token)
	if err != nil {
		return Seat{}, err
	}
	if seat.GameID != gameID {
		return Seat{}, ErrWrongGame
	}
	return seat, nil
}
