package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/fogchess/internal/chess"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	for _, side := range []chess.Color{chess.White, chess.Black} {
		token, err := issuer.Issue("game-1", side)
		require.NoError(t, err)
		assert.Len(t, strings.Split(token, "."), 3)

		seat, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, Seat{GameID: "game-1", Side: side}, seat)

		seat, err = issuer.VerifyFor(token, "game-1")
		require.NoError(t, err)
		assert.Equal(t, side, seat.Side)
	}
}

func TestIssueRejectsNoColor(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = issuer.Issue("game-1", chess.NoColor)
	assert.Error(t, err)
}

func TestVerifyFailures(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	forged, err := other.Issue("game-1", chess.White)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SeatClaims{Game: "game-1", Side: "white"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"other secret": forged,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Minute)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return start }
	token, err := issuer.Issue("game-1", chess.Black)
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyForOtherGame(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("game-1", chess.White)
	require.NoError(t, err)

	_, err = issuer.VerifyFor(token, "game-2")
	assert.ErrorIs(t, err, ErrWrongGame)
}

func TestRandomSecretIssuersDisagree(t *testing.T) {
	a, err := NewIssuer("", time.Hour)
	require.NoError(t, err)
	b, err := NewIssuer("", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("game-1", chess.White)
	require.NoError(t, err)

	_, err = a.Verify(token)
	assert.NoError(t, err)
	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
