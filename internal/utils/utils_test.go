package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, "fan@example.com", "admin", 7*24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), tok.Exp, time.Minute)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ID)
	assert.Equal(t, "fan@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseSessionTokenRejects(t *testing.T) {
	good, err := NewSessionToken("secret", 1, "a@b.c", "user", time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("secret", 1, "a@b.c", "user", -time.Minute)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{ID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong key": good.Token,
		"expired":   expired.Token,
		"alg none":  none,
		"garbage":   "not-a-jwt",
	} {
		secret := "secret"
		if name == "wrong key" {
			secret = "other"
		}
		_, err := ParseSessionToken(secret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestSessionTokenNeedsSecret(t *testing.T) {
	_, err := NewSessionToken("", 1, "a@b.c", "user", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	good, err := NewSessionToken("secret", 1, "a@b.c", "user", time.Hour)
	require.NoError(t, err)
	_, err = ParseSessionToken("", good.Token)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestNewBookingCode(t *testing.T) {
	a, b := NewBookingCode(), NewBookingCode()
	assert.Regexp(t, regexp.MustCompile(`^TKT-[0-9A-F]{12}$`), a)
	assert.NotEqual(t, a, b)
}
