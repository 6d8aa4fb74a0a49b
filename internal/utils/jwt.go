package utils // package utils provides helpers for session tokens, hashing and booking codes

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the session token kept in the "token"
// cookie: the user's id, email and role plus the standard expiry claims.
type SessionClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SessionToken is a signed session JWT along with its expiry.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// ErrInvalidToken is returned by ParseSessionToken for any token that is
// malformed, expired or signed with another key or algorithm.
var ErrInvalidToken = errors.New("invalid session token")

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("server configuration error: JWT secret missing")

// NewSessionToken builds and signs an HS256 JWT carrying id, email and role
// that expires after ttl.
func NewSessionToken(secret string, userID int64, email, role string, ttl time.Duration) (SessionToken, error) {
	if secret == "" {
		return SessionToken{}, ErrMissingSecret
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := SessionClaims{
		ID:    userID,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of raw and returns its
// claims.  Only HMAC signing methods are accepted.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid || claims.ID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
