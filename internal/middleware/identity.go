package middleware

// identity.go defines the authenticated principal shared by handlers and the
// other middleware files.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-ticketing/internal/model"
)

// Principal is the identity decoded from a valid session token.
type Principal struct {
	ID    int64
	Email string
	Role  string
}

// IsAdmin reports whether the principal may use administrative endpoints.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// PrincipalFrom returns the principal stored by Session, if any.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// WithPrincipal stores p on the context.  Handler tests use it to skip
// token plumbing.
func WithPrincipal(c echo.Context, p Principal) { c.Set(principalKey, p) }

// userID returns the authenticated user's id as a string, or "guest".
func userID(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return strconv.FormatInt(p.ID, 10)
	}
	return "guest"
}
