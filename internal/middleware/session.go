package middleware // middleware provides shared request processing for handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-ticketing/internal/utils"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session JWT.
const SessionCookie = "token"

const (
	principalKey      = "principal"
	sessionInvalidKey = "session_invalid"
)

// Session returns a middleware that decodes the session token and stores a
// typed Principal in the request context.  The token is read from the
// "token" cookie, or from an "Authorization: Bearer" header for non-browser
// clients.  Requests without a valid token pass through anonymously;
// RequireAuth and RequireRole turn that into 401/403 where needed.  With an
// empty secret no token is trusted and every request is anonymous.
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" || secret == "" {
				return next(c)
			}
			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				// remembered so GET /api/auth/login can clear a stale cookie
				c.Set(sessionInvalidKey, true)
				return next(c)
			}
			c.Set(principalKey, Principal{ID: claims.ID, Email: claims.Email, Role: claims.Role})
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// SessionInvalid reports whether the request presented a token that failed
// verification.
func SessionInvalid(c echo.Context) bool {
	v, _ := c.Get(sessionInvalidKey).(bool)
	return v
}
