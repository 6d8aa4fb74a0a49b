package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-ticketing/internal/handler"
	"github.com/iliyamo/football-ticketing/internal/middleware"
	"github.com/iliyamo/football-ticketing/internal/model"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Health     echo.HandlerFunc
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	Events     *handler.EventHandler
	Tribunes   *handler.TribuneHandler
	Orders     *handler.OrderHandler
	Standings  *handler.StandingsHandler
}

// Middlewares holds the Redis backed middleware.  Nil entries are skipped.
type Middlewares struct {
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

func (m Middlewares) cache() []echo.MiddlewareFunc     { return optional(m.Cache) }
func (m Middlewares) rateLimit() []echo.MiddlewareFunc { return optional(m.RateLimit) }

func optional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

// Register mounts the whole API on e.  Session must already be installed
// with e.Use so every route sees the principal.
func Register(e *echo.Echo, h Handlers, mw Middlewares) {
	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, mw)
	RegisterPublic(e, h, mw)
	RegisterOrders(e, h.Orders, mw)
	RegisterAdmin(e, h)
}

// RegisterRoutes registers routes that do not belong to the API itself.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers the cookie session endpoints under /api/auth.
// Credential checks are rate limited per client address.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, mw Middlewares) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, mw.rateLimit()...)
	g.POST("/login", a.Login, mw.rateLimit()...)
	g.GET("/login", a.Session)
	g.GET("/me", a.Session)
	g.POST("/logout", a.Logout)
}

// RegisterOrders registers the order workflow.  Every route needs a session;
// deleting an order is reserved for admins.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, mw Middlewares) {
	g := e.Group("/api/orders")
	auth := middleware.RequireAuth()
	writes := append([]echo.MiddlewareFunc{auth}, mw.rateLimit()...)

	g.GET("", o.List, auth)
	g.GET("/:id", o.Get, auth)
	g.POST("", o.Create, writes...)
	g.PATCH("/:id/status", o.UpdateStatus, writes...)
	g.PUT("/:id", o.Update, writes...)
	g.DELETE("/:id", o.Delete, auth, middleware.RequireRole(model.RoleAdmin))
}
