package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterPublic registers the read-only catalog endpoints.  They are open
// to guests; list endpoints go through the response cache when one is
// configured.  Tribunes are never cached because their seat counts move
// with every order.
func RegisterPublic(e *echo.Echo, h Handlers, mw Middlewares) {
	g := e.Group("/api")
	cached := mw.cache()

	g.GET("/categories", h.Categories.List, cached...)
	g.GET("/categories/:id", h.Categories.Get, cached...)
	g.GET("/events", h.Events.List, cached...)
	g.GET("/events/:id", h.Events.Get, cached...)
	g.GET("/tribunes", h.Tribunes.List)
	g.GET("/tribunes/:id", h.Tribunes.Get)
	g.GET("/standings", h.Standings.Get, cached...)
}
