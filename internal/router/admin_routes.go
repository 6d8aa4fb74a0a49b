package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-ticketing/internal/middleware"
	"github.com/iliyamo/football-ticketing/internal/model"
)

// RegisterAdmin registers catalog writes and account management.  All
// routes require a session with the admin role.
func RegisterAdmin(e *echo.Echo, h Handlers) {
	g := e.Group("/api")
	admin := middleware.RequireRole(model.RoleAdmin)

	// ---- Categories ----
	g.POST("/categories", h.Categories.Create, admin)
	g.PUT("/categories/:id", h.Categories.Update, admin)
	g.DELETE("/categories/:id", h.Categories.Delete, admin)

	// ---- Events ----
	g.POST("/events", h.Events.Create, admin)
	g.PUT("/events/:id", h.Events.Update, admin)
	g.DELETE("/events/:id", h.Events.Delete, admin)

	// ---- Tribunes ----
	g.POST("/tribunes", h.Tribunes.Create, admin)
	g.PUT("/tribunes/:id", h.Tribunes.Update, admin)
	g.DELETE("/tribunes/:id", h.Tribunes.Delete, admin)

	// ---- Users ----
	g.GET("/users", h.Users.List, admin)
	g.GET("/users/:id", h.Users.Get, admin)
	g.POST("/users", h.Users.Create, admin)
	g.PUT("/users/:id", h.Users.Update, admin)
	g.DELETE("/users/:id", h.Users.Delete, admin)
}
