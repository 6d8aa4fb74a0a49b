package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/repository"
)

// UserHandler is the admin account management surface.
type UserHandler struct {
	Users *repository.UserRepo
	Log   logrus.FieldLogger
}

func NewUserHandler(r *repository.UserRepo, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Users: r, Log: log}
}

func (req *UserRequest) input() repository.UserInput {
	return repository.UserInput{Username: req.Username, Email: req.Email, Password: req.Password, Role: req.Role}
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Create(c echo.Context) error {
	req := UserRequest{creating: true}
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Users.Create(ctx, req.input())
	if err != nil {
		return h.writeFailed(c, req.Email, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Update overwrites username, email and role.  A non-empty password is
// re-hashed; an empty one keeps the current password.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	var req UserRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Users.Update(ctx, id, req.input())
	if err != nil {
		return h.writeFailed(c, req.Email, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHandler) writeFailed(c echo.Context, email string, err error) error {
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email " + email + " is already registered"})
	}
	return fail(c, h.Log, err)
}
