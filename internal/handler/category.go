package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/repository"
)

// CategoryHandler serves competition categories.  Reads are public, writes
// are admin only.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
	Log        logrus.FieldLogger
}

func NewCategoryHandler(r *repository.CategoryRepo, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{Categories: r, Log: log}
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Categories.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Categories.Create(ctx, req.Name, req.Description)
	if err != nil {
		return h.writeFailed(c, req.Name, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}
	var req CategoryRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Categories.Update(ctx, id, req.Name, req.Description)
	if err != nil {
		return h.writeFailed(c, req.Name, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category still has events; delete or move them first"})
		}
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

func (h *CategoryHandler) writeFailed(c echo.Context, name string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("category %q already exists", name)})
	}
	return fail(c, h.Log, err)
}
