package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/repository"
)

// TribuneHandler serves seating sections and their remaining capacity.
type TribuneHandler struct {
	Tribunes *repository.TribuneRepo
	Log      logrus.FieldLogger
}

func NewTribuneHandler(r *repository.TribuneRepo, log logrus.FieldLogger) *TribuneHandler {
	return &TribuneHandler{Tribunes: r, Log: log}
}

func (req *TribuneRequest) input() repository.TribuneInput {
	return repository.TribuneInput{
		EventID:        req.EventID,
		Name:           req.Name,
		Price:          *req.Price,
		AvailableSeats: *req.AvailableSeats,
	}
}

// List returns tribunes, optionally narrowed with ?eventId=.
func (h *TribuneHandler) List(c echo.Context) error {
	eventID, ok := queryID(c, "eventId")
	if !ok {
		return invalidID(c, "event")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Tribunes.List(ctx, eventID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TribuneHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "tribune")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Tribunes.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TribuneHandler) Create(c echo.Context) error {
	req := TribuneRequest{creating: true}
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Tribunes.Create(ctx, req.input())
	if err != nil {
		return h.writeFailed(c, req.Name, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Update overwrites name, price and seats.  The event of a tribune is fixed
// at creation; an event_id in the body is ignored.
func (h *TribuneHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "tribune")
	}
	var req TribuneRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Tribunes.Update(ctx, id, req.input())
	if err != nil {
		return h.writeFailed(c, req.Name, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TribuneHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "tribune")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Tribunes.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tribune deleted"})
}

func (h *TribuneHandler) writeFailed(c echo.Context, name string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("tribune %q already exists for this event", name)})
	case errors.Is(err, repository.ErrInvalidReference):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event does not exist"})
	}
	return fail(c, h.Log, err)
}
