package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/repository"
)

// EventHandler serves football matches.
type EventHandler struct {
	Events *repository.EventRepo
	Log    logrus.FieldLogger
}

func NewEventHandler(r *repository.EventRepo, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{Events: r, Log: log}
}

func (req *EventRequest) input() repository.EventInput {
	date, _ := parseEventDate(req.Date) // already validated
	return repository.EventInput{
		Team1Name:    req.Team1Name,
		Team2Name:    req.Team2Name,
		Team1LogoURL: req.Team1LogoURL,
		Team2LogoURL: req.Team2LogoURL,
		Description:  req.Description,
		Date:         date,
		Location:     req.Location,
		CategoryID:   req.CategoryID,
	}
}

// List returns all events ordered by kickoff.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Events.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "event")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) Create(c echo.Context) error {
	var req EventRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Events.Create(ctx, req.input())
	if err != nil {
		return h.writeFailed(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *EventHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "event")
	}
	var req EventRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Events.Update(ctx, id, req.input())
	if err != nil {
		return h.writeFailed(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Delete removes the event together with its tribunes and orders.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "event")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Events.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}

func (h *EventHandler) writeFailed(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category does not exist"})
	}
	return fail(c, h.Log, err)
}
