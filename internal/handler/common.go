package handler // handler defines the HTTP handlers of the ticketing API

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/repository"
)

// dbTimeout bounds every store round trip made on behalf of a request.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// validatable is implemented by every request DTO.
type validatable interface {
	Validate() error
}

// bindValid decodes the JSON body into req and runs its validation rules.
// On failure it has already written the 400 response and returns false.
func bindValid(c echo.Context, req validatable) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func validationFailed(c echo.Context, err error) error {
	body := echo.Map{"error": err.Error()}
	var fields validation.Errors
	if errors.As(err, &fields) {
		body["fields"] = fields
	}
	return c.JSON(http.StatusBadRequest, body)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c echo.Context, what string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + what + " id"})
}

// queryID reads an optional positive integer query parameter; an absent
// parameter yields 0.
func queryID(c echo.Context, name string) (int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// fail maps repository errors onto the JSON error contract.  Anything that
// is not a known sentinel is logged and answered with 500.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	switch {
	case errors.Is(err, repository.ErrInsufficientSeats),
		errors.Is(err, repository.ErrInvalidReference):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).WithField("path", c.Path()).Error("store timeout")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database timeout"})
	}
	log.WithError(err).WithField("path", c.Path()).Error("store failure")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
