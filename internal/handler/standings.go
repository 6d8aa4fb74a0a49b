package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/standings"
)

// StandingsFetcher is satisfied by *standings.Client.
type StandingsFetcher interface {
	Fetch(ctx context.Context, league, season string) (json.RawMessage, error)
}

// StandingsHandler proxies league tables from the football statistics API.
type StandingsHandler struct {
	Client StandingsFetcher
	Log    logrus.FieldLogger
}

func NewStandingsHandler(client StandingsFetcher, log logrus.FieldLogger) *StandingsHandler {
	return &StandingsHandler{Client: client, Log: log}
}

// Get handles GET /api/standings?league=&season= and answers with the
// upstream body unchanged.
func (h *StandingsHandler) Get(c echo.Context) error {
	league := strings.TrimSpace(c.QueryParam("league"))
	season := strings.TrimSpace(c.QueryParam("season"))
	if league == "" || season == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "league and season query parameters are required"})
	}

	raw, err := h.Client.Fetch(c.Request().Context(), league, season)
	if err != nil {
		var up *standings.UpstreamError
		switch {
		case errors.Is(err, standings.ErrMissingAPIKey):
			h.Log.Error("standings requested but API_FOOTBALL_KEY is not set")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		case errors.As(err, &up):
			h.Log.WithFields(logrus.Fields{"league": league, "season": season, "status": up.Status}).Warn(up.Message)
			return c.JSON(up.Status, echo.Map{"error": up.Message})
		}
		h.Log.WithError(err).Error("standings lookup failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load standings"})
	}
	return c.JSONBlob(http.StatusOK, raw)
}
