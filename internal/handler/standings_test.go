package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/football-ticketing/internal/standings"
)

type fakeFetcher struct {
	raw json.RawMessage
	err error

	league, season string
}

func (f *fakeFetcher) Fetch(_ context.Context, league, season string) (json.RawMessage, error) {
	f.league, f.season = league, season
	return f.raw, f.err
}

func callStandings(t *testing.T, f StandingsFetcher, query string) *httptest.ResponseRecorder {
	t.Helper()
	log, _ := test.NewNullLogger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/standings"+query, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, NewStandingsHandler(f, log).Get(e.NewContext(req, rec)))
	return rec
}

func TestStandingsRequiresLeagueAndSeason(t *testing.T) {
	f := &fakeFetcher{}
	rec := callStandings(t, f, "?season=2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "league and season query parameters are required")
	assert.Empty(t, f.league, "upstream must not be called")
}

func TestStandingsPassesUpstreamBodyThrough(t *testing.T) {
	body := `{"errors":[],"response":[{"league":{"standings":[[{"rank":1}]]}}]}`
	f := &fakeFetcher{raw: json.RawMessage(body)}
	rec := callStandings(t, f, "?league=274&season=2024")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, body, rec.Body.String())
	assert.Equal(t, "274", f.league)
	assert.Equal(t, "2024", f.season)
}

func TestStandingsErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"missing key", standings.ErrMissingAPIKey, http.StatusInternalServerError},
		{"timeout", &standings.UpstreamError{Status: http.StatusGatewayTimeout, Message: "timed out"}, http.StatusGatewayTimeout},
		{"no data", &standings.UpstreamError{Status: http.StatusNotFound, Message: "standings not found"}, http.StatusNotFound},
		{"upstream 403", &standings.UpstreamError{Status: http.StatusForbidden, Message: "forbidden"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := callStandings(t, &fakeFetcher{err: tc.err}, "?league=1&season=2024")
			assert.Equal(t, tc.code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["error"])
		})
	}
}

func TestStandingsMissingKeyLogsTheVariableName(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/standings?league=274&season=2024", nil)
	rec := httptest.NewRecorder()
	h := NewStandingsHandler(&fakeFetcher{err: standings.ErrMissingAPIKey}, log)
	require.NoError(t, h.Get(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "API_FOOTBALL_KEY")
}
