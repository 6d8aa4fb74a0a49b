// Package standings talks to the external football statistics API and
// returns league tables as the raw upstream JSON.
package standings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const upstreamHost = "v3.football.api-sports.io"

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("server configuration error: API key missing")

// UpstreamError describes a failed standings lookup together with the HTTP
// status the proxy should answer with.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string { return e.Message }

// Client fetches standings.  A zero Timeout means 10 seconds.
type Client struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Timeout: timeout, HTTP: &http.Client{}}
}

// envelope holds only the parts of the upstream body that decide success.
// Errors arrives as [] when empty and as an object when not.
type envelope struct {
	Errors   json.RawMessage `json:"errors"`
	Response []struct {
		League struct {
			Standings json.RawMessage `json:"standings"`
		} `json:"league"`
	} `json:"response"`
}

// Fetch returns the upstream JSON for one league and season unchanged.
// Failures are reported as *UpstreamError:
//   - upstream non-2xx: that status with the upstream body text
//   - upstream reported errors: 500
//   - no standings in the response: 404
//   - timeout: 504
func (c *Client) Fetch(ctx context.Context, league, season string) (json.RawMessage, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := url.Values{}
	q.Set("league", league)
	q.Set("season", season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/standings?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.APIKey)
	req.Header.Set("x-rapidapi-host", upstreamHost)

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &UpstreamError{Status: http.StatusGatewayTimeout, Message: "request to the standings API timed out"}
		}
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Message: fmt.Sprintf("failed to load standings: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &UpstreamError{Status: http.StatusGatewayTimeout, Message: "request to the standings API timed out"}
		}
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Message: fmt.Sprintf("failed to read standings: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: "failed to load standings from the external API: " + strings.TrimSpace(string(body))}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Message: "standings API returned invalid JSON"}
	}
	if hasErrors(env.Errors) {
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Message: "standings API error: " + string(env.Errors)}
	}
	if len(env.Response) == 0 || isEmptyJSON(env.Response[0].League.Standings) {
		return nil, &UpstreamError{Status: http.StatusNotFound, Message: "standings not found or response format unexpected"}
	}
	return json.RawMessage(body), nil
}

// hasErrors treats null, [], {} and "" as "no errors".
func hasErrors(raw json.RawMessage) bool { return !isEmptyJSON(raw) }

func isEmptyJSON(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "[]", "{}", `""`:
		return true
	}
	return false
}
