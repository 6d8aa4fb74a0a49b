package standings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{"errors":[],"response":[{"league":{"id":274,"standings":[[{"rank":1,"team":{"name":"Persib"}}]]}}]}`

func upstream(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/standings", r.URL.Path)
		assert.Equal(t, "274", r.URL.Query().Get("league"))
		assert.Equal(t, "2025", r.URL.Query().Get("season"))
		assert.Equal(t, "k", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, upstreamHost, r.Header.Get("x-rapidapi-host"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func upstreamStatus(t *testing.T, err error) int {
	t.Helper()
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue), "want *UpstreamError, got %v", err)
	return ue.Status
}

func TestFetchPassesBodyThrough(t *testing.T) {
	srv := upstream(t, http.StatusOK, okBody)
	raw, err := NewClient(srv.URL, "k", time.Second).Fetch(context.Background(), "274", "2025")
	require.NoError(t, err)
	assert.JSONEq(t, okBody, string(raw))
}

func TestFetchFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   int
	}{
		"upstream status": {http.StatusForbidden, "quota exceeded", http.StatusForbidden},
		"errors object":   {http.StatusOK, `{"errors":{"token":"invalid"},"response":[]}`, http.StatusInternalServerError},
		"errors array":    {http.StatusOK, `{"errors":["bad season"],"response":[]}`, http.StatusInternalServerError},
		"empty response":  {http.StatusOK, `{"errors":[],"response":[]}`, http.StatusNotFound},
		"no standings":    {http.StatusOK, `{"errors":[],"response":[{"league":{"id":1}}]}`, http.StatusNotFound},
		"invalid json":    {http.StatusOK, `<html>`, http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := upstream(t, tc.status, tc.body)
			_, err := NewClient(srv.URL, "k", time.Second).Fetch(context.Background(), "274", "2025")
			assert.Equal(t, tc.want, upstreamStatus(t, err))
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, "k", 50*time.Millisecond).Fetch(context.Background(), "274", "2025")
	assert.Equal(t, http.StatusGatewayTimeout, upstreamStatus(t, err))
}

func TestFetchMissingKey(t *testing.T) {
	_, err := NewClient("http://unused", "", time.Second).Fetch(context.Background(), "1", "2")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
