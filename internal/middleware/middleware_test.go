package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/football-ticketing/internal/config"
	"github.com/iliyamo/football-ticketing/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, id int64, role string) string {
	t.Helper()
	tok, err := utils.NewSessionToken(secret, id, "u@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok.Token
}

// whoami echoes the principal, or "anon".
func whoami(c echo.Context) error {
	p, ok := PrincipalFrom(c)
	if !ok {
		return c.String(http.StatusOK, "anon")
	}
	return c.String(http.StatusOK, p.Role)
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionReadsCookieAndBearer(t *testing.T) {
	e := echo.New()
	e.Use(Session(secret))
	e.GET("/", whoami)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token(t, 1, "admin")})
	assert.Equal(t, "admin", serve(e, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 2, "user"))
	assert.Equal(t, "user", serve(e, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "anon", serve(e, req).Body.String())
}

func TestSessionMarksInvalidToken(t *testing.T) {
	e := echo.New()
	e.Use(Session(secret))
	e.GET("/", func(c echo.Context) error {
		_, ok := PrincipalFrom(c)
		assert.False(t, ok)
		assert.True(t, SessionInvalid(c))
		return c.NoContent(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tampered"})
	assert.Equal(t, http.StatusNoContent, serve(e, req).Code)
}

func TestSessionWithoutSecretIsAnonymous(t *testing.T) {
	e := echo.New()
	e.Use(Session(""))
	e.GET("/", whoami)
	e.GET("/me", whoami, RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 1, "admin"))
	assert.Equal(t, "anon", serve(e, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 1, "admin"))
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.Use(Session(secret))
	e.GET("/admin", whoami, RequireRole("admin"))
	e.GET("/me", whoami, RequireAuth())

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/admin", "", http.StatusUnauthorized},
		{"/admin", token(t, 1, "user"), http.StatusForbidden},
		{"/admin", token(t, 1, "admin"), http.StatusOK},
		{"/me", "", http.StatusUnauthorized},
		{"/me", token(t, 1, "user"), http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		assert.Equal(t, tc.want, serve(e, req).Code, "%s with %q", tc.path, tc.token)
	}
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/", whoami,
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, logrus.New()))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok, "header length beyond payload")
}

func TestStorableHeaderDropsPerRequestValues(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	hdr.Set(echo.HeaderXRequestID, "req-1")
	hdr.Set("X-Cache", "MISS")

	got := storableHeader(hdr)
	assert.Equal(t, echo.MIMEApplicationJSON, got.Get(echo.HeaderContentType))
	assert.Empty(t, got.Get(echo.HeaderXRequestID))
	assert.Empty(t, got.Get("X-Cache"))
	assert.Equal(t, "req-1", hdr.Get(echo.HeaderXRequestID), "original header untouched")
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(7), cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestCacheKeyDistinguishesPaths(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/events/:id")
		return cacheKeyFrom(cfg, c)
	}
	assert.NotEqual(t, key("/api/events/1"), key("/api/events/2"))
	assert.Equal(t, key("/api/events/1?x=1"), key("/api/events/1?x=1"))
	assert.Contains(t, key("/api/events/1"), "cache:")
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/orders")
	WithPrincipal(c, Principal{ID: 9, Role: "user"})

	assert.Equal(t, "rl:ip:10.0.0.1:user:9:route:POST /api/orders", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	assert.Equal(t, "rl:user:9", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestRequestLoggerLevels(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
