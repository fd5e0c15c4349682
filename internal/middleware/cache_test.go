package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"
)

func TestEncodeDecodeEntry(t *testing.T) {
	status, body, ok := decodeEntry(encodeEntry(http.StatusOK, []byte(`{"items":[]}`)))
	require.True(t, ok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, `{"items":[]}`, string(body))

	_, _, ok = decodeEntry([]byte{1, 2})
	require.False(t, ok)
}

func TestCacheKeyVariesWithQuery(t *testing.T) {
	e := echo.New()
	req1 := httptest.NewRequest(http.MethodGet, "/v1/vehicles?page=1", nil)
	req2 := httptest.NewRequest(http.MethodGet, "/v1/vehicles?page=2", nil)
	c1 := e.NewContext(req1, httptest.NewRecorder())
	c2 := e.NewContext(req2, httptest.NewRecorder())

	require.NotEqual(t, cacheKey("cache", c1), cacheKey("cache", c2))
	require.Equal(t, cacheKey("cache", c1), cacheKey("cache", c1))
}

// Without a Redis client both middlewares must be transparent.
func TestCacheAndRateLimitDegradeOpen(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	h := ResponseCache(nil, config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20})(next)
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-Cache"))

	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil), rec2)
	h2 := RateLimit(nil, config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"})(next)
	require.NoError(t, h2(c2))
	require.Equal(t, http.StatusOK, rec2.Code)
}
