package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole("MANAGER", "ADMIN")

	run := func(role interface{}) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		_ = mw(okHandler)(c)
		return rec
	}

	assert.Equal(t, http.StatusOK, run("MANAGER").Code)
	assert.Equal(t, http.StatusOK, run("ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, run("USER").Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
	assert.Equal(t, http.StatusForbidden, run(123).Code)
}

func TestJWTAuth(t *testing.T) {
	const secret = "mw-secret"
	e := echo.New()
	mw := JWTAuth(secret)

	run := func(authorization string) (*httptest.ResponseRecorder, echo.Context) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		_ = mw(okHandler)(c)
		return rec, c
	}

	t.Run("valid token passes claims through", func(t *testing.T) {
		at, err := utils.NewAccessToken(secret, 7, "USER", 5)
		require.NoError(t, err)
		rec, c := run("Bearer " + at.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(7), c.Get("user_id"))
		assert.Equal(t, "USER", c.Get("role"))
	})

	t.Run("missing header", func(t *testing.T) {
		rec, _ := run("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		rec, _ := run("Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		at, err := utils.NewAccessToken("other-secret", 7, "USER", 5)
		require.NoError(t, err)
		rec, _ := run("Bearer " + at.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/rooms")

	cfg := config.RateLimitConfig{Prefix: "hotel:rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "hotel:rl:ip:10.0.0.9:user:anon:route:GET /v1/rooms", rateKey(cfg, c))

	// After JWTAuth the subject claim is a float64.
	c.Set("user_id", float64(42))
	assert.Equal(t, "hotel:rl:ip:10.0.0.9:user:42:route:GET /v1/rooms", rateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "hotel:rl:user:42", rateKey(cfg, c))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(3), toInt64(int64(3)))
	assert.Equal(t, int64(3), toInt64(3))
	assert.Equal(t, int64(3), toInt64(3.9))
	assert.Equal(t, int64(3), toInt64("3"))
	assert.Equal(t, int64(0), toInt64(nil))
}

func TestCachedResponseReplay(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/rooms", nil), httptest.NewRecorder())
	rec := c.Response().Writer.(*httptest.ResponseRecorder)

	hit := cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(`{"rooms":[]}`),
	}
	raw, err := json.Marshal(hit)
	require.NoError(t, err)
	var decoded cachedResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.NoError(t, replay(c, decoded))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"rooms":[]}`, rec.Body.String())
}

func TestRecorderBuffersUpToLimit(t *testing.T) {
	inner := httptest.NewRecorder()
	r := &recorder{ResponseWriter: inner, status: http.StatusOK, limit: 5}

	n, err := r.Write([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, len("hello world"), n)

	// The client gets everything; the cache buffer stops at the limit
	// so the oversized response is detected and skipped.
	assert.Equal(t, "hello world", inner.Body.String())
	assert.Equal(t, "hello", r.buf.String())
	assert.Equal(t, int64(len("hello world")), r.seen)
}
