package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanics(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	handler := env.server.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "kaboom")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodOptions, "/api/ai/chatbot", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodGet, "/api/ai/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/ai/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")

	direct := &Server{cfg: Config{}}
	assert.Equal(t, "203.0.113.7", direct.clientIP(req))

	proxied := &Server{cfg: Config{TrustProxy: true}}
	assert.Equal(t, "198.51.100.1", proxied.clientIP(req))
}

func TestLimiterRegistry(t *testing.T) {
	clock := &fakeClock{now: testNow}
	reg := newLimiterRegistry(Limit{Requests: 3, Window: 15 * time.Minute}, clock.Now)

	for i := 0; i < 3; i++ {
		require.True(t, reg.allow("a"), "request %d", i)
	}
	assert.False(t, reg.allow("a"))
	assert.True(t, reg.allow("b"), "clients are limited independently")

	clock.Advance(5 * time.Minute)
	assert.True(t, reg.allow("a"))
	assert.False(t, reg.allow("a"))

	clock.Advance(time.Hour)
	assert.True(t, reg.allow("c"))

	reg.mu.Lock()
	defer reg.mu.Unlock()
	assert.Len(t, reg.visitors, 1, "idle clients are swept")
}
