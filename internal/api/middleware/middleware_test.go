package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/cache"
)

func TestParseAuthorization(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Token abc123", "abc123"},
		{"token abc123", "abc123"},
		{"TOKEN abc123", "abc123"},
		{"Bearer abc123", ""},
		{"Token", ""},
		{"Token abc 123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAuthorization(tt.header))
		})
	}
}

func TestAuthenticate_StoresToken(t *testing.T) {
	var got string
	h := Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/company/me", nil)
	req.Header.Set("Authorization", "Token xyz")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "xyz", got)

	req = httptest.NewRequest(http.MethodGet, "/api/company/me", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "", got)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/customer/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))

	// one token refills every 20s at 3/min
	now = now.Add(21 * time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))

	now = now.Add(limiterIdleTTL + time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.limiters)
}

func TestRateLimiter_DisabledWhenNonPositive(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.allow("10.0.0.1"))
	}
}

func TestRateLimiter_IgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	rl := NewRateLimiter(2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/customer/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "203.0.113.7")
}

func TestRateLimiter_TrustedProxy(t *testing.T) {
	rl := NewRateLimiter(2)
	require.NoError(t, rl.TrustProxies([]string{"10.0.0.0/8", "192.168.1.1"}))

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		want       string
	}{
		{"untrusted peer", "203.0.113.7:4000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted peer uses last untrusted hop", "10.1.2.3:4000", "1.1.1.1, 198.51.100.1, 10.0.0.5", "", "198.51.100.1"},
		{"trusted single ip", "192.168.1.1:4000", "198.51.100.2", "", "198.51.100.2"},
		{"trusted peer falls back to real ip", "10.1.2.3:4000", "", "198.51.100.3", "198.51.100.3"},
		{"trusted peer without headers", "10.1.2.3:4000", "", "", "10.1.2.3"},
		{"garbage hop", "10.1.2.3:4000", "not-an-ip", "", "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/company/login", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, rl.clientIP(req))
		})
	}

	assert.Error(t, rl.TrustProxies([]string{"10.0.0.0/99"}))
	assert.Error(t, rl.TrustProxies([]string{"proxy.local"}))
}

func TestCacheMiddleware(t *testing.T) {
	memCache := cache.NewMemoryAdapter()
	m := NewCacheMiddleware(memCache, nil)

	calls := 0
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))

	for i, want := range []string{"MISS", "HIT"} {
		req := httptest.NewRequest(http.MethodGet, "/api/company/search?q=acme", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get("X-Cache"), "request %d", i)
		assert.JSONEq(t, `{"results":[]}`, w.Body.String())
	}
	assert.Equal(t, 1, calls)

	// uncached route
	req := httptest.NewRequest(http.MethodGet, "/api/company/me", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	key := m.generateCacheKey(httptest.NewRequest(http.MethodGet, "/api/company/search?q=acme", nil))
	assert.Contains(t, key, "http:cache:/api/company/search:")
	exists, err := memCache.Exists(req.Context(), key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/company/me", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/api/company/me", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
