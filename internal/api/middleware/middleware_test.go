package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

type staticValidator struct {
	token  string
	claims *entities.AdminClaims
}

func (v staticValidator) ValidateToken(token string) (*entities.AdminClaims, error) {
	if token != v.token {
		return nil, errors.New("bad token")
	}
	return v.claims, nil
}

func TestRequireAdmin(t *testing.T) {
	validator := staticValidator{token: "good", claims: &entities.AdminClaims{UserID: "u1", Email: "admin@clinic.test"}}

	var seen *entities.AdminClaims
	protected := RequireAdmin(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "bearer good", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u1", seen.UserID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memoryCache) Increment(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *memoryCache) SetNX(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = value
	return true, nil
}

func TestCacheMiddleware(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := NewCacheMiddleware(cache).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":"home"}`))
	}))

	get := func(url string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
		return w
	}

	first := get("/api/pages?path=/&x=1")
	second := get("/api/pages?x=1&path=/")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"page":"home"}`, second.Body.String())
	assert.Equal(t, 1, calls)

	get("/api/content/home")
	get("/api/content/home")
	assert.Equal(t, 2, calls)

	get("/api/admin/appointments")
	get("/api/admin/appointments")
	assert.Equal(t, 4, calls)

	require.NoError(t, cache.DeletePattern(context.Background(), HTTPCachePrefix+"*"))
	assert.Equal(t, "MISS", get("/api/pages?path=/&x=1").Header().Get("X-Cache"))
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://clinic.example", " "})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	req.Header.Set("Origin", "https://clinic.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "https://clinic.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, w.Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/pages", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponseOptimizationSkipsEventStreams(t *testing.T) {
	handler := ResponseOptimization(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, isFlusher := w.(http.Flusher)
		assert.True(t, isFlusher)
		_, _ = w.Write([]byte("event: connected\n\n"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/content", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("ETag"))
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "event: connected\n\n", w.Body.String())
}

func TestRouteIsRecordedForOuterMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/doctors/{id}", func(w http.ResponseWriter, r *http.Request) {})

	var route string
	outer := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, info := withRouteInfo(r)
		RecordRoute(mux).ServeHTTP(w, r)
		route = info.route("none")
	})

	outer.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/doctors/d1", nil))
	assert.Equal(t, "GET /api/doctors/{id}", route)
}
