package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alchemorsel/recipebox/internal/infrastructure/config"
	"github.com/alchemorsel/recipebox/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebox/test/testutils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"success":true,"data":"` + strings.Repeat("soup ", 200) + `"}`))
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	// Arrange
	h := RateLimit(config.RateLimitConfig{Enable: true, RequestsPerMin: 1, BurstSize: 1}, zap.NewNop())(http.HandlerFunc(okHandler))

	// Act
	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	testutils.NewHTTPAssertions(t).Failure(second, http.StatusTooManyRequests, "TOO_MANY_REQUESTS")
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	h := RateLimit(config.RateLimitConfig{Enable: false, RequestsPerMin: 1, BurstSize: 0}, zap.NewNop())(http.HandlerFunc(okHandler))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCORS(t *testing.T) {
	cfg := config.ServerConfig{EnableCORS: true, AllowedOrigins: []string{"https://recipes.example"}}
	h := CORS(cfg, false)(http.HandlerFunc(okHandler))

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes", nil)
		req.Header.Set("Origin", "https://recipes.example")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://recipes.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestJSONBody_RejectsOtherContentTypes(t *testing.T) {
	h := JSONBody(zap.NewNop())(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", strings.NewReader("title=Soup"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	testutils.NewHTTPAssertions(t).Failure(rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestCompressor_PrefersBrotli(t *testing.T) {
	h := Compressor(5)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	// Arrange
	collector := monitoring.NewMetricsCollector(zap.NewNop())
	r := chi.NewRouter()
	r.Use(Metrics(collector))
	r.Get("/recipes/{id}", okHandler)

	// Act
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/42", nil))

	// Assert
	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/recipes/{id}" {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "expected a sample labelled with the route pattern")
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core), "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		okHandler(w, r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recipes", nil))

	assert.Equal(t, 1, logs.FilterMessage("Client error").Len())
	assert.Equal(t, 1, logs.FilterMessage("Request completed").Len())
}
