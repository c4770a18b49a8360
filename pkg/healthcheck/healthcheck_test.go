package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixed(status Status, message string) *CustomChecker {
	return NewCustomChecker("fixed", func(context.Context) (Status, string, interface{}) {
		return status, message, nil
	})
}

func TestCheck_NoCheckersIsHealthy(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestCheck_WorstStatusWins(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"one unhealthy", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			for i, s := range tc.statuses {
				hc.Register(string(rune('a'+i)), fixed(s, ""))
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tc.want, response.Status)
			require.Len(t, response.Checks, len(tc.statuses))
			assert.Equal(t, "a", response.Checks[0].Name)
		})
	}
}

func TestCheck_ResultsAreCached(t *testing.T) {
	calls := 0
	hc := New("1.0.0", zap.NewNop())
	hc.Register("counting", NewCustomChecker("counting", func(context.Context) (Status, string, interface{}) {
		calls++
		return StatusHealthy, "", nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, 1, calls)

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, 2, calls)
}

func TestHandler_UnhealthyIs503(t *testing.T) {
	// Arrange
	hc := New("1.0.0", zap.NewNop())
	hc.Register("database", fixed(StatusUnhealthy, "connection refused"))
	rec := httptest.NewRecorder()

	// Act
	hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Contains(t, body, "total_duration_ms")
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	check := NewRedisChecker(client).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)

	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	check = NewRedisChecker(client).Check(ctx)
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}
