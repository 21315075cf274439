package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthRouter(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/v1/health", h.Health)
	return r
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		status   int
		health   string
		database string
	}{
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "healthy", "connected"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), http.StatusServiceUnavailable, "unhealthy", "disconnected"},
		{"no database", nil, http.StatusOK, "healthy", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			healthRouter(NewSystemHandler("1.4.0", tt.db)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			require.Equal(t, tt.status, w.Code)
			var resp HealthResponse
			envelope(t, w, &resp)
			assert.Equal(t, tt.health, resp.Status)
			assert.Equal(t, tt.database, resp.Database)
			assert.Equal(t, "1.4.0", resp.Version)
			assert.NotEmpty(t, resp.Uptime)
		})
	}
}

func TestSystemHandler_HealthPingHasDeadline(t *testing.T) {
	var hasDeadline bool
	h := NewSystemHandler("dev", pingerFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}))

	w := httptest.NewRecorder()
	healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasDeadline)
}
