package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profiledRouter(enabled bool, seen map[string]string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Profiling(enabled))
	record := func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			seen[key] = value
			return true
		})
		c.Status(http.StatusOK)
	}
	r.GET("/api/v1/branch-deposits/:id", record)
	r.GET("/api/v1/health", record)
	return r
}

func TestProfiling_LabelsRoute(t *testing.T) {
	seen := map[string]string{}
	w := httptest.NewRecorder()
	profiledRouter(true, seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/branch-deposits/42", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{
		"method":   "GET",
		"route":    "/api/v1/branch-deposits/:id",
		"resource": "branch-deposits",
	}, seen)
}

func TestProfiling_SkipsHealthAndDisabled(t *testing.T) {
	seen := map[string]string{}
	w := httptest.NewRecorder()
	profiledRouter(true, seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen)

	w = httptest.NewRecorder()
	profiledRouter(false, seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/branch-deposits/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen)
}

func TestResourceOf(t *testing.T) {
	for route, want := range map[string]string{
		"/api/v1/parcels":             "parcels",
		"/api/v1/parcels/:id/payment": "parcels",
		"/api/v2/reports/jobs/:name":  "reports",
		"/swagger/*any":               "swagger",
		"/api/v1/:id":                 "",
		"":                            "",
	} {
		assert.Equal(t, want, resourceOf(route), "route %q", route)
	}
}
