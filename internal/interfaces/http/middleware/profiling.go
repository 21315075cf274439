package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// Profiling labels each request's profile samples with its route pattern,
// method and resource. Health checks and the swagger UI are skipped.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || strings.HasSuffix(route, "/health") || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:   c.Request.Method,
			telemetry.ProfilingLabelRoute:    route,
			telemetry.ProfilingLabelResource: resourceOf(route),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceOf returns the first path segment after the API version,
// e.g. "/api/v1/branch-deposits/:id" gives "branch-deposits".
func resourceOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersion(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
