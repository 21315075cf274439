package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

func swaggerRouter(cfg config.SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func swaggerRequest(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remote
	return req
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	w := httptest.NewRecorder()
	swaggerRouter(config.SwaggerConfig{}, nil).ServeHTTP(w, swaggerRequest("10.0.0.1:5555"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))
}

func TestSwaggerProtection_AllowList(t *testing.T) {
	cfg := config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.1.10", "10.20.0.0/16"}}
	router := swaggerRouter(cfg, nil)

	tests := []struct {
		remote string
		status int
	}{
		{"192.168.1.10:4000", http.StatusOK},
		{"10.20.3.4:4000", http.StatusOK},
		{"10.21.3.4:4000", http.StatusForbidden},
		{"8.8.8.8:4000", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, swaggerRequest(tt.remote))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	svc := newTestJWTService()
	jwt := JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: svc})
	router := swaggerRouter(config.SwaggerConfig{Enabled: true, RequireAuth: true}, jwt)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, swaggerRequest("127.0.0.1:1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	pair, _ := issueToken(t, svc, "admin")
	req := swaggerRequest("127.0.0.1:1")
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", w.Body.String())
}

func TestIsIPAllowed(t *testing.T) {
	ips, nets := parseAllowList([]string{" 127.0.0.1 ", "bogus", "172.16.0.0/12", "300.1.1.1/8"})

	assert.Len(t, ips, 1)
	assert.Len(t, nets, 1)
	assert.True(t, isIPAllowed(net.ParseIP("127.0.0.1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("172.31.255.1"), ips, nets))
	assert.False(t, isIPAllowed(net.ParseIP("172.32.0.1"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
