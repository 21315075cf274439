package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "wms-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string) (*auth.TokenPair, auth.Subject) {
	t.Helper()
	branch := uuid.New()
	sub := auth.Subject{UserID: uuid.New(), Username: "jwanjiru", Role: role, BranchID: &branch}
	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	return pair, sub
}

func jwtRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/api/v1/parcels", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetJWTUserID(c),
			"role":      GetJWTRole(c),
			"branch_id": GetJWTBranchID(c),
		})
	})
	router.GET("/api/v1/health", func(c *gin.Context) { c.String(http.StatusOK, "up") })
	return router
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	pair, sub := issueToken(t, svc, "clerk")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	w := httptest.NewRecorder()
	jwtRouter(DefaultJWTConfig(svc)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, sub.UserID.String(), body["user_id"])
	assert.Equal(t, "clerk", body["role"])
	assert.Equal(t, sub.BranchID.String(), body["branch_id"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	pair, _ := issueToken(t, svc, "clerk")

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage token", "Bearer not-a-jwt", dto.ErrCodeTokenInvalid},
		{"refresh token", "Bearer " + pair.RefreshToken, dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			jwtRouter(DefaultJWTConfig(svc)).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	w := httptest.NewRecorder()
	jwtRouter(DefaultJWTConfig(newTestJWTService())).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService()
	pair, _ := issueToken(t, svc, "accountant")
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	cfg := DefaultJWTConfig(svc)
	cfg.TokenBlacklist = blacklist
	router := jwtRouter(cfg)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)

	require.NoError(t, blacklist.Add(context.Background(), claims.ID, time.Minute))
	w := send()
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
}

func TestRequireRoles(t *testing.T) {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.POST("/api/v1/parcels/confirm", RequireRoles(Managers...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		role   string
		status int
	}{
		{"manager", http.StatusNoContent},
		{"admin", http.StatusNoContent},
		{"clerk", http.StatusForbidden},
		{"client", http.StatusForbidden},
		{"driver", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			pair, _ := issueToken(t, svc, tt.role)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/parcels/confirm", nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
			}
		})
	}
}

func TestRequireRoles_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/api/v1/users", RequireRoles(AdminOnly...), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
