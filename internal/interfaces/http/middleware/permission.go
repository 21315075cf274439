package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// Role groups used by the router
var (
	AdminOnly       = []identity.Role{identity.RoleAdmin}
	Managers        = []identity.Role{identity.RoleManager, identity.RoleAdmin}
	FinanceStaff    = []identity.Role{identity.RoleAccountant, identity.RoleManager, identity.RoleAdmin}
	ParcelWriters   = []identity.Role{identity.RoleClerk, identity.RoleManager, identity.RoleAdmin}
	ExpenseDeciders = []identity.Role{identity.RoleAccountant, identity.RoleAdmin}
	Staff           = []identity.Role{identity.RoleClerk, identity.RoleAccountant, identity.RoleManager, identity.RoleAdmin}
)

// PermissionConfig holds configuration for role middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequireRoles creates middleware that admits callers holding any of the roles
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return RequireRolesWithConfig(PermissionConfig{}, roles...)
}

// RequireRolesWithConfig creates role middleware with custom config
func RequireRolesWithConfig(cfg PermissionConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, roles, "No authentication claims found")
			return
		}

		role, ok := identity.ParseRole(claims.Role)
		if !ok || !role.In(roles...) {
			handlePermissionDenied(c, cfg, roles, "Role not allowed")
			return
		}

		c.Next()
	}
}

// HasRole reports whether the caller holds any of the roles
func HasRole(c *gin.Context, roles ...identity.Role) bool {
	role, ok := identity.ParseRole(GetJWTRole(c))
	return ok && role.In(roles...)
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, required []identity.Role, reason string) {
	if cfg.Logger != nil {
		names := make([]string, len(required))
		for i, r := range required {
			names[i] = r.String()
		}
		cfg.Logger.Warn("Permission denied",
			zap.String("reason", reason),
			zap.String("user_id", GetJWTUserID(c)),
			zap.String("role", GetJWTRole(c)),
			zap.Strings("required_roles", names),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeForbidden,
		"Access denied: insufficient permissions",
		getRequestIDFromContext(c),
	))
}
