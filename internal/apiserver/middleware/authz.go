package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/auth/entitlement"
	"github.com/glintlab/aegis/internal/auth/rbac"
	"github.com/glintlab/aegis/pkg/metrics"
)

// RequirePermission rejects the request unless the authenticated user holds
// the permission. Must run after JWTAuthMiddleware. Permission failures
// happen before any business effect runs.
func RequirePermission(resolver *rbac.Resolver, m *metrics.Metrics, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		allowed, err := resolver.HasPermission(c.Request.Context(), user, action)
		if err != nil {
			// Includes the tenant-mismatch integrity fault; deny, never grant.
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
			return
		}
		if !allowed {
			m.AccessDenied("permission")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

// RequireModule rejects the request unless the user's tenant is entitled to
// the feature module. Must run after JWTAuthMiddleware.
func RequireModule(gate *entitlement.Gate, m *metrics.Metrics, moduleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		enabled, err := gate.IsEnabled(c.Request.Context(), user.TenantID, moduleName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
			return
		}
		if !enabled {
			m.AccessDenied("module")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "module is not enabled for tenant"})
			return
		}
		c.Next()
	}
}
