package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth/rbac"
	"github.com/glintlab/aegis/internal/auth/token"
)

// Context keys set by the middleware chain.
const (
	ClaimsKey      = "claims"
	UserKey        = "user"
	TenantScopeKey = "tenantScope"
)

// JWTAuthMiddleware creates a middleware that validates the bearer access
// token and loads the authenticated user. Token validation is stateless;
// the user record is loaded afterwards so downstream permission checks see
// current role and active state. A storage failure denies the request, it
// never falls through as a grant.
func JWTAuthMiddleware(tokens *token.Service, db database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := tokens.ValidateAccess(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := db.GetUserByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, database.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserKey, user)
		c.Set(TenantScopeKey, rbac.Scope(user.UserType, user.TenantID))
		c.Next()
	}
}

// UserFromContext returns the authenticated user set by JWTAuthMiddleware.
func UserFromContext(c *gin.Context) (*database.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*database.User)
	return user, ok
}

// ScopeFromContext returns the tenant scope of the current request.
func ScopeFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(TenantScopeKey)
	if !ok {
		return "", false
	}
	scope, ok := v.(string)
	return scope, ok
}
