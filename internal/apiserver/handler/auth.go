package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/apiserver/middleware"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/gateway"
	"github.com/glintlab/aegis/internal/auth/token"
	"github.com/glintlab/aegis/internal/common/dto"
	"github.com/glintlab/aegis/pkg/metrics"
	"go.uber.org/zap"
)

// Auth handles the authentication endpoints.
type Auth struct {
	gateway *gateway.Gateway
	tokens  *token.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(gw *gateway.Gateway, tokens *token.Service, m *metrics.Metrics, logger *zap.Logger) *Auth {
	return &Auth{gateway: gw, tokens: tokens, metrics: m, logger: logger}
}

func toUserResponse(u *database.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  string(u.UserType),
		RoleID:    u.RoleID,
		IsAdmin:   u.IsAdmin,
		IsActive:  u.IsActive,
	}
}

func toTokenResponse(p *token.Pair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    p.ExpiresIn,
	}
}

// Register handles POST /api/auth/register. It creates a tenant with its
// first admin user and returns an initial token pair.
func (h *Auth) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tenant, pair, err := h.gateway.Register(c.Request.Context(), gateway.RegisterInput{
		TenantName: req.TenantName,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
	})
	if errors.Is(err, auth.ErrEmailExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	if err != nil {
		h.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	h.metrics.Register()
	c.JSON(http.StatusCreated, dto.RegisterResponse{
		User: toUserResponse(user),
		Tenant: dto.TenantResponse{
			ID:        tenant.ID,
			Name:      tenant.Name,
			PackageID: tenant.PackageID,
		},
		Tokens: toTokenResponse(pair),
	})
}

// Login handles POST /api/auth/login. Every credential failure produces the
// same response.
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.gateway.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.metrics.Login("failure")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.metrics.Login("success")
	c.JSON(http.StatusOK, dto.LoginResponse{
		User:   toUserResponse(user),
		Tokens: toTokenResponse(pair),
	})
}

// RefreshToken handles POST /api/auth/refresh. The presented refresh token is
// rotated out; its replacement is part of the response. Invalid, expired and
// reused tokens are all rejected with 401.
func (h *Auth) RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, auth.ErrTokenReuse):
		h.metrics.TokenReuse()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	case errors.Is(err, auth.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	case errors.Is(err, auth.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		return
	case err != nil:
		h.logger.Error("token refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	h.metrics.TokenRotation()
	c.JSON(http.StatusOK, toTokenResponse(pair))
}

// Logout handles POST /api/auth/logout. Revoking an unknown token succeeds,
// so repeating a logout is harmless.
func (h *Auth) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth/me. It returns the authenticated user together
// with the tenant scope derived from the user type.
func (h *Auth) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	scope, _ := middleware.ScopeFromContext(c)

	c.JSON(http.StatusOK, gin.H{
		"user":        toUserResponse(user),
		"tenantScope": scope,
	})
}
