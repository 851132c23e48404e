package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/apiserver/middleware"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/token"
	"github.com/glintlab/aegis/internal/common/dto"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// User handles tenant user administration. Every operation is scoped to the
// caller's tenant.
type User struct {
	db     database.Database
	tokens *token.Service
	logger *zap.Logger
}

// NewUser creates a new user handler
func NewUser(db database.Database, tokens *token.Service, logger *zap.Logger) *User {
	return &User{db: db, tokens: tokens, logger: logger}
}

// List handles GET /api/users.
func (h *User) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	users, err := h.db.ListUsersByTenant(c.Request.Context(), user.TenantID)
	if err != nil {
		h.logger.Error("listing users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing users failed"})
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /api/users. New users join the caller's tenant; the
// cross-tenant saas_admin type cannot be granted here.
func (h *User) Create(c *gin.Context) {
	caller, _ := middleware.UserFromContext(c)
	ctx := c.Request.Context()

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.db.GetUserByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("checking email failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating user failed"})
		return
	}

	if req.RoleID != nil {
		role, err := h.db.GetRoleByID(ctx, *req.RoleID)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role not found"})
			return
		}
		if err != nil {
			h.logger.Error("loading role failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "creating user failed"})
			return
		}
		if role.TenantID != nil && *role.TenantID != caller.TenantID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role not found"})
			return
		}
	}

	userType := auth.UserType(req.UserType)
	if req.UserType == "" {
		userType = auth.UserTypeTeamMember
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hashing password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating user failed"})
		return
	}

	user := &database.User{
		TenantID:     caller.TenantID,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		UserType:     userType,
		RoleID:       req.RoleID,
		IsActive:     true,
	}
	if err := h.db.CreateUser(ctx, user); errors.Is(err, database.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	} else if err != nil {
		h.logger.Error("creating user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating user failed"})
		return
	}

	h.logger.Info("user created",
		zap.Uint("tenantId", caller.TenantID),
		zap.Uint("userId", user.ID))
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /api/users/:id. Deactivating a user also revokes its
// refresh tokens, so the lockout does not wait for the next rotation.
func (h *User) Update(c *gin.Context) {
	caller, _ := middleware.UserFromContext(c)
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.db.GetUserByID(ctx, uint(id))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.logger.Error("loading user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating user failed"})
		return
	}
	if user.TenantID != caller.TenantID {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RoleID != nil {
		role, err := h.db.GetRoleByID(ctx, *req.RoleID)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role not found"})
			return
		}
		if err != nil {
			h.logger.Error("loading role failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "updating user failed"})
			return
		}
		if role.TenantID != nil && *role.TenantID != caller.TenantID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role not found"})
			return
		}
		user.RoleID = req.RoleID
	}

	deactivated := false
	if req.IsActive != nil {
		deactivated = user.IsActive && !*req.IsActive
		user.IsActive = *req.IsActive
	}

	if err := h.db.UpdateUser(ctx, user); err != nil {
		h.logger.Error("updating user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating user failed"})
		return
	}

	if deactivated {
		if err := h.tokens.RevokeUser(ctx, user.ID); err != nil {
			h.logger.Error("revoking sessions failed",
				zap.Uint("userId", user.ID), zap.Error(err))
		}
		h.logger.Info("user deactivated",
			zap.Uint("tenantId", caller.TenantID),
			zap.Uint("userId", user.ID))
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
