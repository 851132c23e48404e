package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/apiserver/middleware"
	"github.com/glintlab/aegis/internal/common/dto"
	"go.uber.org/zap"
)

// Role handles tenant role administration. All operations are scoped to the
// caller's tenant; roles of other tenants are indistinguishable from missing.
type Role struct {
	db     database.Database
	logger *zap.Logger
}

// NewRole creates a new role handler
func NewRole(db database.Database, logger *zap.Logger) *Role {
	return &Role{db: db, logger: logger}
}

func toRoleResponse(r *database.Role) dto.RoleResponse {
	perms := r.PermissionList()
	if perms == nil {
		perms = []string{}
	}
	return dto.RoleResponse{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Permissions: perms,
	}
}

// loadTenantRole fetches a role the caller's tenant owns. System roles and
// other tenants' roles are reported as not found for write access.
func (h *Role) loadTenantRole(c *gin.Context, tenantID uint) (*database.Role, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return nil, false
	}

	role, err := h.db.GetRoleByID(c.Request.Context(), uint(id))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
		return nil, false
	}
	if err != nil {
		h.logger.Error("loading role failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading role failed"})
		return nil, false
	}
	if role.TenantID == nil || *role.TenantID != tenantID {
		c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
		return nil, false
	}
	return role, true
}

// List handles GET /api/roles. It returns the tenant's roles plus the
// system-defined ones.
func (h *Role) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	roles, err := h.db.ListRolesByTenant(c.Request.Context(), user.TenantID)
	if err != nil {
		h.logger.Error("listing roles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing roles failed"})
		return
	}

	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /api/roles.
func (h *Role) Create(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := &database.Role{TenantID: &user.TenantID, Name: req.Name}
	role.SetPermissionList(req.Permissions)
	if err := h.db.CreateRole(c.Request.Context(), role); err != nil {
		h.logger.Error("creating role failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating role failed"})
		return
	}

	h.logger.Info("role created",
		zap.Uint("tenantId", user.TenantID),
		zap.Uint("roleId", role.ID))
	c.JSON(http.StatusCreated, toRoleResponse(role))
}

// Update handles PUT /api/roles/:id. Permission changes take effect on the
// next request of every user holding the role.
func (h *Role) Update(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	role, ok := h.loadTenantRole(c, user.TenantID)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Permissions != nil {
		role.SetPermissionList(*req.Permissions)
	}
	if err := h.db.UpdateRole(c.Request.Context(), role); err != nil {
		h.logger.Error("updating role failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating role failed"})
		return
	}
	c.JSON(http.StatusOK, toRoleResponse(role))
}

// Delete handles DELETE /api/roles/:id. Users still referencing the deleted
// role simply resolve to an empty permission set.
func (h *Role) Delete(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	role, ok := h.loadTenantRole(c, user.TenantID)
	if !ok {
		return
	}

	if err := h.db.DeleteRole(c.Request.Context(), role.ID); err != nil {
		h.logger.Error("deleting role failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deleting role failed"})
		return
	}

	h.logger.Info("role deleted",
		zap.Uint("tenantId", user.TenantID),
		zap.Uint("roleId", role.ID))
	c.Status(http.StatusNoContent)
}
