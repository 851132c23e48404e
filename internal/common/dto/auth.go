package dto

// RegisterRequest represents a tenant signup request
type RegisterRequest struct {
	TenantName string `json:"tenantName" binding:"required"`
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the opaque refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest carries the refresh token to invalidate
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents an issued access/refresh token pair
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// TenantResponse represents tenant information returned to clients
type TenantResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	PackageID *uint  `json:"packageId,omitempty"`
}

// UserResponse represents user information returned to clients
type UserResponse struct {
	ID        uint   `json:"id"`
	TenantID  uint   `json:"tenantId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType"`
	RoleID    *uint  `json:"roleId,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	IsActive  bool   `json:"isActive"`
}

// RegisterResponse represents a successful signup
type RegisterResponse struct {
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
	Tokens TokenResponse  `json:"tokens"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// CreateRoleRequest represents a request to create a tenant role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest represents a request to update a tenant role
type UpdateRoleRequest struct {
	Name        string    `json:"name,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// RoleResponse represents a role with its permission set
type RoleResponse struct {
	ID          uint     `json:"id"`
	TenantID    *uint    `json:"tenantId,omitempty"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// CreateUserRequest represents a request to create a tenant user
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password" binding:"required,min=8"`
	UserType  string `json:"userType" binding:"omitempty,oneof=agency_admin team_member customer"`
	RoleID    *uint  `json:"roleId,omitempty"`
}

// UpdateUserRequest represents a request to update a tenant user
type UpdateUserRequest struct {
	RoleID   *uint `json:"roleId,omitempty"`
	IsActive *bool `json:"isActive,omitempty"`
}

// ModuleResponse represents a module with the tenant's entitlement state
type ModuleResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	IsCore      bool   `json:"isCore"`
	IsEnabled   bool   `json:"isEnabled"`
}

// SetModuleRequest represents a request to toggle a tenant's entitlement
type SetModuleRequest struct {
	Enabled bool `json:"enabled"`
}

// EntitlementResponse represents the outcome of an entitlement check
type EntitlementResponse struct {
	Module  string `json:"module"`
	Enabled bool   `json:"enabled"`
}
