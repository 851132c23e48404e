package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash compared against on the unknown-email
// login path, so that unknown email and wrong password cost the same and
// stay indistinguishable to a caller measuring response times.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Gateway orchestrates registration and login: credential verification,
// tenant and user creation, and token issuance.
type Gateway struct {
	db     database.Database
	tokens *token.Service
	logger *zap.Logger
}

// New creates a new authentication gateway
func New(db database.Database, tokens *token.Service, logger *zap.Logger) *Gateway {
	return &Gateway{db: db, tokens: tokens, logger: logger}
}

// RegisterInput carries the signup form. The password is hashed before
// storage and never logged or echoed back.
type RegisterInput struct {
	TenantName string
	FirstName  string
	LastName   string
	Email      string
	Password   string
}

// Register creates a tenant and its first user in one transaction. The first
// user of a tenant is an agency admin with the admin override set.
func (g *Gateway) Register(ctx context.Context, in RegisterInput) (*database.User, *database.Tenant, *token.Pair, error) {
	if _, err := g.db.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, nil, nil, auth.ErrEmailExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	var (
		tenant *database.Tenant
		user   *database.User
	)
	err = g.db.Transaction(ctx, func(ctx context.Context) error {
		now := time.Now()
		tenant = &database.Tenant{Name: in.TenantName, CreatedAt: now, UpdatedAt: now}
		if err := g.db.CreateTenant(ctx, tenant); err != nil {
			return fmt.Errorf("creating tenant: %w", err)
		}

		user = &database.User{
			TenantID:     tenant.ID,
			Email:        in.Email,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			PasswordHash: string(hash),
			UserType:     auth.UserTypeAgencyAdmin,
			IsAdmin:      true,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := g.db.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
	// The email pre-check is advisory; under concurrent registrations the
	// unique index is the authority.
	if errors.Is(err, database.ErrDuplicate) {
		return nil, nil, nil, auth.ErrEmailExists
	}
	if err != nil {
		return nil, nil, nil, err
	}

	pair, err := g.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}

	g.logger.Info("registered tenant",
		zap.Uint("tenantId", tenant.ID),
		zap.Uint("userId", user.ID))
	return user, tenant, pair, nil
}

// Login verifies credentials and issues a token pair. Unknown email, wrong
// password and inactive account all produce the same rejection, and the
// unknown-email path still performs a bcrypt comparison.
func (g *Gateway) Login(ctx context.Context, email, password string) (*database.User, *token.Pair, error) {
	user, err := g.db.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, auth.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, auth.ErrInvalidCredentials
	}

	pair, err := g.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	g.logger.Info("user logged in",
		zap.Uint("userId", user.ID),
		zap.Uint("tenantId", user.TenantID))
	return user, pair, nil
}
