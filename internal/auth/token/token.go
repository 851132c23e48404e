package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pair is an access/refresh token pair. The refresh token is returned to the
// caller exactly once and is never retrievable again.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // access token lifetime in seconds
}

// Service issues, rotates and revokes session token pairs.
//
// Session state machine: Issued -> Active -> {Rotated | Revoked | Expired}.
// A rotated-out refresh token stays in storage marked revoked so a later
// presentation is recognised as reuse rather than as an unknown token.
type Service struct {
	db         database.Database
	jwtService *jwt.Service
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewService creates a new token service
func NewService(db database.Database, jwtService *jwt.Service, refreshTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		db:         db,
		jwtService: jwtService,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// HashToken computes the SHA-256 hash of a raw refresh token for storage.
// Raw tokens are never stored, only their hashes.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// generateRefreshToken creates a 256-bit random refresh token.
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue creates a new token pair for a user, starting a new session family.
func (s *Service) Issue(ctx context.Context, user *database.User) (*Pair, error) {
	return s.issue(ctx, user, uuid.NewString())
}

func (s *Service) issue(ctx context.Context, user *database.User, familyID string) (*Pair, error) {
	access, err := s.jwtService.GenerateToken(user.ID, user.TenantID, user.UserType, user.RoleID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	raw, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	record := &database.AuthToken{
		ID:        "rt-" + uuid.NewString(),
		UserID:    user.ID,
		FamilyID:  familyID,
		TokenHash: HashToken(raw),
		ExpiresAt: time.Now().Add(s.refreshTTL),
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateAuthToken(ctx, record); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int(s.jwtService.Duration().Seconds()),
	}, nil
}

// ValidateAccess verifies an access token by signature and expiry alone.
func (s *Service) ValidateAccess(tokenString string) (*jwt.Claims, error) {
	claims, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, auth.ErrTokenExpired
		}
		return nil, auth.ErrTokenInvalid
	}
	return claims, nil
}

// Refresh rotates a refresh token: the presented token becomes permanently
// unusable and a new pair is returned. Presenting a token that was already
// rotated out is a reuse incident: every session of the owning user is
// revoked and the caller gets a plain invalid-token rejection.
func (s *Service) Refresh(ctx context.Context, raw string) (*Pair, error) {
	record, err := s.db.GetAuthTokenByHash(ctx, HashToken(raw))
	if errors.Is(err, database.ErrNotFound) {
		return nil, auth.ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("looking up refresh token: %w", err)
	}

	if record.Revoked {
		s.logger.Warn("refresh token reuse detected, revoking all sessions",
			zap.Uint("userId", record.UserID),
			zap.String("familyId", record.FamilyID))
		if err := s.db.RevokeAuthTokensByUser(ctx, record.UserID); err != nil {
			return nil, fmt.Errorf("revoking sessions after reuse: %w", err)
		}
		return nil, auth.ErrTokenReuse
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, auth.ErrTokenExpired
	}

	user, err := s.db.GetUserByID(ctx, record.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, auth.ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("loading token owner: %w", err)
	}
	if !user.IsActive {
		return nil, auth.ErrTokenInvalid
	}

	// Single-winner rotation: the conditional revoke succeeds for exactly
	// one of any concurrent refreshes of the same token. Losers observe the
	// token as already rotated.
	won, err := s.db.MarkAuthTokenRevoked(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("rotating refresh token: %w", err)
	}
	if !won {
		return nil, auth.ErrTokenInvalid
	}

	return s.issue(ctx, user, record.FamilyID)
}

// Revoke invalidates a refresh token on logout. Unknown tokens are ignored,
// making logout idempotent.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	if err := s.db.DeleteAuthTokenByHash(ctx, HashToken(raw)); err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	return nil
}

// RevokeUser invalidates every refresh token of a user.
func (s *Service) RevokeUser(ctx context.Context, userID uint) error {
	if err := s.db.RevokeAuthTokensByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoking user sessions: %w", err)
	}
	return nil
}

// Purge removes expired refresh-token records and returns the count.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	return s.db.DeleteExpiredAuthTokens(ctx)
}
