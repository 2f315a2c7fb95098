package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepository stores refresh-token backed sessions. Only hashes are stored.
type SessionRepository interface {
	Create(ctx context.Context, userID, refreshTokenHash string, expiresAt time.Time) (*domain.SessionRecord, error)
	FindByID(ctx context.Context, id string) (*domain.SessionRecord, error)
	// Rotate swaps the refresh token of an active session in one statement.
	// Returns domain.ErrTokenInvalid when oldHash matches no active session.
	Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (*domain.SessionRecord, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID, exceptID string) (int64, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// TokenRepository stores hashed one-time tokens (password recovery).
type TokenRepository interface {
	Create(ctx context.Context, userID string, purpose domain.TokenPurpose, tokenHash string, expiresAt time.Time) error
	// Claim marks the token used and returns it. Expired, used or unknown
	// tokens yield domain.ErrTokenInvalid.
	Claim(ctx context.Context, tokenHash string, purpose domain.TokenPurpose) (*domain.OneTimeToken, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

type RoleRepository interface {
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Role, error)
}
