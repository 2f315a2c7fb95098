package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

type InviteRepository interface {
	// Create returns domain.ErrInviteCodeConflict when the code already exists.
	Create(ctx context.Context, code *domain.InviteCode) (*domain.InviteCode, error)
	FindByCode(ctx context.Context, code string) (*domain.InviteCode, error)
	List(ctx context.Context) ([]*domain.InviteCode, error)
	Delete(ctx context.Context, id string) error

	// Redeem consumes code for userID and grants the admin role in a single
	// transaction. It reports false when the code was not redeemable at now.
	Redeem(ctx context.Context, code, userID string, now time.Time) (bool, error)

	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
