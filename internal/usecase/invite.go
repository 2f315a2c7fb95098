package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/invitecode"
	"github.com/ErlanBelekov/portfolio/internal/repository"
)

const (
	DefaultInviteExpiryDays = 7
	MaxInviteExpiryDays     = 365
	maxCodeAttempts         = 5
)

type InviteUsecase struct {
	invites  repository.InviteRepository
	logger   *slog.Logger
	now      func() time.Time
	generate func() (string, error)
}

func NewInviteUsecase(invites repository.InviteRepository, logger *slog.Logger) *InviteUsecase {
	return &InviteUsecase{
		invites:  invites,
		logger:   logger.With("component", "invite_usecase"),
		now:      time.Now,
		generate: invitecode.Generate,
	}
}

// WithClock replaces time.Now, for tests.
func (u *InviteUsecase) WithClock(now func() time.Time) *InviteUsecase {
	u.now = now
	return u
}

// WithGenerator replaces the code generator, for tests.
func (u *InviteUsecase) WithGenerator(gen func() (string, error)) *InviteUsecase {
	u.generate = gen
	return u
}

// InviteView pairs a code with its status at listing time.
type InviteView struct {
	*domain.InviteCode
	Status domain.InviteStatus `json:"status"`
}

// Create issues a new code expiring in expiresInDays (0 means the default).
// A collision with an existing code is retried with a fresh one.
func (u *InviteUsecase) Create(ctx context.Context, creatorID string, expiresInDays int) (*InviteView, error) {
	if expiresInDays == 0 {
		expiresInDays = DefaultInviteExpiryDays
	}
	if expiresInDays < 1 || expiresInDays > MaxInviteExpiryDays {
		return nil, domain.ErrInvalidInviteExpiry
	}

	now := u.now()
	expiresAt := now.AddDate(0, 0, expiresInDays)

	var creator *string
	if creatorID != "" {
		creator = &creatorID
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := u.generate()
		if err != nil {
			return nil, err
		}

		created, err := u.invites.Create(ctx, &domain.InviteCode{
			Code:      code,
			CreatedBy: creator,
			ExpiresAt: &expiresAt,
			IsActive:  true,
		})
		if errors.Is(err, domain.ErrInviteCodeConflict) {
			u.logger.WarnContext(ctx, "invite code collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create invite code: %w", err)
		}

		u.logger.InfoContext(ctx, "invite code created", "invite_id", created.ID, "expires_at", expiresAt)
		return &InviteView{InviteCode: created, Status: created.Status(now)}, nil
	}
	return nil, fmt.Errorf("create invite code: %w", domain.ErrInviteCodeConflict)
}

// List returns every code, newest first.
func (u *InviteUsecase) List(ctx context.Context) ([]InviteView, error) {
	codes, err := u.invites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	now := u.now()
	views := make([]InviteView, len(codes))
	for i, c := range codes {
		views[i] = InviteView{InviteCode: c, Status: c.Status(now)}
	}
	return views, nil
}

// Revoke deletes a code outright. Roles already granted through it stay.
func (u *InviteUsecase) Revoke(ctx context.Context, id string) error {
	if err := u.invites.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrInviteCodeNotFound) {
			return err
		}
		return fmt.Errorf("delete invite code: %w", err)
	}
	u.logger.InfoContext(ctx, "invite code revoked", "invite_id", id)
	return nil
}

// DeactivateExpired flips is_active off for expired unredeemed codes.
func (u *InviteUsecase) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := u.invites.DeactivateExpired(ctx, u.now())
	if err != nil {
		return 0, fmt.Errorf("deactivate expired invite codes: %w", err)
	}
	return n, nil
}
