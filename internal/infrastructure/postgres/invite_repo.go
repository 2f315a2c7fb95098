package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const inviteColumns = `id, code, created_at, created_by, expires_at, is_active, used_by, used_at`

type InviteRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInviteRepository(pool *pgxpool.Pool, logger *slog.Logger) *InviteRepository {
	return &InviteRepository{pool: pool, logger: logger.With("component", "invite_repo")}
}

func (r *InviteRepository) Create(ctx context.Context, c *domain.InviteCode) (*domain.InviteCode, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO invite_codes (code, created_by, expires_at, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+inviteColumns,
		c.Code, c.CreatedBy, c.ExpiresAt, c.IsActive,
	)
	created, err := scanInvite(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrInviteCodeConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *InviteRepository) FindByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE code = $1`, code)
	return scanInvite(row)
}

func (r *InviteRepository) List(ctx context.Context) ([]*domain.InviteCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	defer rows.Close()

	var codes []*domain.InviteCode
	for rows.Next() {
		c, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// Delete removes the code row only. Role grants made through it live in
// user_roles and are untouched.
func (r *InviteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invite_codes WHERE id = $1`, id)
	if err != nil {
		if isBadID(err) {
			return domain.ErrInviteCodeNotFound
		}
		return fmt.Errorf("delete invite code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInviteCodeNotFound
	}
	return nil
}

// Redeem consumes the code and grants admin in one transaction.
// The UPDATE re-checks redeemability against the row as committed by any
// concurrent redeemer: under READ COMMITTED the second writer blocks on the
// row lock, re-evaluates the WHERE clause on the new version and matches
// nothing. The role insert only commits together with the consumption.
func (r *InviteRepository) Redeem(ctx context.Context, code, userID string, now time.Time) (ok bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil || !ok {
			_ = tx.Rollback(ctx)
		}
	}()

	var inviteID string
	err = tx.QueryRow(ctx, `
		UPDATE invite_codes
		SET    is_active = FALSE,
		       used_by   = $2,
		       used_at   = $3
		WHERE  code = $1
		  AND  is_active
		  AND  used_by IS NULL
		  AND  (expires_at IS NULL OR expires_at > $3)
		RETURNING id`,
		code, userID, now,
	).Scan(&inviteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("consume invite code: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, 'admin')
		ON CONFLICT (user_id, role) DO NOTHING`,
		userID,
	); err != nil {
		return false, fmt.Errorf("grant admin role: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit redeem: %w", err)
	}

	r.logger.InfoContext(ctx, "invite code redeemed", "invite_id", inviteID, "user_id", userID)
	return true, nil
}

func (r *InviteRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invite_codes SET is_active = FALSE
		WHERE is_active AND used_by IS NULL AND expires_at IS NOT NULL AND expires_at <= $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired invite codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanInvite(row rowScanner) (*domain.InviteCode, error) {
	var c domain.InviteCode
	err := row.Scan(&c.ID, &c.Code, &c.CreatedAt, &c.CreatedBy, &c.ExpiresAt, &c.IsActive, &c.UsedBy, &c.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInviteCodeNotFound
		}
		return nil, fmt.Errorf("scan invite code: %w", err)
	}
	return &c, nil
}
