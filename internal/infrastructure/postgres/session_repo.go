package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, user_id, refresh_token_hash, expires_at, revoked_at, created_at, refreshed_at`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, userID, refreshTokenHash string, expiresAt time.Time) (*domain.SessionRecord, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, refresh_token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING `+sessionColumns,
		userID, refreshTokenHash, expiresAt,
	)
	return scanSession(row)
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if isBadID(err) {
		return nil, domain.ErrSessionNotFound
	}
	return s, err
}

// Rotate is a compare-and-swap on the refresh token hash: a token that was
// already rotated, revoked or expired matches no row.
func (r *SessionRepository) Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (*domain.SessionRecord, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET    refresh_token_hash = $2,
		       expires_at         = $3,
		       refreshed_at       = NOW()
		WHERE  refresh_token_hash = $1
		  AND  revoked_at IS NULL
		  AND  expires_at > NOW()
		RETURNING `+sessionColumns,
		oldHash, newHash, expiresAt,
	)
	s, err := scanSession(row)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrTokenInvalid
	}
	return s, err
}

func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		if isBadID(err) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID, exceptID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = NOW()
		WHERE user_id = $1 AND id::text <> $2 AND revoked_at IS NULL`,
		userID, exceptID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)`,
		before)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row rowScanner) (*domain.SessionRecord, error) {
	var s domain.SessionRecord
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt, &s.RefreshedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}
