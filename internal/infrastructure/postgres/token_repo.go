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

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, userID string, purpose domain.TokenPurpose, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_tokens (user_id, purpose, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		userID, string(purpose), tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create auth token: %w", err)
	}
	return nil
}

// Claim marks the token used in the same statement that checks it, so two
// concurrent claims of one token cannot both succeed.
func (r *TokenRepository) Claim(ctx context.Context, tokenHash string, purpose domain.TokenPurpose) (*domain.OneTimeToken, error) {
	var t domain.OneTimeToken
	var p string
	err := r.pool.QueryRow(ctx, `
		UPDATE auth_tokens
		SET    used_at = NOW()
		WHERE  token_hash = $1
		  AND  purpose    = $2
		  AND  used_at IS NULL
		  AND  expires_at > NOW()
		RETURNING id, user_id, purpose, token_hash, expires_at, used_at, created_at`,
		tokenHash, string(purpose),
	).Scan(&t.ID, &t.UserID, &p, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim auth token: %w", err)
	}
	t.Purpose = domain.TokenPurpose(p)
	return &t, nil
}

func (r *TokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM auth_tokens WHERE expires_at < $1 OR used_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale auth tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
