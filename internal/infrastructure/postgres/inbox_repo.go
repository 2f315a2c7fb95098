package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, m *domain.ContactSubmission) (*domain.ContactSubmission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contact_submissions (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, message, is_read, created_at`,
		m.Name, m.Email, m.Message)
	return scanContact(row)
}

func (r *ContactRepository) List(ctx context.Context) ([]*domain.ContactSubmission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, message, is_read, created_at
		FROM contact_submissions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]*domain.ContactSubmission, 0)
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *ContactRepository) SetRead(ctx context.Context, id string, read bool) error {
	return execOne(ctx, r.pool, domain.ErrMessageNotFound,
		`UPDATE contact_submissions SET is_read = $2 WHERE id = $1`, id, read)
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, domain.ErrMessageNotFound,
		`DELETE FROM contact_submissions WHERE id = $1`, id)
}

func scanContact(row rowScanner) (*domain.ContactSubmission, error) {
	var m domain.ContactSubmission
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return &m, nil
}

type SubscriberRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepository(pool *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{pool: pool}
}

// Subscribe relies on the conditional DO UPDATE: an active row is left alone
// and RETURNING yields nothing.
func (r *SubscriberRepository) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := r.pool.QueryRow(ctx, `
		INSERT INTO newsletter_subscribers (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE
		SET    is_active = TRUE, subscribed_at = NOW()
		WHERE  newsletter_subscribers.is_active = FALSE
		RETURNING id, email, is_active, subscribed_at`,
		email,
	).Scan(&s.ID, &s.Email, &s.IsActive, &s.SubscribedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return &s, nil
}

func (r *SubscriberRepository) List(ctx context.Context, search string) ([]*domain.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, is_active, subscribed_at
		FROM newsletter_subscribers
		WHERE $1 = '' OR email ILIKE '%' || $1 || '%'
		ORDER BY subscribed_at DESC`,
		search)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]*domain.Subscriber, 0)
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.IsActive, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

func (r *SubscriberRepository) SetActive(ctx context.Context, id string, active bool) error {
	return execOne(ctx, r.pool, domain.ErrSubscriberNotFound,
		`UPDATE newsletter_subscribers SET is_active = $2 WHERE id = $1`, id, active)
}

func (r *SubscriberRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, domain.ErrSubscriberNotFound,
		`DELETE FROM newsletter_subscribers WHERE id = $1`, id)
}

type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

func (r *SettingRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT setting_key, setting_value, updated_at FROM admin_settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make([]*domain.Setting, 0)
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

// Upsert writes all values in one transaction.
func (r *SettingRepository) Upsert(ctx context.Context, values map[string]string) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(`
			INSERT INTO admin_settings (setting_key, setting_value)
			VALUES ($1, $2)
			ON CONFLICT (setting_key) DO UPDATE
			SET setting_value = EXCLUDED.setting_value, updated_at = NOW()`, k, v)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	return execOne(ctx, r.pool, domain.ErrSettingNotFound,
		`DELETE FROM admin_settings WHERE setting_key = $1`, key)
}

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) Counts(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM publications),
			(SELECT COUNT(*) FROM contact_submissions),
			(SELECT COUNT(*) FROM contact_submissions WHERE NOT is_read),
			(SELECT COUNT(*) FROM newsletter_subscribers),
			(SELECT COUNT(*) FROM education),
			(SELECT COUNT(*) FROM experiences),
			(SELECT COUNT(*) FROM certifications),
			(SELECT COUNT(*) FROM achievements)`,
	).Scan(&s.Projects, &s.Publications, &s.Messages, &s.UnreadMessages, &s.Subscribers,
		&s.Education, &s.Experiences, &s.Certifications, &s.Achievements)
	if err != nil {
		return nil, fmt.Errorf("count stats: %w", err)
	}
	return &s, nil
}

// execOne runs a single-row statement and maps "no row touched" to notFound.
func execOne(ctx context.Context, pool *pgxpool.Pool, notFound error, query string, args ...any) error {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		if isBadID(err) {
			return notFound
		}
		return fmt.Errorf("exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
