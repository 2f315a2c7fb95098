package repository

import (
	"context"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactSubmission) (*domain.ContactSubmission, error)
	List(ctx context.Context) ([]*domain.ContactSubmission, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
}

type SubscriberRepository interface {
	// Subscribe inserts email or reactivates an inactive row. An already
	// active subscription yields domain.ErrAlreadySubscribed.
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
	List(ctx context.Context, search string) ([]*domain.Subscriber, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type SettingRepository interface {
	List(ctx context.Context) ([]*domain.Setting, error)
	Upsert(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
}

type StatsRepository interface {
	Counts(ctx context.Context) (*domain.Stats, error)
}
