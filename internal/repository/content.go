package repository

import (
	"context"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

// ContentRepository is implemented once per content collection.
type ContentRepository[T any] interface {
	List(ctx context.Context, filter domain.ContentFilter) ([]*T, error)
	GetByID(ctx context.Context, id string, filter domain.ContentFilter) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type ProjectRepository interface {
	ContentRepository[domain.Project]
	SetThumbnail(ctx context.Context, id, url string) error
}
