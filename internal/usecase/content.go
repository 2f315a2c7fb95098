package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/repository"
)

// Cache holds serialised public listings. Implemented by the redis package.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, prefix string) error
}

// ContentUsecase serves one content collection: cached public reads and
// admin writes that invalidate the cache.
type ContentUsecase[T any] struct {
	kind    domain.EntityKind
	repo    repository.ContentRepository[T]
	cache   Cache
	prepare func(*T) error
	logger  *slog.Logger
}

// NewContentUsecase builds the usecase for kind. cache may be nil. prepare
// validates and normalises an item before it is written.
func NewContentUsecase[T any](kind domain.EntityKind, repo repository.ContentRepository[T], cache Cache, prepare func(*T) error, logger *slog.Logger) *ContentUsecase[T] {
	return &ContentUsecase[T]{
		kind:    kind,
		repo:    repo,
		cache:   cache,
		prepare: prepare,
		logger:  logger.With("component", "content_usecase", "kind", kind.Slug()),
	}
}

func (u *ContentUsecase[T]) Kind() domain.EntityKind { return u.kind }

// ListPublished returns published items, served from the cache when possible.
func (u *ContentUsecase[T]) ListPublished(ctx context.Context, featuredOnly bool) ([]*T, error) {
	key := u.kind.Slug() + ":all"
	if featuredOnly {
		key = u.kind.Slug() + ":featured"
	}

	if items, ok := u.fromCache(ctx, key); ok {
		return items, nil
	}

	items, err := u.repo.List(ctx, domain.ContentFilter{PublishedOnly: true, FeaturedOnly: featuredOnly})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", u.kind, err)
	}
	u.toCache(ctx, key, items)
	return items, nil
}

func (u *ContentUsecase[T]) GetPublished(ctx context.Context, id string) (*T, error) {
	return u.repo.GetByID(ctx, id, domain.ContentFilter{PublishedOnly: true})
}

// ListAll includes drafts; used by the admin CMS.
func (u *ContentUsecase[T]) ListAll(ctx context.Context) ([]*T, error) {
	items, err := u.repo.List(ctx, domain.ContentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", u.kind, err)
	}
	return items, nil
}

func (u *ContentUsecase[T]) Get(ctx context.Context, id string) (*T, error) {
	return u.repo.GetByID(ctx, id, domain.ContentFilter{})
}

func (u *ContentUsecase[T]) Create(ctx context.Context, item *T) (*T, error) {
	if err := u.runPrepare(item); err != nil {
		return nil, err
	}
	created, err := u.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", u.kind, err)
	}
	u.invalidate(ctx)
	return created, nil
}

func (u *ContentUsecase[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	if err := u.runPrepare(item); err != nil {
		return nil, err
	}
	updated, err := u.repo.Update(ctx, id, item)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update %s: %w", u.kind, err)
	}
	u.invalidate(ctx)
	return updated, nil
}

func (u *ContentUsecase[T]) Delete(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			return err
		}
		return fmt.Errorf("delete %s: %w", u.kind, err)
	}
	u.invalidate(ctx)
	return nil
}

// Invalidate drops cached listings for this collection. Other writers
// (e.g. thumbnail generation) call it after touching rows directly.
func (u *ContentUsecase[T]) Invalidate(ctx context.Context) {
	u.invalidate(ctx)
}

func (u *ContentUsecase[T]) runPrepare(item *T) error {
	if u.prepare == nil {
		return nil
	}
	return u.prepare(item)
}

func (u *ContentUsecase[T]) fromCache(ctx context.Context, key string) ([]*T, bool) {
	if u.cache == nil {
		return nil, false
	}
	b, ok, err := u.cache.Get(ctx, key)
	if err != nil {
		u.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var items []*T
	if err := json.Unmarshal(b, &items); err != nil {
		u.logger.WarnContext(ctx, "cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return items, true
}

func (u *ContentUsecase[T]) toCache(ctx context.Context, key string, items []*T) {
	if u.cache == nil {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := u.cache.Set(ctx, key, b); err != nil {
		u.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

func (u *ContentUsecase[T]) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, u.kind.Slug()+":"); err != nil {
		u.logger.WarnContext(ctx, "cache invalidate failed", "error", err)
	}
}
