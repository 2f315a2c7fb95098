package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/aigateway"
	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/metrics"
	"github.com/ErlanBelekov/portfolio/internal/repository"
	"github.com/ErlanBelekov/portfolio/internal/storage"
	"github.com/google/uuid"
)

const (
	MaxResumeBytes = 10 << 20
	MaxImageBytes  = 5 << 20
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ObjectStore is the subset of *storage.Store the usecases need.
type ObjectStore interface {
	Put(ctx context.Context, b storage.Bucket, name string, data []byte) (*storage.Object, error)
	List(ctx context.Context, b storage.Bucket) ([]*storage.Object, error)
	Remove(ctx context.Context, b storage.Bucket, names ...string) error
}

type MediaUsecase struct {
	store  ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

func NewMediaUsecase(store ObjectStore, logger *slog.Logger) *MediaUsecase {
	return &MediaUsecase{store: store, logger: logger.With("component", "media_usecase"), now: time.Now}
}

// readLimited reads at most max bytes and reports ErrFileTooLarge beyond that.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// UploadResume replaces the current resume. The type is sniffed from the
// content, not taken from the client.
func (u *MediaUsecase) UploadResume(ctx context.Context, r io.Reader) (*storage.Object, error) {
	data, err := readLimited(r, MaxResumeBytes)
	if err != nil {
		return nil, err
	}
	if !storage.Is(data, "application/pdf") {
		return nil, domain.ErrNotPDF
	}

	existing, err := u.store.List(ctx, storage.BucketResume)
	if err != nil {
		return nil, err
	}

	obj, err := u.store.Put(ctx, storage.BucketResume, fmt.Sprintf("resume-%d.pdf", u.now().UnixMilli()), data)
	if err != nil {
		return nil, err
	}

	// Old files go only after the new one is in place.
	var stale []string
	for _, o := range existing {
		if o.Name != obj.Name {
			stale = append(stale, o.Name)
		}
	}
	if len(stale) > 0 {
		if err := u.store.Remove(ctx, storage.BucketResume, stale...); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			u.logger.WarnContext(ctx, "remove old resume", "error", err)
		}
	}
	u.logger.InfoContext(ctx, "resume uploaded", "name", obj.Name, "size", obj.Size)
	return obj, nil
}

// CurrentResume returns the newest resume object.
func (u *MediaUsecase) CurrentResume(ctx context.Context) (*storage.Object, error) {
	objs, err := u.store.List(ctx, storage.BucketResume)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, domain.ErrResumeNotFound
	}
	return objs[0], nil
}

func (u *MediaUsecase) DeleteResume(ctx context.Context) error {
	objs, err := u.store.List(ctx, storage.BucketResume)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		return domain.ErrResumeNotFound
	}
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = o.Name
	}
	if err := u.store.Remove(ctx, storage.BucketResume, names...); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return err
	}
	return nil
}

// UploadImage stores a project image under a random name, keeping the
// extension that matches its sniffed type.
func (u *MediaUsecase) UploadImage(ctx context.Context, r io.Reader) (*storage.Object, error) {
	data, err := readLimited(r, MaxImageBytes)
	if err != nil {
		return nil, err
	}
	if !storage.Is(data, imageTypes...) {
		return nil, domain.ErrNotImage
	}
	ext := strings.TrimPrefix(storage.DetectContentType(data), "image/")
	if ext == "jpeg" {
		ext = "jpg"
	}
	name := fmt.Sprintf("%d-%s.%s", u.now().UnixMilli(), uuid.NewString()[:8], ext)
	return u.store.Put(ctx, storage.BucketProjectImages, name, data)
}

// ImageGenerator produces image bytes from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type invalidator interface {
	Invalidate(ctx context.Context)
}

type ThumbnailUsecase struct {
	gen      ImageGenerator
	store    ObjectStore
	projects repository.ProjectRepository
	cache    invalidator
	logger   *slog.Logger
	now      func() time.Time
}

func NewThumbnailUsecase(gen ImageGenerator, store ObjectStore, projects repository.ProjectRepository, cache invalidator, logger *slog.Logger) *ThumbnailUsecase {
	return &ThumbnailUsecase{
		gen:      gen,
		store:    store,
		projects: projects,
		cache:    cache,
		logger:   logger.With("component", "thumbnail_usecase"),
		now:      time.Now,
	}
}

// Generate asks the image model for a thumbnail, stores it and points the
// project at it. An empty title falls back to the stored project title.
func (u *ThumbnailUsecase) Generate(ctx context.Context, projectID, title string) (string, error) {
	if strings.TrimSpace(projectID) == "" {
		var v domain.ValidationError
		v.Add("projectId", "Project ID is required")
		return "", v.Err()
	}

	project, err := u.projects.GetByID(ctx, projectID, domain.ContentFilter{})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(title) == "" {
		title = project.Title
	}

	u.logger.InfoContext(ctx, "generating thumbnail", "project_id", project.ID)
	data, err := u.gen.GenerateImage(ctx, aigateway.ThumbnailPrompt(title))
	if err != nil {
		switch {
		case errors.Is(err, aigateway.ErrRateLimited):
			metrics.ThumbnailsTotal.WithLabelValues("rate_limited").Inc()
			return "", domain.ErrAIRateLimited
		case errors.Is(err, aigateway.ErrCreditsExhausted):
			metrics.ThumbnailsTotal.WithLabelValues("credits_exhausted").Inc()
			return "", domain.ErrAICreditsExhausted
		}
		metrics.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("generate image: %w", err)
	}

	name := fmt.Sprintf("thumbnail-%s-%d.png", project.ID, u.now().UnixMilli())
	obj, err := u.store.Put(ctx, storage.BucketProjectImages, name, data)
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if err := u.projects.SetThumbnail(ctx, project.ID, obj.URL); err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to update project: %w", err)
	}
	if u.cache != nil {
		u.cache.Invalidate(ctx)
	}

	metrics.ThumbnailsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "thumbnail saved", "project_id", project.ID, "url", obj.URL)
	return obj.URL, nil
}
