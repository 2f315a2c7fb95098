package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/gin-gonic/gin"
)

type contentUsecaser[T any] interface {
	Kind() domain.EntityKind
	ListPublished(ctx context.Context, featuredOnly bool) ([]*T, error)
	GetPublished(ctx context.Context, id string) (*T, error)
	ListAll(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ContentHandler serves one content collection, both the public read-only
// listing and the admin CRUD routes.
type ContentHandler[T any] struct {
	usecase contentUsecaser[T]
	logger  *slog.Logger
}

func NewContentHandler[T any](uc contentUsecaser[T], logger *slog.Logger) *ContentHandler[T] {
	return &ContentHandler[T]{
		usecase: uc,
		logger:  logger.With("component", "content_handler", "kind", uc.Kind().Slug()),
	}
}

// RegisterPublic mounts GET /<slug> and GET /<slug>/:id.
func (h *ContentHandler[T]) RegisterPublic(g *gin.RouterGroup) {
	slug := "/" + h.usecase.Kind().Slug()
	g.GET(slug, h.ListPublished)
	g.GET(slug+"/:id", h.GetPublished)
}

// RegisterAdmin mounts the CRUD routes under /<slug>.
func (h *ContentHandler[T]) RegisterAdmin(g *gin.RouterGroup) {
	slug := "/" + h.usecase.Kind().Slug()
	g.GET(slug, h.List)
	g.POST(slug, h.Create)
	g.GET(slug+"/:id", h.Get)
	g.PUT(slug+"/:id", h.Update)
	g.DELETE(slug+"/:id", h.Delete)
}

func (h *ContentHandler[T]) ListPublished(ctx *gin.Context) {
	items, err := h.usecase.ListPublished(ctx.Request.Context(), ctx.Query("featured") == "true")
	if err != nil {
		h.internalError(ctx, "list published", err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

func (h *ContentHandler[T]) GetPublished(ctx *gin.Context) {
	item, err := h.usecase.GetPublished(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.writeError(ctx, "get published", err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

func (h *ContentHandler[T]) List(ctx *gin.Context) {
	items, err := h.usecase.ListAll(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, "list", err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

func (h *ContentHandler[T]) Get(ctx *gin.Context) {
	item, err := h.usecase.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.writeError(ctx, "get", err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

func (h *ContentHandler[T]) Create(ctx *gin.Context) {
	var item T
	if err := ctx.ShouldBindJSON(&item); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.usecase.Create(ctx.Request.Context(), &item)
	if err != nil {
		h.writeError(ctx, "create", err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

func (h *ContentHandler[T]) Update(ctx *gin.Context) {
	var item T
	if err := ctx.ShouldBindJSON(&item); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.usecase.Update(ctx.Request.Context(), ctx.Param("id"), &item)
	if err != nil {
		h.writeError(ctx, "update", err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

func (h *ContentHandler[T]) Delete(ctx *gin.Context) {
	if err := h.usecase.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		h.writeError(ctx, "delete", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *ContentHandler[T]) writeError(ctx *gin.Context, op string, err error) {
	if writeValidation(ctx, err) {
		return
	}
	if errors.Is(err, domain.ErrContentNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errContentNotFound})
		return
	}
	h.internalError(ctx, op, err)
}

func (h *ContentHandler[T]) internalError(ctx *gin.Context, op string, err error) {
	h.logger.ErrorContext(ctx.Request.Context(), op, "id", ctx.Param("id"), "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}
