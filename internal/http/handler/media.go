package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/storage"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

// multipartSlack covers form boundaries and headers on top of the file.
const multipartSlack = 1 << 20

type mediaUsecaser interface {
	UploadResume(ctx context.Context, r io.Reader) (*storage.Object, error)
	CurrentResume(ctx context.Context) (*storage.Object, error)
	DeleteResume(ctx context.Context) error
	UploadImage(ctx context.Context, r io.Reader) (*storage.Object, error)
}

type thumbnailGenerator interface {
	Generate(ctx context.Context, projectID, title string) (string, error)
}

type MediaHandler struct {
	media      mediaUsecaser
	thumbnails thumbnailGenerator
	logger     *slog.Logger
}

func NewMediaHandler(media mediaUsecaser, thumbnails thumbnailGenerator, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{media: media, thumbnails: thumbnails, logger: logger.With("component", "media_handler")}
}

// GET /api/resume
func (h *MediaHandler) Resume(ctx *gin.Context) {
	obj, err := h.media.CurrentResume(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, "current resume", err)
		return
	}
	ctx.JSON(http.StatusOK, obj)
}

// POST /admin/resume (multipart "file")
func (h *MediaHandler) UploadResume(ctx *gin.Context) {
	h.upload(ctx, usecase.MaxResumeBytes, errResumeTooLarge, h.media.UploadResume)
}

// DELETE /admin/resume
func (h *MediaHandler) DeleteResume(ctx *gin.Context) {
	if err := h.media.DeleteResume(ctx.Request.Context()); err != nil {
		h.writeError(ctx, "delete resume", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// POST /admin/images (multipart "file")
func (h *MediaHandler) UploadImage(ctx *gin.Context) {
	h.upload(ctx, usecase.MaxImageBytes, errImageTooLarge, h.media.UploadImage)
}

func (h *MediaHandler) upload(ctx *gin.Context, limit int64, tooLarge string, store func(context.Context, io.Reader) (*storage.Object, error)) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit+multipartSlack)

	fh, err := ctx.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLarge})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errFileRequired})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "open upload", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	defer f.Close()

	obj, err := store(ctx.Request.Context(), f)
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLarge})
			return
		}
		h.writeError(ctx, "upload", err)
		return
	}
	ctx.JSON(http.StatusCreated, obj)
}

type thumbnailRequest struct {
	Title string `json:"title"`
}

// POST /admin/projects/:id/thumbnail
func (h *MediaHandler) GenerateThumbnail(ctx *gin.Context) {
	var req thumbnailRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	url, err := h.thumbnails.Generate(ctx.Request.Context(), ctx.Param("id"), req.Title)
	if err != nil {
		h.writeError(ctx, "generate thumbnail", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"thumbnail": url})
}

func (h *MediaHandler) writeError(ctx *gin.Context, op string, err error) {
	if writeValidation(ctx, err) {
		return
	}
	status, msg := mediaErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx.Request.Context(), op, "error", err)
	}
	ctx.JSON(status, gin.H{"error": msg})
}

func mediaErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotPDF):
		return http.StatusBadRequest, errNotPDF
	case errors.Is(err, domain.ErrNotImage):
		return http.StatusBadRequest, errNotImage
	case errors.Is(err, domain.ErrResumeNotFound):
		return http.StatusNotFound, errResumeNotFound
	case errors.Is(err, domain.ErrContentNotFound):
		return http.StatusNotFound, errProjectNotFound
	case errors.Is(err, domain.ErrAIRateLimited):
		return http.StatusTooManyRequests, errAIRateLimited
	case errors.Is(err, domain.ErrAICreditsExhausted):
		return http.StatusPaymentRequired, errAICreditsExhausted
	}
	return http.StatusInternalServerError, errInternalServer
}
