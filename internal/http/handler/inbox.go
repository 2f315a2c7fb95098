package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

type contactUsecaser interface {
	Submit(ctx context.Context, in usecase.ContactInput) (*domain.ContactSubmission, error)
	List(ctx context.Context) ([]*domain.ContactSubmission, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
}

type ContactHandler struct {
	usecase contactUsecaser
	logger  *slog.Logger
}

func NewContactHandler(uc contactUsecaser, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{usecase: uc, logger: logger.With("component", "contact_handler")}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// POST /api/contact
func (h *ContactHandler) Submit(ctx *gin.Context) {
	var req contactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.usecase.Submit(ctx.Request.Context(), usecase.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		if writeValidation(ctx, err) {
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "submit contact", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"id": msg.ID})
}

// GET /admin/messages
func (h *ContactHandler) List(ctx *gin.Context) {
	msgs, err := h.usecase.List(ctx.Request.Context())
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list messages", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, msgs)
}

type setReadRequest struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

// PATCH /admin/messages/:id
func (h *ContactHandler) SetRead(ctx *gin.Context) {
	var req setReadRequest
	if !bindJSON(ctx, &req) {
		return
	}
	h.writeResult(ctx, "mark message", h.usecase.SetRead(ctx.Request.Context(), ctx.Param("id"), *req.IsRead))
}

// DELETE /admin/messages/:id
func (h *ContactHandler) Delete(ctx *gin.Context) {
	h.writeResult(ctx, "delete message", h.usecase.Delete(ctx.Request.Context(), ctx.Param("id")))
}

func (h *ContactHandler) writeResult(ctx *gin.Context, op string, err error) {
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrMessageNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), op, "message_id", ctx.Param("id"), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

type newsletterUsecaser interface {
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
	List(ctx context.Context, search string) ([]*domain.Subscriber, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, search string, w io.Writer) error
}

type NewsletterHandler struct {
	usecase newsletterUsecaser
	logger  *slog.Logger
	now     func() time.Time
}

func NewNewsletterHandler(uc newsletterUsecaser, logger *slog.Logger) *NewsletterHandler {
	return &NewsletterHandler{usecase: uc, logger: logger.With("component", "newsletter_handler"), now: time.Now}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// POST /api/newsletter
func (h *NewsletterHandler) Subscribe(ctx *gin.Context) {
	var req subscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.usecase.Subscribe(ctx.Request.Context(), req.Email)
	if err != nil {
		if writeValidation(ctx, err) {
			return
		}
		if errors.Is(err, domain.ErrAlreadySubscribed) {
			ctx.JSON(http.StatusConflict, gin.H{"error": errAlreadySubscribed})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "subscribe", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusCreated, sub)
}

// GET /admin/subscribers?search=
func (h *NewsletterHandler) List(ctx *gin.Context) {
	subs, err := h.usecase.List(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list subscribers", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, subs)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PATCH /admin/subscribers/:id
func (h *NewsletterHandler) SetActive(ctx *gin.Context) {
	var req setActiveRequest
	if !bindJSON(ctx, &req) {
		return
	}
	h.writeResult(ctx, "set subscriber active", h.usecase.SetActive(ctx.Request.Context(), ctx.Param("id"), *req.IsActive))
}

// DELETE /admin/subscribers/:id
func (h *NewsletterHandler) Delete(ctx *gin.Context) {
	h.writeResult(ctx, "delete subscriber", h.usecase.Delete(ctx.Request.Context(), ctx.Param("id")))
}

// GET /admin/subscribers/export
func (h *NewsletterHandler) Export(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := h.usecase.ExportCSV(ctx.Request.Context(), ctx.Query("search"), &buf); err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "export subscribers", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	filename := fmt.Sprintf("subscribers-%s.csv", h.now().Format(time.DateOnly))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *NewsletterHandler) writeResult(ctx *gin.Context, op string, err error) {
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrSubscriberNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errSubscriberNotFound})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), op, "subscriber_id", ctx.Param("id"), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

type settingsUsecaser interface {
	List(ctx context.Context) ([]*domain.Setting, error)
	Upsert(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
}

type SettingsHandler struct {
	usecase settingsUsecaser
	logger  *slog.Logger
}

func NewSettingsHandler(uc settingsUsecaser, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{usecase: uc, logger: logger.With("component", "settings_handler")}
}

// GET /admin/settings
func (h *SettingsHandler) List(ctx *gin.Context) {
	settings, err := h.usecase.List(ctx.Request.Context())
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list settings", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, settings)
}

// PUT /admin/settings
func (h *SettingsHandler) Upsert(ctx *gin.Context) {
	var values map[string]string
	if err := ctx.ShouldBindJSON(&values); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.usecase.Upsert(ctx.Request.Context(), values); err != nil {
		if writeValidation(ctx, err) {
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "upsert settings", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DELETE /admin/settings/:key
func (h *SettingsHandler) Delete(ctx *gin.Context) {
	err := h.usecase.Delete(ctx.Request.Context(), ctx.Param("key"))
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrSettingNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errSettingNotFound})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), "delete setting", "key", ctx.Param("key"), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

type statsUsecaser interface {
	Counts(ctx context.Context) (*domain.Stats, error)
}

type StatsHandler struct {
	usecase statsUsecaser
	logger  *slog.Logger
}

func NewStatsHandler(uc statsUsecaser, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{usecase: uc, logger: logger.With("component", "stats_handler")}
}

// GET /admin/stats
func (h *StatsHandler) Get(ctx *gin.Context) {
	stats, err := h.usecase.Counts(ctx.Request.Context())
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "dashboard stats", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
