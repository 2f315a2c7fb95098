package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

type inviteUsecaser interface {
	Create(ctx context.Context, creatorID string, expiresInDays int) (*usecase.InviteView, error)
	List(ctx context.Context) ([]usecase.InviteView, error)
	Revoke(ctx context.Context, id string) error
}

type InviteHandler struct {
	usecase inviteUsecaser
	logger  *slog.Logger
}

func NewInviteHandler(uc inviteUsecaser, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{usecase: uc, logger: logger.With("component", "invite_handler")}
}

type createInviteRequest struct {
	ExpiresInDays int `json:"expires_in_days"`
}

// POST /admin/invite-codes
// An empty body issues a code with the default expiry.
func (h *InviteHandler) Create(ctx *gin.Context) {
	var req createInviteRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	invite, err := h.usecase.Create(ctx.Request.Context(), ctx.GetString("userID"), req.ExpiresInDays)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInviteExpiry) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInviteExpiry})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "create invite code", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusCreated, invite)
}

// GET /admin/invite-codes
func (h *InviteHandler) List(ctx *gin.Context) {
	invites, err := h.usecase.List(ctx.Request.Context())
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list invite codes", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, invites)
}

// DELETE /admin/invite-codes/:id
func (h *InviteHandler) Revoke(ctx *gin.Context) {
	err := h.usecase.Revoke(ctx.Request.Context(), ctx.Param("id"))
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrInviteCodeNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errInviteCodeNotFound})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), "revoke invite code", "invite_id", ctx.Param("id"), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
