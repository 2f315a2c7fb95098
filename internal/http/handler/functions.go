package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/gin-gonic/gin"
)

type welcomeSender interface {
	SendWelcome(ctx context.Context, email string) (string, error)
}

// FunctionsHandler serves the standalone function endpoints under
// /functions/v1. Their request and response shapes are camelCase.
type FunctionsHandler struct {
	thumbnails thumbnailGenerator
	welcome    welcomeSender
	logger     *slog.Logger
}

func NewFunctionsHandler(thumbnails thumbnailGenerator, welcome welcomeSender, logger *slog.Logger) *FunctionsHandler {
	return &FunctionsHandler{thumbnails: thumbnails, welcome: welcome, logger: logger.With("component", "functions_handler")}
}

type generateThumbnailRequest struct {
	ProjectID    string `json:"projectId"`
	ProjectTitle string `json:"projectTitle"`
}

// POST /functions/v1/generate-thumbnail
func (h *FunctionsHandler) GenerateThumbnail(ctx *gin.Context) {
	var req generateThumbnailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.thumbnails.Generate(ctx.Request.Context(), req.ProjectID, req.ProjectTitle)
	if err != nil {
		if writeValidation(ctx, err) {
			return
		}
		status, msg := mediaErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(ctx.Request.Context(), "generate thumbnail", "project_id", req.ProjectID, "error", err)
		}
		ctx.JSON(status, gin.H{"error": msg})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "thumbnailUrl": url})
}

type sendWelcomeRequest struct {
	Email string `json:"email"`
}

// POST /functions/v1/send-welcome-email
func (h *FunctionsHandler) SendWelcomeEmail(ctx *gin.Context) {
	var req sendWelcomeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	id, err := h.welcome.SendWelcome(ctx.Request.Context(), req.Email)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Fields["email"]})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "send welcome email", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
