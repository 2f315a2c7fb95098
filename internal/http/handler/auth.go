package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/http/middleware"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	SignUp(ctx context.Context, in usecase.SignUpInput) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	RequestRecovery(ctx context.Context, email, redirectTo string) error
	VerifyRecovery(ctx context.Context, rawToken string) (*domain.Session, error)
	UpdatePassword(ctx context.Context, p *usecase.Principal, newPassword string, currentPassword *string) error
	CurrentUser(ctx context.Context, userID string) (domain.Identity, error)
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type signUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

// POST /auth/v1/signup
// Field rules are checked by the usecase so the messages match the form.
func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req signUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.authUsecase.SignUp(ctx.Request.Context(), usecase.SignUpInput{
		Email:      req.Email,
		Password:   req.Password,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		if writeValidation(ctx, err) {
			return
		}
		switch {
		case errors.Is(err, domain.ErrInviteCodeInvalid):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInviteCodeInvalid})
		case errors.Is(err, domain.ErrEmailTaken):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": errEmailTaken})
		case errors.Is(err, domain.ErrInviteCodeNoLongerValid):
			ctx.JSON(http.StatusConflict, gin.H{"error": errInviteCodeNoLongerValid})
		case errors.Is(err, domain.ErrAdminActivationFailed):
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errAdminActivationFailed})
		default:
			h.logger.ErrorContext(ctx.Request.Context(), "sign up", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, session)
}

type tokenRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

// POST /auth/v1/token?grant_type=password|refresh_token
func (h *AuthHandler) Token(ctx *gin.Context) {
	var req tokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		session *domain.Session
		err     error
	)
	switch ctx.Query("grant_type") {
	case "password":
		session, err = h.authUsecase.SignIn(ctx.Request.Context(), req.Email, req.Password)
	case "refresh_token":
		session, err = h.authUsecase.Refresh(ctx.Request.Context(), req.RefreshToken)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errUnsupportedGrantType})
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrTokenInvalid):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		default:
			h.logger.ErrorContext(ctx.Request.Context(), "token grant", "grant_type", ctx.Query("grant_type"), "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// POST /auth/v1/logout
func (h *AuthHandler) Logout(ctx *gin.Context) {
	p := middleware.Principal(ctx)
	if err := h.authUsecase.SignOut(ctx.Request.Context(), p.SessionID); err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "sign out", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.Status(http.StatusNoContent)
}

type recoverRequest struct {
	Email      string `json:"email" binding:"required,email,max=255"`
	RedirectTo string `json:"redirect_to"`
}

// POST /auth/v1/recover
// Always returns 200 to avoid revealing whether the email exists.
func (h *AuthHandler) Recover(ctx *gin.Context) {
	var req recoverRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := h.authUsecase.RequestRecovery(ctx.Request.Context(), req.Email, req.RedirectTo); err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "request recovery", "error", err)
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

type verifyRequest struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// POST /auth/v1/verify
func (h *AuthHandler) Verify(ctx *gin.Context) {
	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != "recovery" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errUnsupportedVerifyType})
		return
	}

	session, err := h.authUsecase.VerifyRecovery(ctx.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "verify recovery", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// GET /auth/v1/user
func (h *AuthHandler) User(ctx *gin.Context) {
	p := middleware.Principal(ctx)
	identity, err := h.authUsecase.CurrentUser(ctx.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "current user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, identity)
}

type updateUserRequest struct {
	Password        string  `json:"password"`
	CurrentPassword *string `json:"current_password"`
}

// PUT /auth/v1/user
func (h *AuthHandler) UpdateUser(ctx *gin.Context) {
	var req updateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := middleware.Principal(ctx)
	if err := h.authUsecase.UpdatePassword(ctx.Request.Context(), p, req.Password, req.CurrentPassword); err != nil {
		if writeValidation(ctx, err) {
			return
		}
		if errors.Is(err, domain.ErrCurrentPasswordWrong) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errCurrentPasswordWrong})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "update password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	h.User(ctx)
}

type roleResponse struct {
	Role    domain.Role `json:"role"`
	Granted bool        `json:"granted"`
}

// GET /auth/v1/roles/:role
func (h *AuthHandler) Role(ctx *gin.Context) {
	role, err := domain.ParseRole(ctx.Param("role"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRole})
		return
	}

	p := middleware.Principal(ctx)
	ok, err := h.authUsecase.HasRole(ctx.Request.Context(), p.UserID, role)
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "role lookup", "role", role, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, roleResponse{Role: role, Granted: ok})
}
