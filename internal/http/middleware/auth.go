package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	ctxlog "github.com/ErlanBelekov/portfolio/internal/log"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized"
	errForbidden    = "Admin access required"

	principalKey = "principal"
)

// authenticator verifies an access token and its backing session.
type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*usecase.Principal, error)
}

type roleChecker interface {
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)
}

// Auth validates a Bearer access token and stores the principal in the gin
// context. Tokens whose session was revoked are rejected.
func Auth(auth authenticator, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if !errors.Is(err, domain.ErrTokenInvalid) && !errors.Is(err, domain.ErrSessionRevoked) {
				logger.ErrorContext(c.Request.Context(), "authenticate", "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(principalKey, p)
		c.Set("userID", p.UserID)
		c.Request = c.Request.WithContext(ctxlog.WithUserID(c.Request.Context(), p.UserID))
		c.Next()
	}
}

// RequireAdmin runs after Auth. Any failure to confirm the admin role,
// including a lookup error, denies access.
func RequireAdmin(roles roleChecker, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "admin_middleware")
	return func(c *gin.Context) {
		p := Principal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		ok, err := roles.HasRole(c.Request.Context(), p.UserID, domain.RoleAdmin)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "admin role lookup failed, denying", "error", err)
		}
		if err != nil || !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated caller, or nil before Auth ran.
func Principal(c *gin.Context) *usecase.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*usecase.Principal)
	return p
}
