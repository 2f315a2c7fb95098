package httptransport

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/http/handler"
	"github.com/ErlanBelekov/portfolio/internal/http/middleware"
	"github.com/ErlanBelekov/portfolio/internal/storage"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// SessionAuth verifies access tokens and answers role questions.
type SessionAuth interface {
	Authenticate(ctx context.Context, accessToken string) (*usecase.Principal, error)
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)
}

// ContentRoutes is implemented by every *handler.ContentHandler[T].
type ContentRoutes interface {
	RegisterPublic(g *gin.RouterGroup)
	RegisterAdmin(g *gin.RouterGroup)
}

// BucketDirs maps a storage bucket to the directory it is served from.
type BucketDirs interface {
	Dir(b storage.Bucket) string
}

type Handlers struct {
	Auth       *handler.AuthHandler
	Content    []ContentRoutes
	Contact    *handler.ContactHandler
	Newsletter *handler.NewsletterHandler
	Settings   *handler.SettingsHandler
	Stats      *handler.StatsHandler
	Invites    *handler.InviteHandler
	Media      *handler.MediaHandler
	Functions  *handler.FunctionsHandler
}

type Options struct {
	AllowedOrigins []string
	// FormLimiter guards public form posts, AuthLimiter the credential
	// endpoints. The caller owns both and stops them on shutdown.
	FormLimiter *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter
	Buckets     BucketDirs
}

func NewRouter(logger *slog.Logger, auth SessionAuth, h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	authMW := middleware.Auth(auth, logger)
	adminMW := middleware.RequireAdmin(auth, logger)
	formLimit := opts.FormLimiter.Middleware()
	authLimit := opts.AuthLimiter.Middleware()

	// Auth service
	authGroup := r.Group("/auth/v1")
	authGroup.POST("/signup", authLimit, h.Auth.SignUp)
	authGroup.POST("/token", authLimit, h.Auth.Token)
	authGroup.POST("/recover", authLimit, h.Auth.Recover)
	authGroup.POST("/verify", authLimit, h.Auth.Verify)
	authGroup.POST("/logout", authMW, h.Auth.Logout)
	authGroup.GET("/user", authMW, h.Auth.User)
	authGroup.PUT("/user", authMW, h.Auth.UpdateUser)
	authGroup.GET("/roles/:role", authMW, h.Auth.Role)

	// Public site
	api := r.Group("/api")
	for _, c := range h.Content {
		c.RegisterPublic(api)
	}
	api.GET("/sections", handler.Sections)
	api.GET("/resume", h.Media.Resume)
	api.POST("/contact", formLimit, h.Contact.Submit)
	api.POST("/newsletter", formLimit, h.Newsletter.Subscribe)

	// Admin CMS
	admin := r.Group("/admin", authMW, adminMW)
	for _, c := range h.Content {
		c.RegisterAdmin(admin)
	}
	admin.POST("/projects/:id/thumbnail", h.Media.GenerateThumbnail)

	admin.GET("/messages", h.Contact.List)
	admin.PATCH("/messages/:id", h.Contact.SetRead)
	admin.DELETE("/messages/:id", h.Contact.Delete)

	admin.GET("/subscribers", h.Newsletter.List)
	admin.GET("/subscribers/export", h.Newsletter.Export)
	admin.PATCH("/subscribers/:id", h.Newsletter.SetActive)
	admin.DELETE("/subscribers/:id", h.Newsletter.Delete)

	admin.POST("/resume", h.Media.UploadResume)
	admin.DELETE("/resume", h.Media.DeleteResume)
	admin.POST("/images", h.Media.UploadImage)

	admin.GET("/settings", h.Settings.List)
	admin.PUT("/settings", h.Settings.Upsert)
	admin.DELETE("/settings/:key", h.Settings.Delete)

	admin.GET("/invite-codes", h.Invites.List)
	admin.POST("/invite-codes", h.Invites.Create)
	admin.DELETE("/invite-codes/:id", h.Invites.Revoke)

	admin.GET("/stats", h.Stats.Get)

	// Functions
	functions := r.Group("/functions/v1")
	functions.POST("/generate-thumbnail", authMW, adminMW, h.Functions.GenerateThumbnail)
	functions.POST("/send-welcome-email", formLimit, h.Functions.SendWelcomeEmail)

	// Public buckets, read-only
	for _, b := range storage.Buckets {
		r.Static(storage.PublicPrefix+"/"+b.Name(), opts.Buckets.Dir(b))
	}

	return r
}
