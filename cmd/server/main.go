package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/portfolio/config"
	"github.com/ErlanBelekov/portfolio/internal/aigateway"
	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/email"
	"github.com/ErlanBelekov/portfolio/internal/health"
	httptransport "github.com/ErlanBelekov/portfolio/internal/http"
	"github.com/ErlanBelekov/portfolio/internal/http/handler"
	"github.com/ErlanBelekov/portfolio/internal/http/middleware"
	"github.com/ErlanBelekov/portfolio/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/portfolio/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/portfolio/internal/log"
	"github.com/ErlanBelekov/portfolio/internal/metrics"
	"github.com/ErlanBelekov/portfolio/internal/repository"
	"github.com/ErlanBelekov/portfolio/internal/sanitize"
	"github.com/ErlanBelekov/portfolio/internal/storage"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/ErlanBelekov/portfolio/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	migrateFirst := flag.Bool("migrate", false, "apply pending database migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if *migrateFirst {
		if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	var cache usecase.Cache
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		cache = redis.NewContentCache(rdb, cfg.CacheTTL)
		checker.Add("redis", health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
		logger.Info("content cache enabled")
	}

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	store, err := storage.NewStore(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		stop()
		log.Fatalf("storage: %v", err)
	}

	// Auth
	inviteRepo := postgres.NewInviteRepository(pool, logger)
	authUsecase := usecase.NewAuthUsecase(
		postgres.NewUserRepository(pool),
		postgres.NewSessionRepository(pool),
		postgres.NewTokenRepository(pool),
		postgres.NewRoleRepository(pool),
		inviteRepo,
		sender,
		usecase.AuthConfig{
			JWTKey:      []byte(cfg.JWTSecret),
			AccessTTL:   cfg.AccessTokenTTL,
			RefreshTTL:  cfg.RefreshTokenTTL,
			RecoveryTTL: cfg.RecoveryTokenTTL,
			BcryptCost:  cfg.BcryptCost,
			SiteURL:     cfg.SiteURL,
		},
		logger,
	)
	inviteUsecase := usecase.NewInviteUsecase(inviteRepo, logger)

	// Content
	rules := usecase.NewContentRules(sanitize.NewPolicy())
	projectRepo := postgres.NewProjectRepository(pool)
	projects, projectHandler := content(domain.KindProject, projectRepo, cache, rules.Project, logger)
	_, educationHandler := content(domain.KindEducation, postgres.NewEducationRepository(pool), cache, rules.Education, logger)
	_, experienceHandler := content(domain.KindExperience, postgres.NewExperienceRepository(pool), cache, rules.Experience, logger)
	_, certificationHandler := content(domain.KindCertification, postgres.NewCertificationRepository(pool), cache, rules.Certification, logger)
	_, achievementHandler := content(domain.KindAchievement, postgres.NewAchievementRepository(pool), cache, rules.Achievement, logger)
	_, publicationHandler := content(domain.KindPublication, postgres.NewPublicationRepository(pool), cache, rules.Publication, logger)

	// Inbox
	newsletterUsecase := usecase.NewNewsletterUsecase(postgres.NewSubscriberRepository(pool), sender, cfg.SiteURL, cfg.SiteOwner, logger)

	// Media
	ai := aigateway.NewClient(cfg.AIGatewayURL, cfg.AIGatewayAPIKey, cfg.AIImageModel, logger)
	thumbnails := usecase.NewThumbnailUsecase(ai, store, projectRepo, projects, logger)
	mediaUsecase := usecase.NewMediaUsecase(store, logger)

	formLimiter := middleware.NewRateLimiter(cfg.FormRatePerMinute, time.Minute)
	defer formLimiter.Stop()
	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, time.Minute)
	defer authLimiter.Stop()

	handlers := httptransport.Handlers{
		Auth: handler.NewAuthHandler(authUsecase, logger),
		Content: []httptransport.ContentRoutes{
			educationHandler,
			experienceHandler,
			certificationHandler,
			achievementHandler,
			projectHandler,
			publicationHandler,
		},
		Contact:    handler.NewContactHandler(usecase.NewContactUsecase(postgres.NewContactRepository(pool), logger), logger),
		Newsletter: handler.NewNewsletterHandler(newsletterUsecase, logger),
		Settings:   handler.NewSettingsHandler(usecase.NewSettingsUsecase(postgres.NewSettingRepository(pool)), logger),
		Stats:      handler.NewStatsHandler(usecase.NewStatsUsecase(postgres.NewStatsRepository(pool)), logger),
		Invites:    handler.NewInviteHandler(inviteUsecase, logger),
		Media:      handler.NewMediaHandler(mediaUsecase, thumbnails, logger),
		Functions:  handler.NewFunctionsHandler(thumbnails, newsletterUsecase, logger),
	}

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authUsecase, handlers, httptransport.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			FormLimiter:    formLimiter,
			AuthLimiter:    authLimiter,
			Buckets:        store,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// content wires one collection's usecase and handler.
func content[T any](
	kind domain.EntityKind,
	repo repository.ContentRepository[T],
	cache usecase.Cache,
	prepare func(*T) error,
	logger *slog.Logger,
) (*usecase.ContentUsecase[T], *handler.ContentHandler[T]) {
	uc := usecase.NewContentUsecase(kind, repo, cache, prepare, logger)
	return uc, handler.NewContentHandler[T](uc, logger)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
