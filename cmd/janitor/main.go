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
	"github.com/ErlanBelekov/portfolio/internal/health"
	"github.com/ErlanBelekov/portfolio/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/portfolio/internal/janitor"
	ctxlog "github.com/ErlanBelekov/portfolio/internal/log"
	"github.com/ErlanBelekov/portfolio/internal/metrics"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

// Sessions and tokens stay around this long after they stop being usable.
const retention = 24 * time.Hour

func main() {
	once := flag.Bool("once", false, "run every job once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()

	j, err := janitor.New(logger,
		janitor.InviteSweep(cfg.InviteSweepSpec, postgres.NewInviteRepository(pool, logger)),
		janitor.SessionPurge(cfg.PurgeSpec, postgres.NewSessionRepository(pool), retention),
		janitor.TokenPurge(cfg.PurgeSpec, postgres.NewTokenRepository(pool), retention),
	)
	if err != nil {
		stop()
		log.Fatalf("janitor: %v", err)
	}

	if *once {
		err := j.RunAll(ctx)
		stop()
		if err != nil {
			log.Fatalf("janitor: %v", err)
		}
		return
	}

	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)
	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	<-done
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
