package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL    string `env:"REDIS_URL"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret        string        `env:"JWT_SECRET,required"  validate:"required,min=32"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL"     envDefault:"1h"   validate:"min=1m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL"    envDefault:"720h" validate:"min=1h"`
	RecoveryTokenTTL time.Duration `env:"RECOVERY_TOKEN_TTL"   envDefault:"1h"   validate:"min=5m"`
	BcryptCost       int           `env:"BCRYPT_COST"          envDefault:"10"   validate:"min=4,max=31"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	SiteURL        string   `env:"SITE_URL"        envDefault:"http://localhost:5173" validate:"required,url"`
	SiteOwner      string   `env:"SITE_OWNER"      envDefault:"Portfolio"`
	PublicBaseURL  string   `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	StorageDir     string   `env:"STORAGE_DIR"     envDefault:"./storage" validate:"required"`

	AIGatewayURL    string `env:"AI_GATEWAY_URL"     envDefault:"https://ai.gateway.lovable.dev/v1/chat/completions" validate:"required,url"`
	AIGatewayAPIKey string `env:"AI_GATEWAY_API_KEY"`
	AIImageModel    string `env:"AI_IMAGE_MODEL"     envDefault:"google/gemini-2.5-flash-image-preview"`

	FormRatePerMinute int           `env:"FORM_RATE_PER_MINUTE" envDefault:"5"   validate:"min=1,max=600"`
	AuthRatePerMinute int           `env:"AUTH_RATE_PER_MINUTE" envDefault:"20"  validate:"min=1,max=600"`
	CacheTTL          time.Duration `env:"CACHE_TTL"            envDefault:"5m"`

	InviteSweepSpec string `env:"INVITE_SWEEP_SPEC" envDefault:"@hourly"`
	PurgeSpec       string `env:"PURGE_SPEC"        envDefault:"@every 6h"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
