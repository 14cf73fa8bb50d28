package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/notifyhub/announcements/internal/broadcast"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendStatic   = "static"

	ProviderWebhook = "webhook"
	ProviderLog     = "log"
)

// Config holds all runtime configuration loaded from environment variables.
// A .env file in the working directory is read first when present.
type Config struct {
	// Server
	HTTPPort        string        `env:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"30s"`
	APIKey          string        `env:"API_KEY"`
	HMACSecret      string        `env:"HMAC_SECRET"`

	// Member directory
	DirectoryBackend string `env:"DIRECTORY_BACKEND" default:"postgres"`
	DatabaseURL      string `env:"DATABASE_URL"`
	DBMaxConns       int    `env:"DB_MAX_CONNS" default:"25"`
	DBMinConns       int    `env:"DB_MIN_CONNS" default:"5"`
	RedisURL         string `env:"REDIS_URL"`

	// Channel providers
	ProviderMode       string        `env:"PROVIDER_MODE" default:"webhook"`
	EmailProviderURL   string        `env:"EMAIL_PROVIDER_URL"`
	SMSProviderURL     string        `env:"SMS_PROVIDER_URL"`
	EmailSubject       string        `env:"EMAIL_SUBJECT" default:"Gym Announcement"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT" default:"10s"`
	RateLimit          int           `env:"RATE_LIMIT_PER_CHANNEL" default:"100"`
	BreakerFailures    int           `env:"BREAKER_CONSECUTIVE_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `env:"BREAKER_OPEN_TIMEOUT" default:"30s"`

	// Broadcast pipeline
	BatchSize        int           `env:"BROADCAST_BATCH_SIZE" default:"15"`
	ProgressInterval int           `env:"BROADCAST_PROGRESS_INTERVAL" default:"100"`
	MaxRecipients    int           `env:"MAX_RECIPIENTS" default:"1000"`
	SampleSize       int           `env:"BROADCAST_SAMPLE_SIZE" default:"10"`
	HardCap          int           `env:"BROADCAST_HARD_CAP" default:"10000"`
	SendTimeout      time.Duration `env:"SEND_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.APIKey == "" && c.HMACSecret == "" {
		return errors.New("API_KEY or HMAC_SECRET is required")
	}
	return nil
}

func validate(cfg *Config) error {
	switch cfg.DirectoryBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required")
		}
	case BackendStatic:
	default:
		return fmt.Errorf("DIRECTORY_BACKEND must be one of postgres, redis, static, got %q", cfg.DirectoryBackend)
	}

	switch cfg.ProviderMode {
	case ProviderWebhook:
		if cfg.EmailProviderURL == "" {
			return errors.New("EMAIL_PROVIDER_URL is required")
		}
		if cfg.SMSProviderURL == "" {
			return errors.New("SMS_PROVIDER_URL is required")
		}
	case ProviderLog:
	default:
		return fmt.Errorf("PROVIDER_MODE must be webhook or log, got %q", cfg.ProviderMode)
	}

	if cfg.BatchSize <= 0 {
		return errors.New("BROADCAST_BATCH_SIZE must be positive")
	}
	if cfg.MaxRecipients <= 0 {
		return errors.New("MAX_RECIPIENTS must be positive")
	}
	if cfg.HardCap < 0 {
		return errors.New("BROADCAST_HARD_CAP must not be negative")
	}

	return nil
}

// BroadcastOptions maps the pipeline settings. A zero hard cap or send
// timeout disables the corresponding bound.
func (c *Config) BroadcastOptions() broadcast.Options {
	opts := broadcast.Options{
		BatchSize:        c.BatchSize,
		ProgressInterval: c.ProgressInterval,
		MaxRecipients:    c.MaxRecipients,
		SampleSize:       c.SampleSize,
		HardCap:          c.HardCap,
		SendTimeout:      c.SendTimeout,
	}
	if opts.HardCap == 0 {
		opts.HardCap = -1
	}
	if opts.SendTimeout == 0 {
		opts.SendTimeout = -1
	}
	return opts
}
