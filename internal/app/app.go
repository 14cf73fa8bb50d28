// Package app assembles the broadcast pipeline from configuration. Both the
// HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/broadcast"
	"github.com/notifyhub/announcements/internal/config"
	"github.com/notifyhub/announcements/internal/db"
	"github.com/notifyhub/announcements/internal/directory"
	"github.com/notifyhub/announcements/internal/domain"
	"github.com/notifyhub/announcements/internal/provider"
	"github.com/notifyhub/announcements/internal/ratelimiter"
)

// App owns the broadcast service and the connections behind it.
type App struct {
	Service   *broadcast.Service
	Directory directory.Source
	closers   []func()
}

// New connects the configured member directory and channel senders.
// Close must be called to release connections.
func New(ctx context.Context, cfg *config.Config, hooks broadcast.Hooks, logger *zap.Logger) (*App, error) {
	a := &App{}

	source, err := a.newDirectory(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Directory = source
	senders := newSenders(cfg, logger)
	a.Service = broadcast.NewService(source, senders, cfg.BroadcastOptions(), hooks, logger)
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) newDirectory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (directory.Source, error) {
	switch cfg.DirectoryBackend {
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: int32(cfg.DBMaxConns),
			MinConns: int32(cfg.DBMinConns),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
		return directory.NewPostgres(pool), nil

	case config.BackendRedis:
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		client := goredis.NewClient(opts)
		a.closers = append(a.closers, func() { _ = client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return directory.NewRedis(client), nil

	default:
		logger.Warn("using in-memory demo directory")
		return directory.NewStatic(directory.DemoMembers()), nil
	}
}

// newSenders builds one sender per channel. Each is wrapped with a circuit
// breaker, and the rate limiter sits outside the breaker so waiting for a
// token never counts as a provider failure.
func newSenders(cfg *config.Config, logger *zap.Logger) map[domain.Channel]provider.Sender {
	limiter := ratelimiter.New(cfg.RateLimit)
	breaker := provider.BreakerSettings{
		ConsecutiveFailures: uint32(cfg.BreakerFailures),
		OpenTimeout:         cfg.BreakerOpenTimeout,
	}

	senders := make(map[domain.Channel]provider.Sender, len(domain.Channels))
	for _, ch := range domain.Channels {
		var s provider.Sender
		switch cfg.ProviderMode {
		case config.ProviderWebhook:
			s = provider.NewWebhookSender(ch, providerURL(cfg, ch), cfg.EmailSubject, cfg.ProviderTimeout)
		default:
			s = provider.NewLogSender(ch, logger)
		}
		s = provider.WithBreaker(s, "provider-"+string(ch), breaker, logger)
		senders[ch] = provider.WithRateLimit(s, limiter, ch)
	}
	return senders
}

func providerURL(cfg *config.Config, ch domain.Channel) string {
	if ch == domain.ChannelSMS {
		return cfg.SMSProviderURL
	}
	return cfg.EmailProviderURL
}
