package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/domain"
)

// Limiter blocks until a send on ch is allowed.
type Limiter interface {
	Wait(ctx context.Context, ch domain.Channel) error
}

type rateLimited struct {
	next    Sender
	limiter Limiter
	channel domain.Channel
}

// WithRateLimit waits on the channel's limiter before every send.
// A wait cut short by the context is reported as a timeout.
func WithRateLimit(next Sender, limiter Limiter, ch domain.Channel) Sender {
	return &rateLimited{next: next, limiter: limiter, channel: ch}
}

func (s *rateLimited) Send(ctx context.Context, to, message string) (string, error) {
	if err := s.limiter.Wait(ctx, s.channel); err != nil {
		return "", &SendError{Reason: ReasonTimeout, Err: err}
	}
	return s.next.Send(ctx, to, message)
}

// BreakerSettings tunes WithBreaker.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

type breaker struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker stops calling next once it keeps failing for provider-level
// reasons. Recipient faults such as INVALID_EMAIL never trip the breaker.
func WithBreaker(next Sender, name string, s BreakerSettings, logger *zap.Logger) Sender {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsRecipientFault(Reason(err))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("sender", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &breaker{next: next, cb: cb}
}

func (b *breaker) Send(ctx context.Context, to, message string) (string, error) {
	id, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Send(ctx, to, message)
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}
