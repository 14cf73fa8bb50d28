package provider_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/domain"
	"github.com/notifyhub/announcements/internal/provider"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"classified", &provider.SendError{Reason: "INVALID_EMAIL"}, "INVALID_EMAIL"},
		{"wrapped classified", fmt.Errorf("send: %w", &provider.SendError{Reason: "BOUNCED"}), "BOUNCED"},
		{"plain message", errors.New("RATE_LIMIT_EXCEEDED"), "RATE_LIMIT_EXCEEDED"},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), provider.ReasonTimeout},
		{"empty message", errors.New(""), provider.ReasonUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, provider.Reason(tc.err))
		})
	}
}

type stubSender struct {
	calls atomic.Int32
	err   error
}

func (s *stubSender) Send(context.Context, string, string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return "ok", nil
}

func TestWithBreaker_OpensOnProviderFailures(t *testing.T) {
	next := &stubSender{err: &provider.SendError{Reason: provider.ReasonProviderUnavailable}}
	s := provider.WithBreaker(next, "email", provider.BreakerSettings{ConsecutiveFailures: 3}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := s.Send(context.Background(), "a@example.com", "m")
		assert.Equal(t, provider.ReasonProviderUnavailable, provider.Reason(err))
	}

	_, err := s.Send(context.Background(), "a@example.com", "m")
	assert.Equal(t, provider.ReasonCircuitOpen, provider.Reason(err))
	assert.Equal(t, int32(3), next.calls.Load(), "open breaker must not reach the provider")
}

func TestWithBreaker_IgnoresRecipientFaults(t *testing.T) {
	next := &stubSender{err: &provider.SendError{Reason: provider.ReasonInvalidEmail}}
	s := provider.WithBreaker(next, "email", provider.BreakerSettings{ConsecutiveFailures: 2}, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := s.Send(context.Background(), "bad", "m")
		assert.Equal(t, provider.ReasonInvalidEmail, provider.Reason(err))
	}
	assert.Equal(t, int32(5), next.calls.Load())
}

func TestWithBreaker_PassesThroughSuccess(t *testing.T) {
	s := provider.WithBreaker(&stubSender{}, "sms", provider.BreakerSettings{}, zap.NewNop())
	id, err := s.Send(context.Background(), "+1555", "m")
	require.NoError(t, err)
	assert.Equal(t, "ok", id)
}

type denyLimiter struct{ err error }

func (l denyLimiter) Wait(context.Context, domain.Channel) error { return l.err }

func TestWithRateLimit(t *testing.T) {
	t.Run("waits then sends", func(t *testing.T) {
		next := &stubSender{}
		s := provider.WithRateLimit(next, denyLimiter{}, domain.ChannelEmail)
		_, err := s.Send(context.Background(), "a@example.com", "m")
		require.NoError(t, err)
		assert.Equal(t, int32(1), next.calls.Load())
	})

	t.Run("wait failure is a timeout", func(t *testing.T) {
		next := &stubSender{}
		s := provider.WithRateLimit(next, denyLimiter{err: context.DeadlineExceeded}, domain.ChannelEmail)
		_, err := s.Send(context.Background(), "a@example.com", "m")
		assert.Equal(t, provider.ReasonTimeout, provider.Reason(err))
		assert.Zero(t, next.calls.Load())
	})
}

func TestLogSender(t *testing.T) {
	s := provider.NewLogSender(domain.ChannelSMS, zap.NewNop())

	id, err := s.Send(context.Background(), "+1555", "hello")
	require.NoError(t, err)
	assert.Contains(t, id, "mock-sms-")

	_, err = s.Send(context.Background(), "", "hello")
	assert.Equal(t, provider.ReasonMissingPhone, provider.Reason(err))
}
