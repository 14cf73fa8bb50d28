package provider

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/domain"
)

// LogSender pretends to deliver by writing a log line. Used for local runs
// where no provider endpoint is configured.
type LogSender struct {
	channel domain.Channel
	logger  *zap.Logger
}

func NewLogSender(ch domain.Channel, logger *zap.Logger) *LogSender {
	return &LogSender{channel: ch, logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, message string) (string, error) {
	if to == "" {
		return "", &SendError{Reason: missingReason(s.channel)}
	}
	id := "mock-" + strings.ToLower(string(s.channel)) + "-" + uuid.New().String()
	s.logger.Info("announcement delivered to log",
		zap.String("channel", string(s.channel)),
		zap.String("to", to),
		zap.Int("length", len(message)),
		zap.String("provider_msg_id", id),
	)
	return id, nil
}

var _ Sender = (*LogSender)(nil)
