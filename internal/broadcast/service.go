package broadcast

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/directory"
	"github.com/notifyhub/announcements/internal/domain"
	"github.com/notifyhub/announcements/internal/provider"
)

// Service is the entry point for announcement broadcasts.
// It validates input, applies the capacity check, and routes the request to
// either the dry-run sampler or the batch dispatcher.
type Service struct {
	source  directory.Source
	senders map[domain.Channel]provider.Sender
	opts    Options
	hooks   Hooks
	logger  *zap.Logger
}

func NewService(
	source directory.Source,
	senders map[domain.Channel]provider.Sender,
	opts Options,
	hooks Hooks,
	logger *zap.Logger,
) *Service {
	return &Service{
		source:  source,
		senders: senders,
		opts:    opts.withDefaults(),
		hooks:   hooks.withDefaults(),
		logger:  logger,
	}
}

// Broadcast runs one announcement. It returns either a classified error
// (validation, capacity, configuration, source failure) with nothing sent
// from the caller's point of view, or a complete result.
func (s *Service) Broadcast(ctx context.Context, req domain.BroadcastRequest) (*domain.BroadcastResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("segment", req.Audience.Segment),
		zap.Bool("dry_run", req.DryRun),
	)
	if req.CorrelationID != "" {
		log = log.With(zap.String("correlation_id", req.CorrelationID))
	}

	if req.DryRun {
		preview, err := Sample(
			s.source.Recipients(ctx, req.Audience),
			s.opts.MaxRecipients, s.opts.SampleSize, log,
		)
		if err != nil {
			return nil, err
		}
		s.hooks.OnRun(true, preview.Targets)
		return &domain.BroadcastResult{Preview: &preview}, nil
	}

	channels := req.UniqueChannels()
	for _, ch := range channels {
		if s.senders[ch] == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoSender, ch)
		}
	}

	if err := s.checkCapacity(ctx, req.Audience); err != nil {
		return nil, err
	}

	log.Info("broadcast started", zap.Strings("channels", channelNames(channels)))
	d := NewDispatcher(s.senders, s.opts, s.hooks, log)
	totals, err := d.Dispatch(ctx, req.Message, channels, s.source.Recipients(ctx, req.Audience))
	if err != nil {
		log.Error("broadcast aborted", zap.Error(err))
		return nil, err
	}

	s.hooks.OnRun(false, totals.Targets)
	return &domain.BroadcastResult{Totals: &totals}, nil
}

// checkCapacity rejects audiences above the hard cap when the source can
// size them cheaply. Sources that cannot count are only bounded by the
// soft ceiling.
func (s *Service) checkCapacity(ctx context.Context, audience domain.Audience) error {
	if s.opts.HardCap < 0 {
		return nil
	}
	counter, ok := s.source.(directory.Counter)
	if !ok {
		return nil
	}

	n, err := counter.Count(ctx, audience)
	if err != nil {
		return fmt.Errorf("size audience: %w", err)
	}
	if n > s.opts.HardCap {
		return fmt.Errorf("%w: audience of %d exceeds %d", domain.ErrTooManyTargets, n, s.opts.HardCap)
	}
	return nil
}

func channelNames(channels []domain.Channel) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = string(ch)
	}
	return out
}
