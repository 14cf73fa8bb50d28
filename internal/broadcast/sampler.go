package broadcast

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/domain"
)

// Sample counts recipients up to ceiling and keeps the first sampleSize of
// them. It never sends anything.
func Sample(
	recipients iter.Seq2[domain.Recipient, error],
	ceiling, sampleSize int,
	logger *zap.Logger,
) (domain.DryRunResult, error) {
	res := domain.DryRunResult{DryRun: true, Sample: make([]domain.Recipient, 0, sampleSize)}

	for r, err := range recipients {
		if err != nil {
			return domain.DryRunResult{}, fmt.Errorf("pull recipients: %w", err)
		}
		res.Targets++
		if len(res.Sample) < sampleSize {
			res.Sample = append(res.Sample, r)
		}
		if limitReached(res.Targets, ceiling) {
			logger.Info("hit max recipient limit during dry run", zap.Int("limit", ceiling))
			break
		}
	}

	return res, nil
}
