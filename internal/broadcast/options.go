package broadcast

import (
	"time"

	"github.com/notifyhub/announcements/internal/domain"
)

// Options bounds a broadcast run. Zero fields fall back to DefaultOptions.
type Options struct {
	// BatchSize is the number of recipients sent to concurrently per round.
	BatchSize int
	// ProgressInterval emits a progress log whenever the processed count is
	// a multiple of it.
	ProgressInterval int
	// MaxRecipients is the soft ceiling. It is checked between batches, so a
	// live run may overshoot it by up to BatchSize-1.
	MaxRecipients int
	// SampleSize caps the dry-run sample.
	SampleSize int
	// HardCap rejects a live run up front when the audience is larger.
	// Only enforced for sources that can count. Negative disables.
	HardCap int
	// SendTimeout bounds each send attempt. Negative disables.
	SendTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		BatchSize:        15,
		ProgressInterval: 100,
		MaxRecipients:    1000,
		SampleSize:       10,
		HardCap:          10000,
		SendTimeout:      10 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = def.ProgressInterval
	}
	if o.MaxRecipients <= 0 {
		o.MaxRecipients = def.MaxRecipients
	}
	if o.SampleSize <= 0 {
		o.SampleSize = def.SampleSize
	}
	if o.HardCap == 0 {
		o.HardCap = def.HardCap
	}
	if o.SendTimeout == 0 {
		o.SendTimeout = def.SendTimeout
	}
	return o
}

// Hooks carries the metric callbacks injected by main. Any may be nil.
type Hooks struct {
	OnSent   func(ch domain.Channel)
	OnFailed func(ch domain.Channel, reason string)
	OnBatch  func(size int, elapsed time.Duration)
	OnRun    func(dryRun bool, targets int)
}

func (h Hooks) withDefaults() Hooks {
	if h.OnSent == nil {
		h.OnSent = func(domain.Channel) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(domain.Channel, string) {}
	}
	if h.OnBatch == nil {
		h.OnBatch = func(int, time.Duration) {}
	}
	if h.OnRun == nil {
		h.OnRun = func(bool, int) {}
	}
	return h
}
