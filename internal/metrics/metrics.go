package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notifyhub/announcements/internal/broadcast"
	"github.com/notifyhub/announcements/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	BroadcastsTotal   *prometheus.CounterVec
	RecipientsTotal   *prometheus.CounterVec
	SendsTotal        *prometheus.CounterVec
	SendFailuresTotal *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
	BatchSize         prometheus.Histogram
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BroadcastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Completed broadcast runs by mode.",
		}, []string{"mode"}),

		RecipientsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_recipients_total",
			Help: "Recipients pulled from the directory by completed runs.",
		}, []string{"mode"}),

		SendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_sends_total",
			Help: "Successful send attempts.",
		}, []string{"channel"}),

		SendFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_send_failures_total",
			Help: "Failed send attempts by failure reason.",
		}, []string{"channel", "reason"}),

		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "broadcast_batch_seconds",
			Help:    "Time from launching a batch to the last send settling.",
			Buckets: prometheus.DefBuckets,
		}),

		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "broadcast_batch_recipients",
			Help:    "Recipients per dispatched batch.",
			Buckets: prometheus.LinearBuckets(1, 2, 8),
		}),
	}

	reg.MustRegister(
		m.BroadcastsTotal,
		m.RecipientsTotal,
		m.SendsTotal,
		m.SendFailuresTotal,
		m.BatchDuration,
		m.BatchSize,
	)

	return m
}

// Hooks returns the callbacks expected by broadcast.Hooks.
// Centralises the prometheus observation calls so the broadcast package
// stays metrics-agnostic.
func (m *Metrics) Hooks() broadcast.Hooks {
	return broadcast.Hooks{
		OnSent: func(ch domain.Channel) {
			m.SendsTotal.WithLabelValues(string(ch)).Inc()
		},
		OnFailed: func(ch domain.Channel, reason string) {
			m.SendFailuresTotal.WithLabelValues(string(ch), reason).Inc()
		},
		OnBatch: func(size int, elapsed time.Duration) {
			m.BatchDuration.Observe(elapsed.Seconds())
			m.BatchSize.Observe(float64(size))
		},
		OnRun: func(dryRun bool, targets int) {
			mode := "live"
			if dryRun {
				mode = "dry_run"
			}
			m.BroadcastsTotal.WithLabelValues(mode).Inc()
			m.RecipientsTotal.WithLabelValues(mode).Add(float64(targets))
		},
	}
}
