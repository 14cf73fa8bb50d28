// Package directory provides the member directory sources that feed the
// broadcast pipeline.
//
// Sources return lazy iter.Seq2 sequences: nothing is fetched until the
// caller ranges over the sequence, and stopping the range early releases the
// underlying cursor. Each call to Recipients starts a fresh sequence.
package directory

import (
	"context"
	"iter"

	"github.com/notifyhub/announcements/internal/domain"
)

// AllSegment selects every active member regardless of segment.
const AllSegment = "all"

// Source streams the recipients selected by an audience.
// A non-nil error ends the sequence.
type Source interface {
	Recipients(ctx context.Context, audience domain.Audience) iter.Seq2[domain.Recipient, error]
}

// Counter is implemented by sources that can size an audience without
// streaming it. The broadcast service uses it for the hard-cap check.
type Counter interface {
	Count(ctx context.Context, audience domain.Audience) (int, error)
}
