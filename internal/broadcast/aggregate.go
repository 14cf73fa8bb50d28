package broadcast

import "github.com/notifyhub/announcements/internal/domain"

// Outcome is the result of attempting every requested channel for one
// recipient. Errors holds one failure reason per failed channel.
type Outcome struct {
	EmailSent int
	SMSSent   int
	Errors    []string
}

// Settled is the result of one task that either ran to completion (Err nil)
// or did not (Err set, Value meaningless).
type Settled[T any] struct {
	Value T
	Err   error
}

// Fold reduces one batch of settled outcomes. Every failure reason is counted
// into failed, which the caller keeps for the whole run. Results that did not
// settle are dropped without counting.
func Fold(results []Settled[Outcome], failed map[string]int) (emailSent, smsSent int) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		emailSent += r.Value.EmailSent
		smsSent += r.Value.SMSSent
		for _, reason := range r.Value.Errors {
			failed[reason]++
		}
	}
	return emailSent, smsSent
}

func (o *Outcome) record(ch domain.Channel) {
	switch ch {
	case domain.ChannelEmail:
		o.EmailSent++
	case domain.ChannelSMS:
		o.SMSSent++
	}
}
