package domain

import "strings"

// Channel is the delivery channel for an announcement.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Channels lists every supported channel in a stable order.
var Channels = []Channel{ChannelEmail, ChannelSMS}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// Recipient is one contact record produced by the member directory.
// An empty field means the contact method is absent.
type Recipient struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Contact returns the address used for ch, or false when the recipient
// cannot be reached on that channel.
func (r Recipient) Contact(ch Channel) (string, bool) {
	switch ch {
	case ChannelEmail:
		return r.Email, r.Email != ""
	case ChannelSMS:
		return r.Phone, r.Phone != ""
	}
	return "", false
}

// Audience selects the recipients of a broadcast. The dispatch pipeline
// never interprets it; only directory sources do.
type Audience struct {
	Segment string `json:"segment"`
}

// BroadcastRequest is the inbound payload for an announcement broadcast.
type BroadcastRequest struct {
	Message  string    `json:"message"`
	Channels []Channel `json:"channels"`
	Audience Audience  `json:"audience"`
	DryRun   bool      `json:"dryRun,omitempty"`

	// CorrelationID is set from the request context, not the body.
	CorrelationID string `json:"-"`
}

func (r *BroadcastRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	if len(r.Channels) == 0 {
		return ErrNoChannels
	}
	for _, ch := range r.Channels {
		if !ch.IsValid() {
			return ErrInvalidChannel
		}
	}
	if strings.TrimSpace(r.Audience.Segment) == "" {
		return ErrMissingSegment
	}
	return nil
}

// UniqueChannels returns the requested channels with duplicates removed,
// preserving first-seen order.
func (r *BroadcastRequest) UniqueChannels() []Channel {
	seen := make(map[Channel]bool, len(r.Channels))
	out := make([]Channel, 0, len(r.Channels))
	for _, ch := range r.Channels {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out
}

// Totals is the aggregate result of a live broadcast run.
type Totals struct {
	Targets int             `json:"targets"`
	Sent    map[Channel]int `json:"sent"`
	Failed  map[string]int  `json:"failed"`
}

// NewTotals returns zeroed totals with a counter for every channel.
func NewTotals() Totals {
	sent := make(map[Channel]int, len(Channels))
	for _, ch := range Channels {
		sent[ch] = 0
	}
	return Totals{Sent: sent, Failed: make(map[string]int)}
}

// DryRunResult is the preview returned when no sends are performed.
type DryRunResult struct {
	DryRun  bool        `json:"dryRun"`
	Targets int         `json:"targets"`
	Sample  []Recipient `json:"sample"`
}

// BroadcastResult carries exactly one of Totals or Preview.
type BroadcastResult struct {
	Totals  *Totals
	Preview *DryRunResult
}
