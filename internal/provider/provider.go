package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/notifyhub/announcements/internal/domain"
)

// Failure reasons reported by the bundled senders. Providers may surface
// other free-form reasons through the response body.
const (
	ReasonRateLimited         = "RATE_LIMIT_EXCEEDED"
	ReasonInvalidEmail        = "INVALID_EMAIL"
	ReasonInvalidPhone        = "INVALID_PHONE"
	ReasonMissingEmail        = "MISSING_EMAIL"
	ReasonMissingPhone        = "MISSING_PHONE"
	ReasonProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ReasonCircuitOpen         = "CIRCUIT_OPEN"
	ReasonTimeout             = "TIMEOUT"
	ReasonUnknown             = "UNKNOWN_ERROR"
)

// SendRequest is the JSON body posted to an external provider.
type SendRequest struct {
	To      string `json:"to"`
	Channel string `json:"channel"`
	Subject string `json:"subject,omitempty"`
	Content string `json:"content"`
}

// SendResponse maps the provider's 202 Accepted response body.
type SendResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Sender attempts a single delivery of message to one destination on one
// channel and returns the provider's message ID.
// Mocking this interface in tests gives full control over provider behaviour
// without making real HTTP calls.
type Sender interface {
	Send(ctx context.Context, to, message string) (string, error)
}

// SendError is a classified delivery failure.
type SendError struct {
	Reason string
	Err    error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *SendError) Unwrap() error { return e.Err }

// Reason converts a send error into the key used by the failure histogram.
func Reason(err error) string {
	var se *SendError
	switch {
	case errors.As(err, &se) && se.Reason != "":
		return se.Reason
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ReasonCircuitOpen
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return ReasonUnknown
}

// IsRecipientFault reports whether reason blames the destination address
// rather than the provider.
func IsRecipientFault(reason string) bool {
	return strings.HasPrefix(reason, "INVALID_") || strings.HasPrefix(reason, "MISSING_")
}

func missingReason(ch domain.Channel) string {
	if ch == domain.ChannelSMS {
		return ReasonMissingPhone
	}
	return ReasonMissingEmail
}

func invalidReason(ch domain.Channel) string {
	if ch == domain.ChannelSMS {
		return ReasonInvalidPhone
	}
	return ReasonInvalidEmail
}
