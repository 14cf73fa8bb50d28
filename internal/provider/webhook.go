package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/notifyhub/announcements/internal/domain"
)

// WebhookSender delivers announcements on one channel by POSTing to an HTTP
// endpoint. The URL is injected from config so tests can point to a local mock.
type WebhookSender struct {
	channel    domain.Channel
	url        string
	subject    string
	httpClient *http.Client
}

// NewWebhookSender builds a sender for ch. subject is only sent for email.
func NewWebhookSender(ch domain.Channel, url, subject string, timeout time.Duration) *WebhookSender {
	if ch != domain.ChannelEmail {
		subject = ""
	}
	return &WebhookSender{
		channel: ch,
		url:     url,
		subject: subject,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the announcement and expects a 202 Accepted response with a
// JSON body containing messageId. Any other outcome is a *SendError.
func (p *WebhookSender) Send(ctx context.Context, to, message string) (string, error) {
	if to == "" {
		return "", &SendError{Reason: missingReason(p.channel)}
	}

	body, err := json.Marshal(SendRequest{
		To:      to,
		Channel: string(p.channel),
		Subject: p.subject,
		Content: message,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return "", &SendError{Reason: ReasonTimeout, Err: err}
		}
		return "", &SendError{Reason: ReasonProviderUnavailable, Err: err}
	}
	defer resp.Body.Close()

	var sendResp SendResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&sendResp)

	if resp.StatusCode != http.StatusAccepted {
		if decodeErr == nil && sendResp.Error != "" {
			return "", &SendError{Reason: sendResp.Error}
		}
		return "", &SendError{
			Reason: p.reasonForStatus(resp.StatusCode),
			Err:    fmt.Errorf("unexpected provider status: %d", resp.StatusCode),
		}
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	return sendResp.MessageID, nil
}

func (p *WebhookSender) reasonForStatus(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return ReasonRateLimited
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return invalidReason(p.channel)
	case code >= 500:
		return ReasonProviderUnavailable
	}
	return ReasonUnknown
}

// compile-time check that WebhookSender implements Sender
var _ Sender = (*WebhookSender)(nil)
