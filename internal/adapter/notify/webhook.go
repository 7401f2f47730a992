package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// DefaultRetryBudget bounds the total time spent retrying one delivery.
// Sends happen inline in the sweep loop, so the budget has to stay well
// below the sweep interval and lock TTL.
const DefaultRetryBudget = 3 * time.Second

// WebhookSink implements usecase.NotificationSink by posting messages to an
// HTTP endpoint. Delivery is retried briefly; callers treat any returned
// error as best-effort and never fail their own operation over it.
type WebhookSink struct {
	url         string
	client      *http.Client
	maxInterval time.Duration
	maxElapsed  time.Duration
	logger      zerolog.Logger
}

// NewWebhookSink creates a new WebhookSink. retryBudget caps the total
// retry time per message; zero or negative means DefaultRetryBudget.
func NewWebhookSink(url string, timeout, retryBudget time.Duration, logger zerolog.Logger) *WebhookSink {
	if retryBudget <= 0 {
		retryBudget = DefaultRetryBudget
	}
	return &WebhookSink{
		url:         url,
		client:      &http.Client{Timeout: timeout},
		maxInterval: time.Second,
		maxElapsed:  retryBudget,
		logger:      logger,
	}
}

type webhookPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Send posts the message, retrying transient failures with backoff.
func (s *WebhookSink) Send(ctx context.Context, contact, message string) error {
	body, err := json.Marshal(webhookPayload{To: contact, Body: message})
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = s.maxInterval
	b.MaxElapsedTime = s.maxElapsed

	err = backoff.Retry(func() error {
		return s.post(ctx, body)
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return err
	}

	s.logger.Debug().Str("contact", contact).Msg("notification delivered")

	return nil
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	default:
		// Client errors will not improve on retry.
		return backoff.Permanent(fmt.Errorf("webhook returned %d", resp.StatusCode))
	}
}
