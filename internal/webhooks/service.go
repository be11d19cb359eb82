package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"insurance-voice-agent/internal/observability"
)

const (
	// deliveryTimeout bounds each individual delivery attempt.
	deliveryTimeout = 2 * time.Second

	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
)

// Service delivers JSON events to external webhook endpoints with a short
// per-attempt timeout and a small bounded retry budget. Callers decide
// whether a final failure is fatal; in this system it never is.
type Service struct {
	logger         *observability.Logger
	httpClient     *http.Client
	maxAttempts    int
	initialBackoff time.Duration
}

// New creates a webhook delivery service.
func New(logger *observability.Logger) *Service {
	return &Service{
		logger: logger,
		httpClient: &http.Client{
			Timeout: deliveryTimeout,
		},
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
	}
}

// Deliver posts the payload as JSON to url. Attempts are retried with a
// doubling backoff; a non-2xx status counts as a failed attempt. The error
// returned after the final attempt wraps the last failure.
func (s *Service) Deliver(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(ctx, "failed to marshal webhook payload", err)
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "webhook_url", Value: url})

	backoff := s.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.post(ctx, url, body)
		if lastErr == nil {
			s.logger.Info(ctx, "webhook delivered")
			return nil
		}

		s.logger.Error(ctx, fmt.Sprintf("webhook delivery attempt %d/%d failed", attempt, s.maxAttempts), lastErr)

		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("webhook delivery cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Service) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
