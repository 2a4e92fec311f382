package jenkins

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

// WebhookPayload is the JSON body POSTed when a packaging job completes
// successfully. PROJECT carries the scheduler-facing job name.
type WebhookPayload struct {
	Project string `json:"PROJECT"`
}

// Notifier delivers job-completion notifications to the release webhook. The
// generated jobs carry an equivalent curl step; this client is the local
// counterpart used by tooling and tests.
type Notifier struct {
	url           string
	httpClient    *http.Client
	retryAttempts uint
	retryDelay    time.Duration
}

// NotifierOption customises the notifier.
type NotifierOption func(*Notifier)

// WithNotifierHTTPClient injects a custom HTTP client.
func WithNotifierHTTPClient(httpClient *http.Client) NotifierOption {
	return func(n *Notifier) {
		n.httpClient = httpClient
	}
}

// WithNotifierRetry overrides the retry policy.
func WithNotifierRetry(attempts uint, delay time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.retryAttempts = attempts
		n.retryDelay = delay
	}
}

// NewNotifier constructs a Notifier for the given webhook URL.
func NewNotifier(webhookURL string, options ...NotifierOption) (*Notifier, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, errors.New("jenkins: webhook URL is required")
	}

	notifier := &Notifier{
		url:           trimmed,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(notifier)
	}
	if notifier.httpClient == nil {
		notifier.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return notifier, nil
}

// Notify POSTs the completion payload for params.JobName().
func (n *Notifier) Notify(ctx context.Context, params JobParams) error {
	body, err := json.Marshal(WebhookPayload{Project: params.JobName()})
	if err != nil {
		return fmt.Errorf("jenkins: encode webhook payload: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("jenkins: build webhook request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := n.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("jenkins: notify webhook: %w", err)
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			return fmt.Errorf("jenkins: notify webhook: unexpected status %s", resp.Status)
		},
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
		retry.Attempts(n.retryAttempts),
		retry.Delay(n.retryDelay),
		retry.LastErrorOnly(true),
	)
}
