// Package queue talks to the durable at-least-once delivery service that
// carries asynchronous provider calls. The service POSTs the envelope body to
// the provider on our behalf, retries on transport failure, and invokes the
// envelope's callback URL with the provider response (or the failure callback
// when it gives up).
package queue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"server/internal/providers"
)

// Publisher submits an envelope for durable delivery. Implemented by Client;
// stubbed in tests.
type Publisher interface {
	Publish(ctx context.Context, env *providers.Envelope) error
}

// Retry policy: one retry only. The requesting user is waiting interactively,
// so surfacing failure fast beats exhaustive redelivery.
const publishRetries = "1"

// Options configures the delivery client.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client publishes envelopes over the delivery service's HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a delivery client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("queue: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
	}, nil
}

// Publish hands the envelope to the delivery layer. A nil error means the
// layer accepted the submission; anything else must be surfaced synchronously
// to the caller so no orphaned pending record is created.
func (c *Client) Publish(ctx context.Context, env *providers.Envelope) error {
	if env == nil || env.URL == "" {
		return errors.New("queue: envelope destination is required")
	}
	endpoint := c.baseURL + "/v2/publish/" + url.QueryEscape(env.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(env.Body))
	if err != nil {
		return fmt.Errorf("queue: build publish request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Upstash-Retries", publishRetries)
	if env.CallbackURL != "" {
		req.Header.Set("Upstash-Callback", env.CallbackURL)
	}
	if env.FailureCallbackURL != "" {
		req.Header.Set("Upstash-Failure-Callback", env.FailureCallbackURL)
	}
	for name, value := range env.Headers {
		req.Header.Set("Upstash-Forward-"+name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("queue: publish: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("queue: publish status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

var _ Publisher = (*Client)(nil)
