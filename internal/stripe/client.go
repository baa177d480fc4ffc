// Package stripe is a minimal client for the payment processor's
// payment-intent API plus verification of its signed webhook events.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

const defaultBaseURL = "https://api.stripe.com"

// Intent is the processor-side handle for an in-progress payment.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// APIError is the processor's error envelope.
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %s (%s, http %d)", e.Message, e.Type, e.StatusCode)
}

// Client calls the processor over HTTPS. Every call goes through a
// circuit breaker: after repeated consecutive failures the breaker opens
// and calls fail fast until the processor recovers. There are no retries;
// a failed call surfaces immediately.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Intent]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c
}

// CreateIntent creates a payment intent for the given amount in minor
// currency units. The metadata map is attached verbatim and echoed back
// inside webhook events.
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	// One idempotency key per logical attempt: a duplicate submit of the
	// same request body must not create a second intent on the processor.
	idempotencyKey := uuid.NewString()

	return c.breaker.Execute(func() (*Intent, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Idempotency-Key", idempotencyKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			var envelope struct {
				Error APIError `json:"error"`
			}
			if err := json.Unmarshal(body, &envelope); err == nil {
				apiErr.Type = envelope.Error.Type
				apiErr.Message = envelope.Error.Message
			}
			if apiErr.Message == "" {
				apiErr.Message = "request failed"
			}
			return nil, apiErr
		}

		var intent Intent
		if err := json.Unmarshal(body, &intent); err != nil {
			return nil, fmt.Errorf("stripe: decode response: %w", err)
		}
		return &intent, nil
	})
}
