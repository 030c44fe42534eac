// Package gateway performs bearer-authenticated JSON calls against the provider APIs.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/metrics"
	"github.com/MrSnakeDoc/storefront/internal/utils"
	"github.com/MrSnakeDoc/storefront/internal/version"
)

const (
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 1 << 20
)

// TokenSource yields the current bearer token ("" when not authenticated).
// *session.Session satisfies it.
type TokenSource interface {
	AccessToken() string
}

// Request describes one provider call.
type Request struct {
	Operation string // metrics/log label, ex: "accounts.list"
	Method    string
	URL       string
	Body      any // marshalled as JSON when non-nil
}

// Client issues one attempt per call: no retry, no refresh.
type Client struct {
	http   *http.Client
	tokens TokenSource
	logger logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every call. Non-positive values keep DefaultTimeout.
// The client is copied so a *http.Client given to WithHTTPClient is left as is.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			h := *c.http
			h.Timeout = d
			c.http = &h
		}
	}
}

// New builds a gateway reading its token from tokens on every call.
func New(tokens TokenSource, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get is a convenience for a GET decoded into out.
func (c *Client) Get(ctx context.Context, operation, url string, out any) error {
	return c.Do(ctx, Request{Operation: operation, Method: http.MethodGet, URL: url}, out)
}

// Do sends req with the bearer token and decodes a successful JSON body into out.
// out may be nil. Non-2xx answers come back as *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()

	token := c.tokens.AccessToken()
	if token == "" {
		metrics.ObserveUpstream(req.Operation, metrics.OutcomeUnauthenticated, 0)
		return fmt.Errorf("%s: %w", req.Operation, ErrUnauthenticated)
	}

	httpReq, err := c.newRequest(ctx, req, token)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveUpstream(req.Operation, metrics.OutcomeTransportError, time.Since(start))
		return fmt.Errorf("%s: %w", req.Operation, err)
	}
	defer utils.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveUpstream(req.Operation, metrics.OutcomeHTTPError, time.Since(start))
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Operation: req.Operation, Status: resp.StatusCode, Body: string(text)}
		c.logger.Debug("provider call failed",
			logger.String("operation", req.Operation),
			logger.Int("status", resp.StatusCode))
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			metrics.ObserveUpstream(req.Operation, metrics.OutcomeDecodeError, time.Since(start))
			return fmt.Errorf("%s: %w: %v", req.Operation, ErrBadResponse, err)
		}
	}

	metrics.ObserveUpstream(req.Operation, metrics.OutcomeSuccess, time.Since(start))
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to marshal body: %w", req.Operation, err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", req.Operation, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	return httpReq, nil
}
