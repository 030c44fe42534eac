// Package businessprofile talks to the business profile provider APIs:
// account/location discovery, daily performance metrics, reviews and local posts.
package businessprofile

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/gateway"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// DefaultWalkConcurrency bounds the per-account location fetches in flight.
const DefaultWalkConcurrency = 4

// API is the subset of the gateway the provider calls need.
type API interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// Client groups every provider operation behind one set of endpoints.
type Client struct {
	api         API
	endpoints   Endpoints
	logger      logger.Logger
	now         func() time.Time
	concurrency int
}

// Option customizes a Client.
type Option func(*Client)

// WithClock overrides time.Now (stats window computation).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithWalkConcurrency sets how many accounts are walked at once.
func WithWalkConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient builds a provider client. Empty endpoints fall back to the public ones.
func NewClient(api API, endpoints Endpoints, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		api:         api,
		endpoints:   endpoints.WithDefaults(),
		logger:      log.With(logger.Component("businessprofile")),
		now:         time.Now,
		concurrency: DefaultWalkConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, operation, url string, out any) error {
	return c.api.Do(ctx, gateway.Request{Operation: operation, URL: url}, out)
}
