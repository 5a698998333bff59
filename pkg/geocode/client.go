// Package geocode turns free-text addresses into coordinates through a
// pluggable Provider, spacing requests to respect provider usage policies.
package geocode

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultMinDelay is the minimum spacing between two provider requests.
const DefaultMinDelay = time.Second

// Option configures the Client.
type Option func(*Client)

// WithMinDelay sets the minimum spacing between consecutive requests.
func WithMinDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.minDelay = d
		}
	}
}

// WithClock replaces the time source and sleep function. Used by tests.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.now = now
		c.sleep = sleep
	}
}

// Client wraps a Provider and dispatches at most one request per minimum
// delay. The delay is a floor between dispatch times, measured regardless of
// how long the provider takes to answer. A Client is safe for concurrent use;
// callers queue for the next dispatch slot.
type Client struct {
	provider Provider
	minDelay time.Duration
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error

	mu         sync.Mutex
	last       time.Time
	dispatched bool
}

// NewClient creates a Client around provider.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		minDelay: DefaultMinDelay,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the wrapped provider.
func (c *Client) Provider() Provider { return c.provider }

// MinDelay returns the configured dispatch spacing.
func (c *Client) MinDelay() time.Duration { return c.minDelay }

// Geocode waits for the next dispatch slot and queries the provider. A nil
// Result with a nil error means no match.
func (c *Client) Geocode(ctx context.Context, query string) (*Result, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: wait for dispatch slot")
	}

	result, err := c.provider.Geocode(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: %s lookup", c.provider.Name())
	}
	return result, nil
}

// wait blocks until minDelay has passed since the previous dispatch, then
// claims the current instant as the new dispatch time.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dispatched {
		if d := c.minDelay - c.now().Sub(c.last); d > 0 {
			if err := c.sleep(ctx, d); err != nil {
				return err
			}
		}
	}
	c.last = c.now()
	c.dispatched = true
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
