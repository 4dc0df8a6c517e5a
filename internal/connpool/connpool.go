// Package connpool caches a single database handle per process.
//
// A Cache is built once by the composition root and shared by every
// repository. The first Get dials; later calls reuse the handle. Callers
// that arrive while a dial is in progress wait for that dial instead of
// starting their own. A failed dial is not remembered: the next Get
// starts a fresh attempt.
package connpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"eventhub/internal/domain"
)

// DefaultDialTimeout bounds a single connection attempt.
const DefaultDialTimeout = 10 * time.Second

// DialFunc opens a connection from a connection string.
type DialFunc[T any] func(ctx context.Context, source string) (T, error)

// CloseFunc releases a connection previously returned by a DialFunc.
type CloseFunc[T any] func(ctx context.Context, conn T) error

// PingFunc checks that a connection is still usable.
type PingFunc[T any] func(ctx context.Context, conn T) error

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithLogger sets the logger used for connection lifecycle messages.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *Cache[T]) { c.logger = logger }
}

// WithCloser sets how Close releases the cached handle.
func WithCloser[T any](fn CloseFunc[T]) Option[T] {
	return func(c *Cache[T]) { c.close = fn }
}

// WithPinger sets how Ping checks the cached handle.
func WithPinger[T any](fn PingFunc[T]) Option[T] {
	return func(c *Cache[T]) { c.ping = fn }
}

// WithDialTimeout overrides DefaultDialTimeout.
func WithDialTimeout[T any](d time.Duration) Option[T] {
	return func(c *Cache[T]) { c.dialTimeout = d }
}

// Cache holds at most one established handle and at most one dial in flight.
type Cache[T any] struct {
	name        string
	source      string
	dial        DialFunc[T]
	close       CloseFunc[T]
	ping        PingFunc[T]
	dialTimeout time.Duration
	logger      *slog.Logger

	mu    sync.Mutex
	conn  T
	ready bool
	// gen is bumped by Close; a dial started under an older gen is discarded.
	gen uint64

	inflight singleflight.Group
}

// New returns a Cache that dials source with dial on first use. name is
// only used in log messages and errors. An empty source is not rejected
// here; Get reports it.
func New[T any](name, source string, dial DialFunc[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		name:        name,
		source:      source,
		dial:        dial,
		dialTimeout: DefaultDialTimeout,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached handle, dialing if none is established yet.
// It fails with domain.ErrConnectionStringMissing, without dialing, when
// the cache was built with an empty connection string.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if c.source == "" {
		return zero, fmt.Errorf("%s: %w", c.name, domain.ErrConnectionStringMissing)
	}
	if conn, ok := c.cached(); ok {
		return conn, nil
	}

	ch := c.inflight.DoChan(c.name, func() (any, error) {
		// A dial may have finished between the check above and joining the group.
		if conn, ok := c.cached(); ok {
			return conn, nil
		}
		return c.connect(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[T]) cached() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.ready
}

// connect runs the dial detached from the first caller's cancellation so
// that other waiters are not failed by it; the dial timeout still applies.
func (c *Cache[T]) connect(ctx context.Context) (T, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.dialTimeout)
	defer cancel()

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	var zero T
	start := time.Now()
	c.logger.InfoContext(ctx, "connecting to database", "database", c.name)
	conn, err := c.dial(ctx, c.source)
	if err != nil {
		c.logger.ErrorContext(ctx, "database connection failed", "database", c.name, "err", err)
		return zero, fmt.Errorf("connect %s: %w: %w", c.name, domain.ErrStoreUnavailable, err)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "discarding connection dialed before close", "database", c.name)
		if c.close != nil {
			if err := c.close(ctx, conn); err != nil {
				c.logger.WarnContext(ctx, "failed to close discarded connection", "database", c.name, "err", err)
			}
		}
		return zero, fmt.Errorf("connect %s: %w: cache closed during dial", c.name, domain.ErrStoreUnavailable)
	}
	c.conn = conn
	c.ready = true
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "database connected", "database", c.name, "duration_ms", time.Since(start).Milliseconds())
	return conn, nil
}

// Ping checks the cached handle, dialing first when needed.
func (c *Cache[T]) Ping(ctx context.Context) error {
	conn, err := c.Get(ctx)
	if err != nil {
		return err
	}
	if c.ping == nil {
		return nil
	}
	return c.ping(ctx, conn)
}

// Close releases the cached handle. A dial still in flight is released as
// soon as it completes instead of being cached. A later Get dials again.
func (c *Cache[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	conn, ready := c.conn, c.ready
	var zero T
	c.conn, c.ready = zero, false
	c.gen++
	c.mu.Unlock()

	if !ready || c.close == nil {
		return nil
	}
	c.logger.InfoContext(ctx, "closing database connection", "database", c.name)
	return c.close(ctx, conn)
}
