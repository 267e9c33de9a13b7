// Package database owns the process-wide Persistent Store connection.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options bounds connection establishment and idle sockets.
type Options struct {
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.SocketTimeout <= 0 {
		o.SocketTimeout = 45 * time.Second
	}
	return o
}

// Driver knows how to open, check and release a connection of type T.
type Driver[T any] struct {
	Connect func(ctx context.Context) (T, error)
	Ping    func(ctx context.Context, conn T) error
	Close   func(ctx context.Context, conn T) error
}

// Handle is a lazily-initialised connection shared by every request.
//
// The first Get dials; concurrent first callers wait on the same attempt.
// A failed attempt is not remembered, so the next Get dials again.
type Handle[T any] struct {
	name    string
	timeout time.Duration
	driver  Driver[T]

	group singleflight.Group

	mu    sync.RWMutex
	conn  T
	ready bool
}

// NewHandle creates a handle that dials with driver.Connect on first use.
// timeout bounds each dial attempt.
func NewHandle[T any](name string, timeout time.Duration, driver Driver[T]) *Handle[T] {
	return &Handle[T]{
		name:    name,
		timeout: timeout,
		driver:  driver,
	}
}

// Ready wraps an already open connection.
func Ready[T any](name string, conn T) *Handle[T] {
	return &Handle[T]{name: name, conn: conn, ready: true}
}

// Get returns the shared connection, dialing it if needed.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if conn, ok := h.current(); ok {
		return conn, nil
	}

	ch := h.group.DoChan(h.name, func() (any, error) {
		if conn, ok := h.current(); ok {
			return conn, nil
		}

		// The attempt outlives any single caller's cancellation.
		dialCtx := context.WithoutCancel(ctx)
		if h.timeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(dialCtx, h.timeout)
			defer cancel()
		}

		slog.Info("connecting to store", "store", h.name)
		conn, err := h.driver.Connect(dialCtx)
		if err != nil {
			slog.Error("store connection failed", "store", h.name, "error", err)
			return nil, err
		}

		h.mu.Lock()
		h.conn = conn
		h.ready = true
		h.mu.Unlock()

		slog.Info("store connected", "store", h.name)
		return conn, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, fmt.Errorf("connect %s: %w", h.name, res.Err)
		}
		return res.Val.(T), nil
	}
}

// Ping dials if needed; it reports whether the store is reachable.
func (h *Handle[T]) Ping(ctx context.Context) error {
	conn, err := h.Get(ctx)
	if err != nil {
		return err
	}
	if h.driver.Ping == nil {
		return nil
	}
	return h.driver.Ping(ctx, conn)
}

// Close releases the connection if one was established.
func (h *Handle[T]) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready || h.driver.Close == nil {
		return nil
	}
	err := h.driver.Close(ctx, h.conn)
	var zero T
	h.conn = zero
	h.ready = false
	return err
}

func (h *Handle[T]) current() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conn, h.ready
}
