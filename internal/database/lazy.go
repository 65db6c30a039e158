package database

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Lazy.Get after Close.
var ErrClosed = errors.New("database: connection closed")

// Lazy owns a connection handle that is established on first use.
// Concurrent first callers share a single connection attempt; a failed
// attempt is not cached, so the next caller tries again.
type Lazy[T any] struct {
	connect func(ctx context.Context) (T, error)

	group   singleflight.Group
	mu      sync.RWMutex
	val     T
	ready   bool
	closed  bool
	release func(T) error
}

// NewLazy wraps connect. connect runs detached from the caller's
// cancellation so one impatient caller cannot fail the attempt for the rest.
func NewLazy[T any](connect func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{connect: connect}
}

// Get returns the handle, connecting if needed. It returns early with
// ctx.Err() if ctx ends while the shared attempt is still running.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if v, ok, closed := l.loaded(); ok {
		return v, nil
	} else if closed {
		return zero, ErrClosed
	}

	ch := l.group.DoChan("connect", func() (any, error) {
		if v, ok, closed := l.loaded(); ok {
			return v, nil
		} else if closed {
			return nil, ErrClosed
		}
		v, err := l.connect(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		if l.closed {
			release := l.release
			l.mu.Unlock()
			// Close ran while connecting; nobody else will release v.
			if release != nil {
				_ = release(v)
			}
			return nil, ErrClosed
		}
		l.val, l.ready = v, true
		l.mu.Unlock()
		return v, nil
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

// Close releases the handle if one was established. A connect still in
// flight releases its handle with the same func once it completes. Later
// calls to Get return ErrClosed.
func (l *Lazy[T]) Close(release func(T) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed, l.release = true, release
	if !l.ready {
		return nil
	}
	var zero T
	v := l.val
	l.val, l.ready = zero, false
	return release(v)
}

func (l *Lazy[T]) loaded() (v T, ready, closed bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.val, l.ready, l.closed
}
