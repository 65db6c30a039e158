package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct{ id int32 }

func TestLazy_ConcurrentFirstCallersShareOneAttempt(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	lazy := NewLazy(func(ctx context.Context) (*handle, error) {
		n := calls.Add(1)
		<-release
		return &handle{id: n}, nil
	})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*handle, callers)
	started := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			h, err := lazy.Get(context.Background())
			assert.NoError(t, err)
			results[i] = h
		}(i)
	}
	for i := 0; i < callers; i++ {
		<-started
	}
	// Give every goroutine a chance to join the in-flight attempt.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, h := range results {
		require.NotNil(t, h)
		assert.Same(t, results[0], h)
	}

	// Later callers reuse the cached handle.
	h, err := lazy.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, results[0], h)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazy_FailureIsNotCached(t *testing.T) {
	var calls atomic.Int32
	lazy := NewLazy(func(ctx context.Context) (*handle, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &handle{id: 2}, nil
	})

	_, err := lazy.Get(context.Background())
	assert.EqualError(t, err, "connection refused")

	h, err := lazy.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLazy_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	lazy := NewLazy(func(ctx context.Context) (*handle, error) {
		<-release
		return &handle{id: 1}, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lazy.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The shared attempt is unaffected by the cancelled caller.
	close(release)
	h, err := lazy.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.id)
}

func TestLazy_Close(t *testing.T) {
	lazy := NewLazy(func(ctx context.Context) (*handle, error) {
		return &handle{id: 1}, nil
	})

	var released int
	closer := func(*handle) error {
		released++
		return nil
	}

	_, err := lazy.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, lazy.Close(closer))
	assert.Equal(t, 1, released)

	// Closing twice is a no-op and the handle is not handed out again.
	require.NoError(t, lazy.Close(closer))
	assert.Equal(t, 1, released)
	_, err = lazy.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLazy_CloseBeforeFirstUse(t *testing.T) {
	var calls atomic.Int32
	lazy := NewLazy(func(ctx context.Context) (*handle, error) {
		calls.Add(1)
		return &handle{id: 1}, nil
	})

	require.NoError(t, lazy.Close(func(*handle) error { return nil }))

	_, err := lazy.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, int32(0), calls.Load())
}

func TestLazy_CloseDuringConnectReleasesLateHandle(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	lazy := NewLazy(func(ctx context.Context) (*handle, error) {
		close(entered)
		<-unblock
		return &handle{id: 7}, nil
	})

	var released []*handle
	var mu sync.Mutex
	closer := func(h *handle) error {
		mu.Lock()
		defer mu.Unlock()
		released = append(released, h)
		return nil
	}

	errc := make(chan error, 1)
	go func() {
		_, err := lazy.Get(context.Background())
		errc <- err
	}()

	<-entered
	require.NoError(t, lazy.Close(closer))
	close(unblock)

	assert.ErrorIs(t, <-errc, ErrClosed)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, released, 1)
	assert.Equal(t, int32(7), released[0].id)
}
