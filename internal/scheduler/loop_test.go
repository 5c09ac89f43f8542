package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedLoop(t *testing.T) *Loop {
	t.Helper()

	loop := NewLoop(0)
	loop.Start()
	t.Cleanup(loop.Stop)

	return loop
}

func TestLoop_Do(t *testing.T) {
	t.Run("Runs the callback and waits for it", func(t *testing.T) {
		loop := newStartedLoop(t)
		value := 0

		err := loop.Do(context.Background(), func() { value = 42 })

		require.NoError(t, err)
		assert.Equal(t, 42, value)
	})

	t.Run("Fails once the loop is stopped", func(t *testing.T) {
		loop := NewLoop(1)
		loop.Start()
		loop.Stop()

		err := loop.Do(context.Background(), func() {})

		assert.ErrorIs(t, err, ErrLoopStopped)
	})

	t.Run("Honours context cancellation", func(t *testing.T) {
		loop := NewLoop(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := loop.Do(ctx, func() {})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoop_After(t *testing.T) {
	t.Run("Runs the callback on the loop after the delay", func(t *testing.T) {
		loop := newStartedLoop(t)
		var fired atomic.Bool

		loop.After(5*time.Millisecond, func() { fired.Store(true) })

		assert.Eventually(t, fired.Load, time.Second, time.Millisecond)
	})

	t.Run("Cancelled callback does not run", func(t *testing.T) {
		loop := newStartedLoop(t)
		var fired atomic.Bool

		task := loop.After(20*time.Millisecond, func() { fired.Store(true) })
		task.Cancel()

		assert.Never(t, fired.Load, 100*time.Millisecond, 5*time.Millisecond)
	})
}

func TestLoop_Every(t *testing.T) {
	loop := newStartedLoop(t)
	var calls atomic.Int32

	task := loop.Every(2*time.Millisecond, func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	task.Cancel()
	// let an already queued tick drain
	require.NoError(t, loop.Do(context.Background(), func() {}))
	stopped := calls.Load()

	assert.Never(t, func() bool { return calls.Load() > stopped }, 50*time.Millisecond, 5*time.Millisecond)
}
