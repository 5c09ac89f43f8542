package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrLoopStopped = errors.New("event loop is stopped")

const defaultQueueSize = 64

// Loop is a single goroutine event loop.
type Loop struct {
	queue chan func()
	done  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Loop{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Start - launches the loop goroutine. Later calls do nothing.
func (that *Loop) Start() {
	that.startOnce.Do(func() {
		go that.run()
	})
}

// Stop - ends the loop. Queued callbacks that have not run yet are dropped.
func (that *Loop) Stop() {
	that.stopOnce.Do(func() {
		close(that.done)
	})
}

func (that *Loop) run() {
	for {
		select {
		case <-that.done:
			return
		case fn := <-that.queue:
			fn()
		}
	}
}

// Post - queues fn for execution on the loop. It blocks while the queue is full and
// returns false once the loop is stopped. It must not be called from the loop itself.
func (that *Loop) Post(fn func()) bool {
	select {
	case <-that.done:
		return false
	case that.queue <- fn:
		return true
	}
}

// Do - runs fn on the loop and waits for it to return.
func (that *Loop) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-that.done:
		return ErrLoopStopped
	default:
	}

	finished := make(chan struct{})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-that.done:
		return ErrLoopStopped
	case that.queue <- func() {
		defer close(finished)
		fn()
	}:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-that.done:
		return ErrLoopStopped
	case <-finished:
		return nil
	}
}

type loopTask struct {
	cancelled atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
	timer     *time.Timer
}

func (that *loopTask) Cancel() {
	that.cancelled.Store(true)
	that.stopOnce.Do(func() {
		close(that.stop)
		if that.timer != nil {
			that.timer.Stop()
		}
	})
}

// guarded - wraps fn so it is skipped when the task was cancelled after being queued.
func (that *loopTask) guarded(fn func()) func() {
	return func() {
		if !that.cancelled.Load() {
			fn()
		}
	}
}

// After - runs fn on the loop once d has elapsed.
func (that *Loop) After(d time.Duration, fn func()) Task {
	task := &loopTask{stop: make(chan struct{})}
	task.timer = time.AfterFunc(d, func() {
		that.Post(task.guarded(fn))
	})

	return task
}

// Every - runs fn on the loop each time d elapses, until cancelled or the loop stops.
func (that *Loop) Every(d time.Duration, fn func()) Task {
	task := &loopTask{stop: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-task.stop:
				return
			case <-that.done:
				return
			case <-ticker.C:
				if !that.Post(task.guarded(fn)) {
					return
				}
			}
		}
	}()

	return task
}
