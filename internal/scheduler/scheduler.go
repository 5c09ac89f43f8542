// Package scheduler runs deferred and periodic callbacks that can be cancelled.
//
// Loop executes every callback on a single goroutine, so state touched only from
// callbacks needs no locking. Manual runs callbacks synchronously when its clock is
// advanced and is meant for tests.
package scheduler

import "time"

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel stops the callback from running again. Safe to call more than once.
	Cancel()
}

// Scheduler schedules callbacks after a delay or on a fixed interval.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}
