package scheduler

import "time"

type manualTask struct {
	due       time.Duration
	interval  time.Duration
	seq       uint64
	fn        func()
	cancelled bool
}

func (that *manualTask) Cancel() {
	that.cancelled = true
}

// Manual is a virtual clock scheduler. Nothing runs until Advance is called, and
// callbacks run on the caller's goroutine. It is not safe for concurrent use.
type Manual struct {
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

func NewManual() *Manual {
	return &Manual{}
}

func (that *Manual) After(d time.Duration, fn func()) Task {
	return that.add(d, 0, fn)
}

// Every - schedules fn on a fixed interval. Intervals below one nanosecond are raised to one.
func (that *Manual) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		d = time.Nanosecond
	}

	return that.add(d, d, fn)
}

func (that *Manual) add(d, interval time.Duration, fn func()) *manualTask {
	if d < 0 {
		d = 0
	}

	that.seq++
	task := &manualTask{due: that.now + d, interval: interval, seq: that.seq, fn: fn}
	that.tasks = append(that.tasks, task)

	return task
}

// Now - returns the virtual time elapsed since creation.
func (that *Manual) Now() time.Duration {
	return that.now
}

// Advance - moves the clock forward by d, running due callbacks in time order.
// Callbacks scheduled while advancing run too if they fall due within d.
func (that *Manual) Advance(d time.Duration) {
	target := that.now + d

	for {
		task := that.next(target)
		if task == nil {
			break
		}

		that.now = task.due
		if task.interval > 0 {
			that.seq++
			task.due += task.interval
			task.seq = that.seq
		} else {
			that.remove(task)
		}

		task.fn()
	}

	that.now = target
}

// Pending - returns the number of tasks that are still scheduled.
func (that *Manual) Pending() int {
	that.prune()
	return len(that.tasks)
}

func (that *Manual) next(target time.Duration) *manualTask {
	that.prune()

	var next *manualTask
	for _, task := range that.tasks {
		if task.due > target {
			continue
		}

		if next == nil || task.due < next.due || (task.due == next.due && task.seq < next.seq) {
			next = task
		}
	}

	return next
}

func (that *Manual) remove(target *manualTask) {
	for i, task := range that.tasks {
		if task == target {
			that.tasks = append(that.tasks[:i], that.tasks[i+1:]...)
			return
		}
	}
}

func (that *Manual) prune() {
	kept := that.tasks[:0]
	for _, task := range that.tasks {
		if !task.cancelled {
			kept = append(kept, task)
		}
	}

	for i := len(kept); i < len(that.tasks); i++ {
		that.tasks[i] = nil
	}

	that.tasks = kept
}
