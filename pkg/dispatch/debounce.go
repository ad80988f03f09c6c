package dispatch

import (
	"sync"
	"time"
)

// Debouncer delivers only the last value pushed within a quiet window.
//
// The callback runs through the Scheduler; with a QueueScheduler that means
// it runs on the queue. A timer that already fired but lost the race with a
// newer Push is ignored by sequence number.
type Debouncer[T any] struct {
	window    time.Duration
	scheduler Scheduler
	fn        func(T)

	mu    sync.Mutex
	seq   uint64
	timer Timer
}

// NewDebouncer creates a debouncer that calls fn with the last pushed value
// once window elapses without another push.
func NewDebouncer[T any](window time.Duration, scheduler Scheduler, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		window:    window,
		scheduler: scheduler,
		fn:        fn,
	}
}

// Push restarts the quiet window with v as the pending value.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.scheduler.AfterFunc(d.window, func() {
		d.mu.Lock()
		current := d.seq == seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			d.fn(v)
		}
	})
	d.mu.Unlock()
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
