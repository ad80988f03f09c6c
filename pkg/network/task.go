package network

import (
	"context"
	"sync"
)

// Cancellable is anything with an in-flight operation that can be abandoned.
type Cancellable interface {
	Cancel()
}

// Task is the handle for one in-flight request.
//
// Cancel before the completion is delivered forces the outcome to a
// cancelled error. Cancel after delivery does nothing. A nil *Task is valid
// and cancelling it is a no-op.
type Task struct {
	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool
	delivered bool
}

func newTask(cancel context.CancelFunc) *Task {
	return &Task{cancel: cancel}
}

// Cancel abandons the request. Safe to call any number of times.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.delivered || t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	t.mu.Unlock()
	t.cancel()
}

// Cancelled reports whether Cancel won the race against delivery.
func (t *Task) Cancelled() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// deliver marks the task as completed and reports whether it was cancelled
// first.
func (t *Task) deliver() (cancelled bool) {
	t.mu.Lock()
	t.delivered = true
	cancelled = t.cancelled
	t.mu.Unlock()
	t.cancel()
	return cancelled
}
