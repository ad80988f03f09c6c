// Package dispatch provides the single-threaded "main" execution context that
// coordinators run on, plus timer scheduling and debouncing on top of it.
//
// Network completions are posted to a Queue so that coordinator state
// (page counters, accumulated items, in-flight task references) is only ever
// touched from one goroutine and needs no locking.
package dispatch

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Queue runs submitted functions serially on one logical context.
type Queue interface {
	// Async schedules fn to run on the queue. It never blocks on fn.
	Async(fn func())
}

// MainQueue is a Queue backed by a single goroutine.
type MainQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []func()
	closed bool
	done   chan struct{}
	logger zerolog.Logger
}

// NewMainQueue starts the queue goroutine.
func NewMainQueue() *MainQueue {
	q := &MainQueue{
		done:   make(chan struct{}),
		logger: log.With().Str("component", "main-queue").Logger(),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Async appends fn to the queue. Functions submitted after Close are dropped.
func (q *MainQueue) Async(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Debug().Msg("Dropping job submitted after close")
		return
	}
	q.jobs = append(q.jobs, fn)
	q.cond.Signal()
}

// Sync runs fn on the queue and waits for it to finish.
// Calling Sync from inside a queued function deadlocks.
func (q *MainQueue) Sync(fn func()) {
	finished := make(chan struct{})
	q.Async(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-q.done:
	}
}

// Close stops accepting work, drains what is already queued and waits for
// the queue goroutine to exit.
func (q *MainQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done
}

func (q *MainQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.jobs) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.jobs) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		q.execute(job)
	}
}

func (q *MainQueue) execute(job func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error().Interface("panic", r).Msg("Queued job panicked")
		}
	}()
	job()
}

// Manual is a Queue that only runs jobs when Drain is called.
// Tests use it to control exactly when completions land.
type Manual struct {
	mu   sync.Mutex
	jobs []func()
}

// Async records fn.
func (m *Manual) Async(fn func()) {
	m.mu.Lock()
	m.jobs = append(m.jobs, fn)
	m.mu.Unlock()
}

// Pending returns the number of queued jobs.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Await blocks until at least n jobs are queued or timeout elapses.
// It reports whether the jobs arrived.
func (m *Manual) Await(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if m.Pending() >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// Drain runs queued jobs, including ones queued while draining, and returns
// how many ran.
func (m *Manual) Drain() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.jobs) == 0 {
			m.mu.Unlock()
			return ran
		}
		job := m.jobs[0]
		m.jobs = m.jobs[1:]
		m.mu.Unlock()

		job()
		ran++
	}
}

// Immediate runs every job inline on the caller's goroutine.
type Immediate struct{}

// Async runs fn immediately.
func (Immediate) Async(fn func()) { fn() }
