package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type memoryRecord[T any] struct {
	record Record[T]
	seq    uint64
}

// MemoryStore is an in-process Store.
type MemoryStore[T any] struct {
	opts   Options
	logger zerolog.Logger

	mu          sync.RWMutex
	seq         uint64
	records     map[string]memoryRecord[T]
	subscribers map[uint64]chan struct{}
	nextSub     uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore[T any](opts Options) *MemoryStore[T] {
	return &MemoryStore[T]{
		opts:        opts,
		logger:      log.With().Str("component", "memory-store").Logger(),
		records:     make(map[string]memoryRecord[T]),
		subscribers: make(map[uint64]chan struct{}),
	}
}

// Put implements Store.
func (s *MemoryStore[T]) Put(_ context.Context, id string, value T) error {
	s.mu.Lock()
	s.seq++
	s.records[id] = memoryRecord[T]{
		record: Record[T]{ID: id, Value: value, UpdatedAt: s.opts.now()},
		seq:    s.seq,
	}
	s.evictLocked()
	s.mu.Unlock()

	StoreWrites.WithLabelValues("put").Inc()
	s.notify()
	return nil
}

// Touch implements Store.
func (s *MemoryStore[T]) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	stored, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.seq++
	stored.seq = s.seq
	stored.record.UpdatedAt = s.opts.now()
	s.records[id] = stored
	s.mu.Unlock()

	StoreWrites.WithLabelValues("touch").Inc()
	s.notify()
	return nil
}

// Delete implements Store. Deleting a missing ID is not an error.
func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.records[id]
	delete(s.records, id)
	s.mu.Unlock()

	if ok {
		StoreWrites.WithLabelValues("delete").Inc()
		s.notify()
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore[T]) Get(_ context.Context, id string) (Record[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.records[id]
	if !ok {
		return Record[T]{}, ErrNotFound
	}
	return stored.record, nil
}

// List implements Store.
func (s *MemoryStore[T]) List(_ context.Context, page, perPage int) ([]Record[T], error) {
	start, stop, ok := pageBounds(page, perPage)
	if !ok {
		return nil, nil
	}

	s.mu.RLock()
	ordered := s.orderedLocked()
	s.mu.RUnlock()

	if start >= len(ordered) {
		return []Record[T]{}, nil
	}
	if stop >= len(ordered) {
		stop = len(ordered) - 1
	}
	return ordered[start : stop+1], nil
}

// Count implements Store.
func (s *MemoryStore[T]) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Observe implements Store.
func (s *MemoryStore[T]) Observe(ctx context.Context, limit int) <-chan []Record[T] {
	changes := make(chan struct{}, 1)

	s.mu.Lock()
	s.nextSub++
	sub := s.nextSub
	s.subscribers[sub] = changes
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, sub)
		s.mu.Unlock()
	}()

	return observe(ctx, changes, func(ctx context.Context) ([]Record[T], error) {
		return s.List(ctx, 0, limit)
	}, s.logger)
}

func (s *MemoryStore[T]) orderedLocked() []Record[T] {
	all := make([]memoryRecord[T], 0, len(s.records))
	for _, stored := range s.records {
		all = append(all, stored)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq > all[j].seq })

	out := make([]Record[T], len(all))
	for i, stored := range all {
		out[i] = stored.record
	}
	return out
}

func (s *MemoryStore[T]) evictLocked() {
	if s.opts.Limit <= 0 || len(s.records) <= s.opts.Limit {
		return
	}
	ordered := s.orderedLocked()
	for _, record := range ordered[s.opts.Limit:] {
		delete(s.records, record.ID)
	}
	s.logger.Debug().Int("evicted", len(ordered)-s.opts.Limit).Msg("Evicted oldest records")
}

func (s *MemoryStore[T]) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
