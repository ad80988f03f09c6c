// Package store persists small collections of records keyed by ID and
// ordered by recency: favorite photos and recent search queries.
//
// Two implementations share the Store contract. RedisStore keeps records in
// a hash with a sorted-set index and announces changes over pub/sub, so
// several processes observe the same collection. MemoryStore keeps
// everything in process.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned for IDs that are not stored.
var ErrNotFound = errors.New("record not found")

// Record is a stored value plus its bookkeeping.
type Record[T any] struct {
	ID        string    `json:"id"`
	Value     T         `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a recency-ordered collection of records.
type Store[T any] interface {
	// Put creates or replaces the record for id and makes it the newest.
	Put(ctx context.Context, id string, value T) error

	// Touch makes an existing record the newest.
	Touch(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Record[T], error)

	// List returns page (zero based) of perPage records, newest first.
	List(ctx context.Context, page, perPage int) ([]Record[T], error)

	Count(ctx context.Context) (int, error)

	// Observe sends the newest limit records now and after every change.
	// Only the latest snapshot is kept for a slow reader. The channel is
	// closed when ctx is done.
	Observe(ctx context.Context, limit int) <-chan []Record[T]
}

// Options configures a store.
type Options struct {
	// Limit caps the number of records; the oldest are evicted. Zero means
	// unbounded.
	Limit int

	// Now replaces time.Now for UpdatedAt.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func pageBounds(page, perPage int) (start, stop int, ok bool) {
	if page < 0 || perPage <= 0 {
		return 0, 0, false
	}
	start = page * perPage
	return start, start + perPage - 1, true
}

// observe runs the snapshot loop shared by the implementations: load, send,
// wait for the next change.
func observe[T any](ctx context.Context, changes <-chan struct{}, load func(context.Context) ([]Record[T], error), logger zerolog.Logger) <-chan []Record[T] {
	out := make(chan []Record[T], 1)

	go func() {
		defer close(out)
		for {
			records, err := load(ctx)
			switch {
			case err != nil && ctx.Err() != nil:
				return
			case err != nil:
				StoreErrors.WithLabelValues("observe").Inc()
				logger.Warn().Err(err).Msg("Failed to load snapshot")
			default:
				select {
				case <-out:
				default:
				}
				out <- records
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()

	return out
}
