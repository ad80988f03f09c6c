package search

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/unsplash-client/pkg/store"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RecentLimit is how many recent queries are kept and shown.
const RecentLimit = 50

// RecentQuery is a submitted search.
type RecentQuery struct {
	ID        string
	Query     unsplash.Query
	UpdatedAt time.Time
}

// RecentQueries records submitted searches, newest first. Create the
// backing store with Options.Limit set to RecentLimit to cap it.
type RecentQueries struct {
	store  store.Store[unsplash.Query]
	newID  func() string
	logger zerolog.Logger
}

// NewRecentQueries creates the repository on top of s.
func NewRecentQueries(s store.Store[unsplash.Query]) *RecentQueries {
	return &RecentQueries{
		store:  s,
		newID:  uuid.NewString,
		logger: log.With().Str("component", "recent-queries").Logger(),
	}
}

// Create records q under a new ID.
func (r *RecentQueries) Create(ctx context.Context, q unsplash.Query) (RecentQuery, error) {
	id := r.newID()
	if err := r.store.Put(ctx, id, q); err != nil {
		return RecentQuery{}, fmt.Errorf("store recent query: %w", err)
	}
	r.logger.Debug().Str("id", id).Str("text", q.Text).Msg("Recent query recorded")

	record, err := r.store.Get(ctx, id)
	if err != nil {
		return RecentQuery{}, fmt.Errorf("read recent query: %w", err)
	}
	return fromRecord(record), nil
}

// Touch marks the query with id as used now.
func (r *RecentQueries) Touch(ctx context.Context, id string) error {
	if err := r.store.Touch(ctx, id); err != nil {
		return fmt.Errorf("touch recent query %s: %w", id, err)
	}
	return nil
}

// Delete removes the query with id.
func (r *RecentQueries) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recent query %s: %w", id, err)
	}
	return nil
}

// List returns up to RecentLimit queries, newest first.
func (r *RecentQueries) List(ctx context.Context) ([]RecentQuery, error) {
	records, err := r.store.List(ctx, 0, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent queries: %w", err)
	}
	return fromRecords(records), nil
}

// Observe streams the recent queries after every change.
func (r *RecentQueries) Observe(ctx context.Context) <-chan []RecentQuery {
	out := make(chan []RecentQuery)
	records := r.store.Observe(ctx, RecentLimit)
	go func() {
		defer close(out)
		for batch := range records {
			select {
			case out <- fromRecords(batch):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func fromRecord(record store.Record[unsplash.Query]) RecentQuery {
	return RecentQuery{ID: record.ID, Query: record.Value, UpdatedAt: record.UpdatedAt}
}

func fromRecords(records []store.Record[unsplash.Query]) []RecentQuery {
	out := make([]RecentQuery, len(records))
	for i, record := range records {
		out[i] = fromRecord(record)
	}
	return out
}
