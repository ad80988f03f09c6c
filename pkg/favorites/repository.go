// Package favorites keeps the photos a user liked and drives the favorites
// grid and the photo detail screen.
package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/unsplash-client/pkg/store"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repository stores favorite photos, newest first.
type Repository struct {
	store  store.Store[unsplash.Photo]
	logger zerolog.Logger
}

// NewRepository creates a repository on top of s.
func NewRepository(s store.Store[unsplash.Photo]) *Repository {
	return &Repository{
		store:  s,
		logger: log.With().Str("component", "favorites").Logger(),
	}
}

// Add stores photo. A photo that is already a favorite keeps its position.
func (r *Repository) Add(ctx context.Context, photo unsplash.Photo) error {
	exists, err := r.Contains(ctx, photo.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := r.store.Put(ctx, photo.ID, photo); err != nil {
		return fmt.Errorf("store favorite %s: %w", photo.ID, err)
	}
	r.logger.Debug().Str("photo_id", photo.ID).Msg("Favorite added")
	return nil
}

// Remove deletes the favorite with id.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete favorite %s: %w", id, err)
	}
	r.logger.Debug().Str("photo_id", id).Msg("Favorite removed")
	return nil
}

// Get returns the favorite with id, or an error wrapping store.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (unsplash.Photo, error) {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		return unsplash.Photo{}, fmt.Errorf("favorite %s: %w", id, err)
	}
	return record.Value, nil
}

// Contains reports whether id is a favorite.
func (r *Repository) Contains(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("favorite %s: %w", id, err)
	}
}

// Page returns page (zero based) of perPage favorites.
func (r *Repository) Page(ctx context.Context, page, perPage int) ([]unsplash.Photo, error) {
	records, err := r.store.List(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return values(records), nil
}

// Count returns the number of favorites.
func (r *Repository) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// Observe streams the newest limit favorites after every change.
func (r *Repository) Observe(ctx context.Context, limit int) <-chan []unsplash.Photo {
	out := make(chan []unsplash.Photo)
	records := r.store.Observe(ctx, limit)
	go func() {
		defer close(out)
		for batch := range records {
			select {
			case out <- values(batch):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func values(records []store.Record[unsplash.Photo]) []unsplash.Photo {
	photos := make([]unsplash.Photo, len(records))
	for i, record := range records {
		photos[i] = record.Value
	}
	return photos
}
