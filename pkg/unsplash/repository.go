package unsplash

import (
	"context"

	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repository maps API responses to domain models.
//
// The blocking methods return when the response is decoded. The Async
// methods post their completion to the client's queue and return a handle,
// or nil when the request could not be built.
type Repository struct {
	client *network.Client
	logger zerolog.Logger
}

// NewRepository creates a repository on top of client.
func NewRepository(client *network.Client) *Repository {
	return &Repository{
		client: client,
		logger: log.With().Str("component", "unsplash-repository").Logger(),
	}
}

// Photos returns one page of the editorial feed.
func (r *Repository) Photos(ctx context.Context, page, perPage int) ([]Photo, error) {
	list, err := network.Do(ctx, r.client, GetPhotos(page, perPage))
	if err != nil {
		return nil, err
	}
	return PhotosFromDTO(list), nil
}

// Photo returns a single photo. Cached copies are used when present.
func (r *Repository) Photo(ctx context.Context, id string) (Photo, error) {
	dto, err := network.Do(ctx, r.client, GetPhoto(id), network.WithCachePolicy(network.ReturnCacheDataElseLoad))
	if err != nil {
		return Photo{}, err
	}
	return r.mapPhoto(dto)
}

// Search returns one page of search results.
func (r *Repository) Search(ctx context.Context, q Query, page, perPage int) (SearchResult, error) {
	dto, err := network.Do(ctx, r.client, SearchPhotos(q, page, perPage))
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResultFromDTO(dto), nil
}

// PhotosAsync is the asynchronous form of Photos.
func (r *Repository) PhotosAsync(ctx context.Context, page, perPage int, completion func([]Photo, error)) network.Cancellable {
	task := network.Request(ctx, r.client, GetPhotos(page, perPage), func(list PhotoList, err error) {
		if err != nil {
			completion(nil, err)
			return
		}
		completion(PhotosFromDTO(list), nil)
	})
	return cancellable(task)
}

// PhotoAsync is the asynchronous form of Photo.
func (r *Repository) PhotoAsync(ctx context.Context, id string, completion func(Photo, error)) network.Cancellable {
	task := network.Request(ctx, r.client, GetPhoto(id), func(dto PhotoDTO, err error) {
		if err != nil {
			completion(Photo{}, err)
			return
		}
		completion(r.mapPhoto(dto))
	}, network.WithCachePolicy(network.ReturnCacheDataElseLoad))
	return cancellable(task)
}

// SearchAsync is the asynchronous form of Search.
func (r *Repository) SearchAsync(ctx context.Context, q Query, page, perPage int, completion func(SearchResult, error)) network.Cancellable {
	task := network.Request(ctx, r.client, SearchPhotos(q, page, perPage), func(dto SearchResultDTO, err error) {
		if err != nil {
			completion(SearchResult{}, err)
			return
		}
		completion(SearchResultFromDTO(dto), nil)
	})
	return cancellable(task)
}

func (r *Repository) mapPhoto(dto PhotoDTO) (Photo, error) {
	photo, ok := PhotoFromDTO(dto)
	if !ok {
		r.logger.Warn().Str("photo_id", dto.ID).Msg("Photo record has invalid URLs")
		return Photo{}, &network.Error{Kind: network.KindInvalidData}
	}
	return photo, nil
}

// cancellable avoids wrapping a nil task in a non-nil interface.
func cancellable(task *network.Task) network.Cancellable {
	if task == nil {
		return nil
	}
	return task
}
