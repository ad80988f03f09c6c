package unsplash

import (
	"context"

	"github.com/Sternrassler/unsplash-client/pkg/network"
)

// FetchPhotos loads a page of photos either from the editorial feed or, when
// a query is given, from search results.
type FetchPhotos struct {
	repo *Repository
}

// NewFetchPhotos creates the use case.
func NewFetchPhotos(repo *Repository) *FetchPhotos {
	return &FetchPhotos{repo: repo}
}

// Execute starts loading page. A nil query selects the editorial feed.
func (u *FetchPhotos) Execute(ctx context.Context, page, perPage int, query *Query, completion func([]Photo, error)) network.Cancellable {
	if query == nil {
		return u.repo.PhotosAsync(ctx, page, perPage, completion)
	}
	return u.repo.SearchAsync(ctx, *query, page, perPage, func(result SearchResult, err error) {
		if err != nil {
			completion(nil, err)
			return
		}
		completion(result.Photos, nil)
	})
}
