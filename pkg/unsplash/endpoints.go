package unsplash

import (
	"strconv"

	"github.com/Sternrassler/unsplash-client/pkg/network"
)

// DefaultBaseURL is the public API host.
const DefaultBaseURL = "https://api.unsplash.com"

// GetPhotos lists the editorial feed.
func GetPhotos(page, perPage int) network.Endpoint[PhotoList] {
	return network.NewEndpoint[PhotoList]("/photos").
		WithName("photos.list").
		WithParams(network.Params{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(perPage),
		})
}

// GetPhoto fetches a single photo.
func GetPhoto(id string) network.Endpoint[PhotoDTO] {
	return network.NewEndpoint[PhotoDTO]("/photos/" + id).
		WithName("photos.get")
}

// SearchPhotos searches photos matching q.
func SearchPhotos(q Query, page, perPage int) network.Endpoint[SearchResultDTO] {
	params := q.Params()
	params["page"] = strconv.Itoa(page)
	params["per_page"] = strconv.Itoa(perPage)
	return network.NewEndpoint[SearchResultDTO]("/search/photos").
		WithName("search.photos").
		WithParams(params)
}
