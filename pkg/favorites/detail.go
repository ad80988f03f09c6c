package favorites

import (
	"context"
	"errors"

	"github.com/Sternrassler/unsplash-client/pkg/store"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Origin tells where a detail was loaded from.
type Origin string

const (
	OriginFavorites Origin = "favorites"
	OriginRemote    Origin = "remote"
)

// Detail is a photo plus whether the user liked it.
type Detail struct {
	Photo  unsplash.Photo
	Liked  bool
	Origin Origin
}

// PhotoLoader fetches a photo from the API. unsplash.Repository implements
// it.
type PhotoLoader interface {
	Photo(ctx context.Context, id string) (unsplash.Photo, error)
}

// DetailService resolves photos for the detail screen. Favorites are served
// from storage; anything else is fetched.
type DetailService struct {
	favorites *Repository
	remote    PhotoLoader
	logger    zerolog.Logger
}

// NewDetailService creates the service.
func NewDetailService(favorites *Repository, remote PhotoLoader) *DetailService {
	return &DetailService{
		favorites: favorites,
		remote:    remote,
		logger:    log.With().Str("component", "photo-detail").Logger(),
	}
}

// Load returns the detail for id.
func (s *DetailService) Load(ctx context.Context, id string) (Detail, error) {
	photo, err := s.favorites.Get(ctx, id)
	if err == nil {
		return Detail{Photo: photo, Liked: true, Origin: OriginFavorites}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn().Err(err).Str("photo_id", id).Msg("Favorites lookup failed, loading remotely")
	}

	photo, err = s.remote.Photo(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Photo: photo, Origin: OriginRemote}, nil
}

// Like adds photo to the favorites.
func (s *DetailService) Like(ctx context.Context, photo unsplash.Photo) error {
	return s.favorites.Add(ctx, photo)
}

// Unlike removes the photo with id from the favorites.
func (s *DetailService) Unlike(ctx context.Context, id string) error {
	return s.favorites.Remove(ctx, id)
}
