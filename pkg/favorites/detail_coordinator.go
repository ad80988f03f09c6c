package favorites

import (
	"context"

	"github.com/Sternrassler/unsplash-client/pkg/dispatch"
	"github.com/Sternrassler/unsplash-client/pkg/navigation"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DateLayout formats the creation date on the detail screen.
const DateLayout = "2 January, 2006"

// DetailModel is what the detail screen renders.
type DetailModel struct {
	Photo      string
	Color      string
	Date       string
	Resolution unsplash.Resolution
	Liked      bool
	Origin     Origin
}

// DetailResponder receives navigation requests from the detail screen.
type DetailResponder interface {
	DismissScene()
}

// DetailCoordinator drives one photo detail screen. Every method must be
// called on the queue.
type DetailCoordinator struct {
	ctx        context.Context
	id         string
	service    *DetailService
	queue      dispatch.Queue
	responders *navigation.Registry[DetailResponder]
	responder  navigation.ID
	logger     zerolog.Logger

	photo    *unsplash.Photo
	model    *DetailModel
	onChange func(DetailModel)
}

// NewDetailCoordinator creates the coordinator for photo id. responders may
// be nil.
func NewDetailCoordinator(ctx context.Context, id string, service *DetailService, queue dispatch.Queue, responders *navigation.Registry[DetailResponder]) *DetailCoordinator {
	if responders == nil {
		responders = navigation.NewRegistry[DetailResponder]()
	}
	return &DetailCoordinator{
		ctx:        ctx,
		id:         id,
		service:    service,
		queue:      queue,
		responders: responders,
		logger:     log.With().Str("component", "photo-detail").Str("photo_id", id).Logger(),
	}
}

// SetResponder selects the registered responder for navigation.
func (d *DetailCoordinator) SetResponder(id navigation.ID) { d.responder = id }

// OnChange registers the model observer.
func (d *DetailCoordinator) OnChange(fn func(DetailModel)) { d.onChange = fn }

// Model returns the loaded model.
func (d *DetailCoordinator) Model() (DetailModel, bool) {
	if d.model == nil {
		return DetailModel{}, false
	}
	return *d.model, true
}

// Load resolves the photo. A failure dismisses the screen.
func (d *DetailCoordinator) Load() {
	go func() {
		detail, err := d.service.Load(d.ctx, d.id)
		d.queue.Async(func() {
			if err != nil {
				d.logger.Warn().Err(err).Msg("Failed to load photo")
				d.dismiss()
				return
			}
			photo := detail.Photo
			d.photo = &photo
			d.publish(DetailModel{
				Photo:      photo.URLs.Regular,
				Color:      photo.Color,
				Date:       FormatDate(photo),
				Resolution: photo.Resolution,
				Liked:      detail.Liked,
				Origin:     detail.Origin,
			})
		})
	}()
}

// ToggleFavorite likes or unlikes the photo. The model flips immediately;
// the write happens off the queue.
func (d *DetailCoordinator) ToggleFavorite() {
	if d.photo == nil || d.model == nil {
		return
	}

	liked := !d.model.Liked
	photo := *d.photo
	go func() {
		var err error
		if liked {
			err = d.service.Like(d.ctx, photo)
		} else {
			err = d.service.Unlike(d.ctx, photo.ID)
		}
		if err != nil {
			d.logger.Error().Err(err).Bool("liked", liked).Msg("Failed to update favorite")
		}
	}()

	model := *d.model
	model.Liked = liked
	d.publish(model)
}

// ImageLoadingFailed dismisses the screen.
func (d *DetailCoordinator) ImageLoadingFailed() {
	d.dismiss()
}

func (d *DetailCoordinator) dismiss() {
	d.responders.Do(d.responder, func(r DetailResponder) { r.DismissScene() })
}

func (d *DetailCoordinator) publish(m DetailModel) {
	d.model = &m
	if d.onChange != nil {
		d.onChange(m)
	}
}

// FormatDate renders the creation date, or "Unknown" when it is missing.
func FormatDate(p unsplash.Photo) string {
	if p.CreatedAt.IsZero() {
		return "Unknown"
	}
	return p.CreatedAt.Format(DateLayout)
}
