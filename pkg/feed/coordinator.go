// Package feed implements the paginated photo feed: page fetching, merging
// and deduplication, near-end prefetch, refresh, and mapping of failures to
// banners or an empty state.
//
// A Coordinator is single-threaded. Every method must be called on the
// dispatch queue its network client delivers completions to.
package feed

import (
	"context"
	"net/http"

	"github.com/Sternrassler/unsplash-client/pkg/navigation"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/Sternrassler/unsplash-client/pkg/pagination"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPageSize is the number of photos requested per page.
	DefaultPageSize = 20

	// FirstPage is the page number of the first request.
	FirstPage = 1
)

// Banners shown while the feed already holds photos.
var (
	RateLimitBanner = navigation.Banner{
		Title:    "The request limit has been reached",
		Subtitle: "Requests are updated at the beginning of each hour",
		Style:    navigation.BannerError,
	}
	NetworkBanner = navigation.Banner{
		Title:    "Network error",
		Subtitle: "Please check your connection",
		Style:    navigation.BannerError,
	}
)

// Empty state texts.
const (
	EmptyTitle    = "Something went wrong"
	EmptySubtitle = "Unable to load photos"
)

// Source loads one page of photos. unsplash.FetchPhotos implements it.
type Source interface {
	Execute(ctx context.Context, page, perPage int, query *unsplash.Query, completion func([]unsplash.Photo, error)) network.Cancellable
}

// Responder receives navigation requests from the feed.
type Responder interface {
	// PreparingFinished is called once, when the first load settles.
	PreparingFinished()
	RouteToDetail(photo unsplash.Photo)
}

// Options configures a Coordinator.
type Options struct {
	// PageSize defaults to DefaultPageSize
	PageSize int

	// Lookahead defaults to pagination.DefaultLookahead
	Lookahead int

	// Query switches the feed to search results
	Query *unsplash.Query
}

// Coordinator drives one feed screen.
type Coordinator struct {
	ctx        context.Context
	source     Source
	banners    navigation.BannerPresenter
	responders *navigation.Registry[Responder]
	responder  navigation.ID
	query      *unsplash.Query
	lookahead  int
	logger     zerolog.Logger

	cursor     *pagination.Cursor[unsplash.Photo]
	state      State
	onChange   func(State)
	task       network.Cancellable
	generation uint64
	fetching   bool
	refreshing bool
	prepared   bool
	lastError  string
}

// New creates a coordinator. Requests run under ctx; cancelling it has the
// same effect as Close. banners and responders may be nil.
func New(ctx context.Context, source Source, banners navigation.BannerPresenter, responders *navigation.Registry[Responder], opts Options) *Coordinator {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Lookahead <= 0 {
		opts.Lookahead = pagination.DefaultLookahead
	}
	if banners == nil {
		banners = navigation.BannerFunc(func(navigation.Banner) {})
	}
	if responders == nil {
		responders = navigation.NewRegistry[Responder]()
	}

	return &Coordinator{
		ctx:        ctx,
		source:     source,
		banners:    banners,
		responders: responders,
		query:      opts.Query,
		lookahead:  opts.Lookahead,
		logger:     log.With().Str("component", "feed").Logger(),
		cursor:     pagination.NewCursor(FirstPage, opts.PageSize, unsplash.PhotoID),
		state:      State{Kind: KindInitial},
	}
}

// SetResponder selects the registered responder for navigation.
func (c *Coordinator) SetResponder(id navigation.ID) {
	c.responder = id
}

// OnChange registers the state observer. It is called with the current
// state immediately.
func (c *Coordinator) OnChange(fn func(State)) {
	c.onChange = fn
	if fn != nil {
		fn(c.state)
	}
}

// State returns the last published state.
func (c *Coordinator) State() State { return c.state }

// Photos returns the accumulated photos.
func (c *Coordinator) Photos() []unsplash.Photo { return c.cursor.Items() }

// Page returns the page number that would be requested next.
func (c *Coordinator) Page() int { return c.cursor.Page() }

// HasMore reports whether more pages are believed to exist.
func (c *Coordinator) HasMore() bool { return c.cursor.HasMore() }

// Fetching reports whether a page request is in flight.
func (c *Coordinator) Fetching() bool { return c.fetching }

// ViewLoaded starts the first load. Later calls do nothing.
func (c *Coordinator) ViewLoaded() {
	if c.state.Kind != KindInitial {
		return
	}
	c.LoadMore()
}

// LoadMore requests the next page unless one is in flight or the feed is
// exhausted.
func (c *Coordinator) LoadMore() {
	if c.fetching || !c.cursor.HasMore() {
		return
	}
	c.fetch()
}

// Refresh drops everything and reloads the first page. An in-flight request
// is cancelled and its completion ignored.
func (c *Coordinator) Refresh() {
	c.cancelTask()
	c.cursor.Reset()
	c.refreshing = true
	c.fetch()
}

// Retry re-triggers the failed load. It never retries on its own.
func (c *Coordinator) Retry() {
	c.lastError = ""
	if c.cursor.Len() == 0 {
		c.Refresh()
		return
	}
	c.LoadMore()
}

// WillDisplay prefetches the next page when index is close to the end of
// the list.
func (c *Coordinator) WillDisplay(index int) {
	if c.fetching || !c.cursor.HasMore() || !c.cursor.NearEnd(index, c.lookahead) {
		return
	}
	c.LoadMore()
}

// Select routes to the detail of the photo at index.
func (c *Coordinator) Select(index int) {
	photo, ok := c.cursor.At(index)
	if !ok {
		return
	}
	c.responders.Do(c.responder, func(r Responder) { r.RouteToDetail(photo) })
}

// Resolution returns the pixel size of the photo at index.
func (c *Coordinator) Resolution(index int) (unsplash.Resolution, bool) {
	photo, ok := c.cursor.At(index)
	if !ok {
		return unsplash.Resolution{}, false
	}
	return photo.Resolution, true
}

// Close cancels the in-flight request. Late completions are ignored.
func (c *Coordinator) Close() {
	c.cancelTask()
}

func (c *Coordinator) cancelTask() {
	c.generation++
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
	c.fetching = false
}

func (c *Coordinator) fetch() {
	c.generation++
	generation := c.generation
	c.fetching = true

	page := c.cursor.Page()
	c.logger.Debug().
		Int("page", page).
		Int("per_page", c.cursor.PageSize()).
		Bool("search", c.query != nil).
		Msg("Loading page")

	c.publish(State{Kind: KindLoading, Cells: cells(c.cursor.Items())})

	task := c.source.Execute(c.ctx, page, c.cursor.PageSize(), c.query, func(photos []unsplash.Photo, err error) {
		if generation != c.generation {
			c.logger.Debug().Int("page", page).Msg("Dropping superseded page")
			return
		}
		c.task = nil
		c.fetching = false
		c.complete(page, photos, err)
	})
	if generation == c.generation && c.fetching {
		c.task = task
	}
}

func (c *Coordinator) complete(page int, photos []unsplash.Photo, err error) {
	if network.IsCancelled(err) {
		c.logger.Debug().Int("page", page).Msg("Page request cancelled")
		if c.state.Kind == KindLoading {
			c.refreshing = false
			c.settleCancelled()
		}
		return
	}

	c.refreshing = false
	defer c.finishPreparing()

	if err != nil {
		c.fail(page, err)
		return
	}

	added := c.cursor.Merge(photos)
	c.lastError = ""
	c.logger.Debug().
		Int("page", page).
		Int("received", len(photos)).
		Int("added", added).
		Int("total", c.cursor.Len()).
		Bool("has_more", c.cursor.HasMore()).
		Msg("Page merged")

	c.publishContent()
}

func (c *Coordinator) fail(page int, err error) {
	if c.cursor.Len() == 0 {
		c.logger.Warn().Err(err).Int("page", page).Msg("First page failed")
		c.publish(State{Kind: KindEmpty, Title: EmptyTitle, Subtitle: EmptySubtitle})
		return
	}

	c.publishContent()

	message := err.Error()
	if message == c.lastError {
		c.logger.Debug().Err(err).Msg("Suppressing repeated banner")
		return
	}
	c.lastError = message

	c.logger.Warn().Err(err).Int("page", page).Msg("Page request failed")
	c.banners.PresentBanner(BannerFor(err))
}

func (c *Coordinator) publishContent() {
	if c.cursor.Len() == 0 {
		c.publish(State{Kind: KindEmpty, Title: EmptyTitle, Subtitle: EmptySubtitle})
		return
	}
	c.publish(State{Kind: KindPhotos, Cells: cells(c.cursor.Items())})
}

// settleCancelled leaves the loading state after a cancellation nobody on
// the screen asked for. An empty feed returns to KindInitial so ViewLoaded
// can start it again.
func (c *Coordinator) settleCancelled() {
	if c.cursor.Len() == 0 {
		c.publish(State{Kind: KindInitial})
		return
	}
	c.publishContent()
}

func (c *Coordinator) finishPreparing() {
	if c.prepared {
		return
	}
	c.prepared = true
	c.responders.Do(c.responder, func(r Responder) { r.PreparingFinished() })
}

func (c *Coordinator) publish(s State) {
	s.Refreshing = c.refreshing
	c.state = s
	if c.onChange != nil {
		c.onChange(s)
	}
}

// BannerFor maps a failure to the banner shown over existing content.
func BannerFor(err error) navigation.Banner {
	switch network.StatusCodeOf(err) {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return RateLimitBanner
	default:
		return NetworkBanner
	}
}
