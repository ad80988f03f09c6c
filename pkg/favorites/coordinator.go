package favorites

import (
	"context"

	"github.com/Sternrassler/unsplash-client/pkg/dispatch"
	"github.com/Sternrassler/unsplash-client/pkg/feed"
	"github.com/Sternrassler/unsplash-client/pkg/navigation"
	"github.com/Sternrassler/unsplash-client/pkg/pagination"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PageSize is the number of favorites loaded per page.
const PageSize = 20

// Responder receives navigation requests from the favorites grid.
type Responder interface {
	RouteToDetail(id string)
}

// State is the favorites grid.
type State struct {
	Cells      []feed.Cell
	Refreshing bool
}

// Coordinator drives the favorites grid. Pages are read from the repository
// off the queue and merged on it; every method must be called on the queue.
type Coordinator struct {
	ctx        context.Context
	repo       *Repository
	queue      dispatch.Queue
	responders *navigation.Registry[Responder]
	responder  navigation.ID
	lookahead  int
	logger     zerolog.Logger

	cursor     *pagination.Cursor[unsplash.Photo]
	state      State
	onChange   func(State)
	generation uint64
	loading    bool
}

// NewCoordinator creates the coordinator. responders may be nil.
func NewCoordinator(ctx context.Context, repo *Repository, queue dispatch.Queue, responders *navigation.Registry[Responder]) *Coordinator {
	if responders == nil {
		responders = navigation.NewRegistry[Responder]()
	}
	return &Coordinator{
		ctx:        ctx,
		repo:       repo,
		queue:      queue,
		responders: responders,
		lookahead:  pagination.DefaultLookahead,
		logger:     log.With().Str("component", "favorites-grid").Logger(),
		cursor:     pagination.NewCursor(0, PageSize, unsplash.PhotoID),
	}
}

// SetResponder selects the registered responder for navigation.
func (c *Coordinator) SetResponder(id navigation.ID) { c.responder = id }

// OnChange registers the state observer.
func (c *Coordinator) OnChange(fn func(State)) { c.onChange = fn }

// State returns the last published state.
func (c *Coordinator) State() State { return c.state }

// Loading reports whether a page read is in flight.
func (c *Coordinator) Loading() bool { return c.loading }

// HasMore reports whether the last page was full.
func (c *Coordinator) HasMore() bool { return c.cursor.HasMore() }

// ViewWillAppear reloads from the first page, since favorites may have
// changed while the grid was hidden.
func (c *Coordinator) ViewWillAppear() { c.reload(false) }

// Refresh reloads from the first page.
func (c *Coordinator) Refresh() { c.reload(true) }

// WillDisplay loads the next page when index is close to the end.
func (c *Coordinator) WillDisplay(index int) {
	if c.loading || !c.cursor.HasMore() || !c.cursor.NearEnd(index, c.lookahead) {
		return
	}
	c.load()
}

// Select routes to the detail of the favorite at index.
func (c *Coordinator) Select(index int) {
	photo, ok := c.cursor.At(index)
	if !ok {
		return
	}
	c.responders.Do(c.responder, func(r Responder) { r.RouteToDetail(photo.ID) })
}

func (c *Coordinator) reload(refreshing bool) {
	c.generation++
	c.loading = false
	c.cursor.Reset()
	c.state.Refreshing = refreshing
	c.load()
}

func (c *Coordinator) load() {
	c.loading = true
	generation := c.generation
	page := c.cursor.Page()
	perPage := c.cursor.PageSize()

	go func() {
		photos, err := c.repo.Page(c.ctx, page, perPage)
		c.queue.Async(func() {
			if generation != c.generation {
				return
			}
			c.loading = false
			if err != nil {
				c.logger.Warn().Err(err).Int("page", page).Msg("Failed to read favorites")
				photos = nil
			}
			c.cursor.Merge(photos)
			c.publish(State{Cells: cellsOf(c.cursor.Items())})
		})
	}()
}

func (c *Coordinator) publish(s State) {
	c.state = s
	if c.onChange != nil {
		c.onChange(s)
	}
}

func cellsOf(photos []unsplash.Photo) []feed.Cell {
	out := make([]feed.Cell, len(photos))
	for i, p := range photos {
		out[i] = feed.CellFromPhoto(p)
	}
	return out
}
