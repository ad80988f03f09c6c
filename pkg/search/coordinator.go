// Package search implements the search screen: query text and filter
// selection, a debounced probe that reports how many photos match, and the
// recent-queries list.
//
// A Coordinator is single-threaded. Every method must be called on the
// dispatch queue its collaborators deliver to.
package search

import (
	"context"
	"time"

	"github.com/Sternrassler/unsplash-client/pkg/dispatch"
	"github.com/Sternrassler/unsplash-client/pkg/navigation"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DebounceWindow is the quiet period after the last edit before a probe is
// sent.
const DebounceWindow = 500 * time.Millisecond

// FailedBanner is shown when a probe fails.
var FailedBanner = navigation.Banner{
	Title:    "Couldn't complete the search",
	Subtitle: "Try again later",
	Style:    navigation.BannerError,
}

// Prober runs a search. unsplash.Repository implements it.
type Prober interface {
	SearchAsync(ctx context.Context, q unsplash.Query, page, perPage int, completion func(unsplash.SearchResult, error)) network.Cancellable
}

// Responder receives navigation requests from the search screen.
type Responder interface {
	RouteToSearchResults(q unsplash.Query)
}

// SearchBar is the text field the coordinator writes back to when a recent
// query is selected.
type SearchBar interface {
	SetText(text string)
}

// State is everything the search screen renders.
type State struct {
	Button  ButtonState
	Groups  []unsplash.FilterGroup
	Recents []RecentQuery
}

// Deps are the collaborators of a Coordinator. Banners, Responders and
// SearchBar may be nil.
type Deps struct {
	Prober  Prober
	Recents *RecentQueries

	// Queue receives recent-query updates and store write results
	Queue dispatch.Queue

	// Scheduler runs the debounce timer; defaults to a QueueScheduler on
	// Queue
	Scheduler dispatch.Scheduler

	Banners    navigation.BannerPresenter
	Responders *navigation.Registry[Responder]
	SearchBar  SearchBar
}

// Coordinator drives one search screen.
type Coordinator struct {
	ctx        context.Context
	prober     Prober
	recents    *RecentQueries
	queue      dispatch.Queue
	banners    navigation.BannerPresenter
	responders *navigation.Registry[Responder]
	responder  navigation.ID
	searchBar  SearchBar
	logger     zerolog.Logger

	builder     *unsplash.QueryBuilder
	debouncer   *dispatch.Debouncer[unsplash.Query]
	currentText string
	task        network.Cancellable
	probeSeq    uint64
	probes      int

	state    State
	onChange func(State)
}

// New creates a coordinator with the default filters selected.
func New(ctx context.Context, deps Deps) *Coordinator {
	if deps.Scheduler == nil {
		deps.Scheduler = dispatch.QueueScheduler{Queue: deps.Queue}
	}
	if deps.Banners == nil {
		deps.Banners = navigation.BannerFunc(func(navigation.Banner) {})
	}
	if deps.Responders == nil {
		deps.Responders = navigation.NewRegistry[Responder]()
	}

	c := &Coordinator{
		ctx:        ctx,
		prober:     deps.Prober,
		recents:    deps.Recents,
		queue:      deps.Queue,
		banners:    deps.Banners,
		responders: deps.Responders,
		searchBar:  deps.SearchBar,
		logger:     log.With().Str("component", "search").Logger(),
		builder:    unsplash.NewQueryBuilder(),
	}
	c.debouncer = dispatch.NewDebouncer(DebounceWindow, deps.Scheduler, c.probe)
	c.state = State{
		Button: ButtonState{Kind: ButtonHidden},
		Groups: unsplash.FilterGroups(c.builder.Build()),
	}
	return c
}

// Start follows the recent-queries store until ctx is done.
func (c *Coordinator) Start() {
	if c.recents == nil {
		return
	}
	updates := c.recents.Observe(c.ctx)
	go func() {
		for recents := range updates {
			c.queue.Async(func() {
				c.state.Recents = recents
				c.publish()
			})
		}
	}()
}

// SetResponder selects the registered responder for navigation.
func (c *Coordinator) SetResponder(id navigation.ID) { c.responder = id }

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

// Query returns the query the next submit would run.
func (c *Coordinator) Query() unsplash.Query { return c.builder.Build() }

// Probes returns how many probes were dispatched.
func (c *Coordinator) Probes() int { return c.probes }

// TextChanged records the search text and schedules a probe.
func (c *Coordinator) TextChanged(text string) {
	c.currentText = text
	c.enqueue(c.builder.Text(text).Build())
}

// SelectFilter changes one filter category and schedules a probe.
func (c *Coordinator) SelectFilter(f unsplash.Filter) {
	q := c.builder.Filter(f).Build()
	c.enqueue(q)
	c.state.Groups = unsplash.FilterGroups(q)
	c.publish()
}

// SelectRecent loads a recent query into the screen and opens its results.
func (c *Coordinator) SelectRecent(id string) {
	var recent *RecentQuery
	for i := range c.state.Recents {
		if c.state.Recents[i].ID == id {
			recent = &c.state.Recents[i]
			break
		}
	}
	if recent == nil {
		return
	}

	q := c.builder.Query(recent.Query).Build()
	c.currentText = q.Text
	c.enqueue(q)

	if c.searchBar != nil {
		c.searchBar.SetText(q.Text)
	}
	c.state.Groups = unsplash.FilterGroups(q)
	c.publish()

	c.route(q)
	c.write("touch", func(ctx context.Context) error { return c.recents.Touch(ctx, id) })
}

// DeleteRecent removes a recent query.
func (c *Coordinator) DeleteRecent(id string) {
	c.write("delete", func(ctx context.Context) error { return c.recents.Delete(ctx, id) })
}

// Submit opens the results for the current query and records it. It
// bypasses the probe pipeline. Empty text does nothing.
func (c *Coordinator) Submit() {
	q := c.builder.Build()
	if q.Text == "" {
		return
	}
	c.route(q)
	c.write("create", func(ctx context.Context) error {
		_, err := c.recents.Create(ctx, q)
		return err
	})
}

// Close cancels the pending probe and the one in flight.
func (c *Coordinator) Close() {
	c.debouncer.Cancel()
	c.cancelProbe()
}

func (c *Coordinator) enqueue(q unsplash.Query) {
	if q.Text == "" {
		c.debouncer.Cancel()
		c.cancelProbe()
		c.setButton(ButtonState{Kind: ButtonHidden})
		return
	}
	c.debouncer.Push(q)
}

func (c *Coordinator) probe(q unsplash.Query) {
	if q.Text == "" {
		c.cancelProbe()
		c.setButton(ButtonState{Kind: ButtonHidden})
		return
	}
	if q.Text != c.currentText {
		c.logger.Debug().Str("text", q.Text).Str("current", c.currentText).Msg("Skipping stale probe")
		return
	}

	c.cancelProbe()
	c.setButton(ButtonState{Kind: ButtonLoading})
	c.probes++
	c.logger.Debug().Str("text", q.Text).Msg("Probing result count")

	seq := c.probeSeq
	task := c.prober.SearchAsync(c.ctx, q, 1, 1, func(result unsplash.SearchResult, err error) {
		if seq != c.probeSeq || q.Text != c.currentText {
			c.logger.Debug().Str("text", q.Text).Uint64("seq", seq).Msg("Discarding stale probe result")
			return
		}
		if network.IsCancelled(err) {
			return
		}
		c.task = nil

		if err != nil {
			c.logger.Warn().Err(err).Str("text", q.Text).Msg("Probe failed")
			c.banners.PresentBanner(FailedBanner)
			c.setButton(ButtonState{Kind: ButtonHidden})
			return
		}
		c.setButton(Results(result.Total))
	})
	// A build failure completes synchronously and leaves nothing to cancel.
	if seq == c.probeSeq && c.state.Button.Kind == ButtonLoading {
		c.task = task
	}
}

// cancelProbe cancels the probe in flight and invalidates every completion
// dispatched before it.
func (c *Coordinator) cancelProbe() {
	c.probeSeq++
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
}

func (c *Coordinator) route(q unsplash.Query) {
	c.responders.Do(c.responder, func(r Responder) { r.RouteToSearchResults(q) })
}

// write runs a recent-queries mutation off the queue; the store's
// observation brings the result back.
func (c *Coordinator) write(op string, fn func(ctx context.Context) error) {
	if c.recents == nil {
		return
	}
	go func() {
		if err := fn(c.ctx); err != nil {
			c.logger.Warn().Err(err).Str("operation", op).Msg("Recent query update failed")
		}
	}()
}

func (c *Coordinator) setButton(b ButtonState) {
	c.state.Button = b
	c.publish()
}

func (c *Coordinator) publish() {
	if c.onChange != nil {
		c.onChange(c.state)
	}
}
