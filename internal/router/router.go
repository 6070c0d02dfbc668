// Package router owns navigation state and drives the load/render/activate
// sequence for page changes.
//
// All navigation surfaces (programmatic calls, hash changes, history
// traversal) funnel into Navigate; there are no separate code paths. The
// state machine is Idle -> Loading -> Rendering -> Idle, with no error
// state: failures are handled inside a navigation attempt and the router
// always returns to Idle, usable for the next navigation.
package router

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kattalitextile/sitekit/internal/analytics"
	"github.com/kattalitextile/sitekit/internal/config"
	"github.com/kattalitextile/sitekit/internal/errors"
	"github.com/kattalitextile/sitekit/internal/fragment"
	"github.com/kattalitextile/sitekit/internal/hooks"
	"github.com/kattalitextile/sitekit/internal/logging"
	"github.com/kattalitextile/sitekit/internal/render"
	"github.com/kattalitextile/sitekit/internal/routes"
)

// State is the router's position in the navigation lifecycle.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateRendering
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Router drives navigations against a render surface.
type Router struct {
	cfg        *config.Config
	table      *routes.Table
	loader     *fragment.Loader
	prefetcher *fragment.Prefetcher
	sequencer  *render.Sequencer
	dispatcher *hooks.Dispatcher
	tracker    analytics.Tracker
	surface    render.Surface
	logger     logging.Logger

	mutex   sync.RWMutex
	current string // page id of the most recently successfully rendered route

	state State
	seq   uint64 // monotonic navigation sequence; stale completions are discarded
}

// New creates a router. The surface is the mount point every navigation
// renders into.
func New(
	cfg *config.Config,
	table *routes.Table,
	loader *fragment.Loader,
	prefetcher *fragment.Prefetcher,
	sequencer *render.Sequencer,
	dispatcher *hooks.Dispatcher,
	tracker analytics.Tracker,
	surface render.Surface,
	logger logging.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		table:      table,
		loader:     loader,
		prefetcher: prefetcher,
		sequencer:  sequencer,
		dispatcher: dispatcher,
		tracker:    tracker,
		surface:    surface,
		logger:     logger.WithComponent("router"),
	}
}

// Start launches background work: warming the critical pages after the
// configured delay. It returns immediately.
func (r *Router) Start(ctx context.Context) {
	if r.cfg.Prefetch.Enabled && r.prefetcher != nil {
		go r.prefetcher.Warm(ctx, r.cfg.Prefetch.WarmupDelay, r.cfg.Prefetch.CriticalPages)
	}
}

// CurrentPageID returns the page id of the most recently rendered route, or
// an empty string before the first navigation.
func (r *Router) CurrentPageID() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.current
}

// State returns the router's current lifecycle state.
func (r *Router) State() State {
	return State(atomic.LoadInt32((*int32)(&r.state)))
}

func (r *Router) setState(s State) {
	atomic.StoreInt32((*int32)(&r.state), int32(s))
}

// Hint prefetches the fragment for a path, fire-and-forget. Used when the
// pointer hovers a navigation link.
func (r *Router) Hint(ctx context.Context, path string) {
	if !r.cfg.Prefetch.Enabled || r.prefetcher == nil {
		return
	}

	route, exists := r.table.Lookup(path)
	if !exists {
		return
	}
	r.prefetcher.Hint(ctx, route.PageID)
}

// Navigate resolves a path and renders its page. Re-navigation to the
// current page is a no-op: no fetch, no render, no title change. Errors are
// handled inside the attempt: the surface always ends up showing some
// content, the loading indicator is cleared, and the router returns to Idle.
// The returned error is for observability only.
func (r *Router) Navigate(ctx context.Context, path string) error {
	route := r.table.Resolve(path)

	r.mutex.RLock()
	current := r.current
	r.mutex.RUnlock()
	if current == route.PageID {
		r.logger.Debug(ctx, "already on page, skipping navigation", "page", route.PageID)
		return nil
	}

	seq := atomic.AddUint64(&r.seq, 1)

	r.surface.SetLoading(true)
	defer r.surface.SetLoading(false)

	err := r.loadRoute(ctx, seq, route)
	r.setState(StateIdle)

	if err != nil {
		r.logger.Error(ctx, err, "navigation failed", "page", route.PageID)
		r.surface.Replace(fragment.ErrorFragment())
		r.table.Announce(routes.EventTypeFailed, route)
	}

	return err
}

// loadRoute runs the load -> title -> transition -> state -> hooks sequence
// for one navigation attempt.
func (r *Router) loadRoute(ctx context.Context, seq uint64, route routes.Route) error {
	r.setState(StateLoading)

	markup, fetchErr := r.loader.Get(ctx, route.PageID)
	if fetchErr != nil && !errors.IsRecoverable(fetchErr) {
		return fetchErr
	}
	// A recoverable fetch failure leaves fallback markup in hand; the
	// navigation still completes with it.

	if r.isStale(seq) {
		r.logger.Debug(ctx, "navigation superseded, discarding", "page", route.PageID)
		return nil
	}

	title := r.cfg.PageTitle(route.Title)
	r.surface.SetTitle(title)
	r.surface.SetActiveLink(route.PageID)

	r.setState(StateRendering)
	if err := r.sequencer.Swap(ctx, r.surface, markup); err != nil {
		return err
	}

	if r.isStale(seq) {
		r.logger.Debug(ctx, "navigation superseded after render", "page", route.PageID)
		return nil
	}

	r.mutex.Lock()
	r.current = route.PageID
	r.mutex.Unlock()

	activated := r.dispatcher.Activate(ctx, route.PageID, markup)
	if activated != markup {
		r.surface.Replace(activated)
	}

	r.table.Announce(routes.EventTypeNavigated, route)
	r.trackPageView(ctx, route, title)

	r.logger.Info(ctx, "navigated", "page", route.PageID, "fallback", fetchErr != nil)

	return nil
}

// isStale reports whether a newer navigation has started since seq.
func (r *Router) isStale(seq uint64) bool {
	return atomic.LoadUint64(&r.seq) != seq
}

func (r *Router) trackPageView(ctx context.Context, route routes.Route, title string) {
	if !r.cfg.Analytics.Enabled || r.tracker == nil {
		return
	}

	view := analytics.PageView{
		PageTitle: title,
		PageURL:   "/#" + route.Path,
	}
	if err := r.tracker.PageView(ctx, view); err != nil {
		r.logger.Warn(ctx, err, "page view not reported", "page", route.PageID)
	}
}
