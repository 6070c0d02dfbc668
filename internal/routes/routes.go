// Package routes provides the static route table mapping URL paths to page
// descriptors.
//
// The table is built once at startup and is read-only afterwards. Unknown
// paths resolve to the default (home) route rather than raising an error;
// this is a deliberate default-route policy. Subscribers can observe
// navigation events through buffered watcher channels.
package routes

import (
	"strings"
	"sync"
	"time"
)

// Route is an immutable page descriptor.
type Route struct {
	Path   string `json:"path" yaml:"path"`
	PageID string `json:"page_id" yaml:"page_id"`
	Title  string `json:"title" yaml:"title"`
}

// NavigationEvent records a completed resolution or navigation against the
// table.
type NavigationEvent struct {
	Type      EventType
	Route     Route
	Timestamp time.Time
}

// EventType represents the type of navigation event.
type EventType int

const (
	EventTypeResolved EventType = iota
	EventTypeNavigated
	EventTypeFailed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeResolved:
		return "resolved"
	case EventTypeNavigated:
		return "navigated"
	case EventTypeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Table is the ordered route table. Lookup is by normalized path; the empty
// path and the default page id both resolve to the default route.
type Table struct {
	byPath      map[string]Route
	ordered     []Route
	defaultPage string
	mutex       sync.RWMutex
	watchers    []chan NavigationEvent
}

// NewTable builds a table from a static route set. The defaultPage must be
// the PageID of one of the given routes.
func NewTable(defaultPage string, rs []Route) *Table {
	t := &Table{
		byPath:      make(map[string]Route, len(rs)),
		ordered:     make([]Route, 0, len(rs)),
		defaultPage: defaultPage,
		watchers:    make([]chan NavigationEvent, 0),
	}

	for _, r := range rs {
		if _, exists := t.byPath[r.Path]; exists {
			continue
		}
		t.byPath[r.Path] = r
		t.ordered = append(t.ordered, r)
	}

	return t
}

// DefaultSite returns the route table for the Kattali Textile Ltd. site.
func DefaultSite() *Table {
	return NewTable("home", []Route{
		{Path: "home", PageID: "home", Title: "Home"},
		{Path: "about", PageID: "about", Title: "About Us"},
		{Path: "products", PageID: "products", Title: "Products"},
		{Path: "sustainability", PageID: "sustainability", Title: "Sustainability"},
		{Path: "investors", PageID: "investors", Title: "Investor Relations"},
		{Path: "news", PageID: "news", Title: "News & Media"},
		{Path: "careers", PageID: "careers", Title: "Careers"},
		{Path: "rfq", PageID: "rfq", Title: "Request a Quote"},
		{Path: "contact", PageID: "contact", Title: "Contact"},
	})
}

// Normalize strips leading slashes and hash prefixes from a raw path, in any
// combination ("#/about", "//about", "#about"). An empty result means the
// default route.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	for {
		trimmed := strings.TrimLeft(strings.TrimPrefix(path, "#"), "/")
		if trimmed == path {
			return path
		}
		path = trimmed
	}
}

// Resolve maps a raw path to a route. Unknown paths fall back to the default
// route; this never fails.
func (t *Table) Resolve(path string) Route {
	normalized := Normalize(path)
	if normalized == "" {
		normalized = t.defaultPage
	}

	t.mutex.RLock()
	route, exists := t.byPath[normalized]
	if !exists {
		route = t.byPath[t.defaultPage]
	}
	t.mutex.RUnlock()

	t.notify(NavigationEvent{Type: EventTypeResolved, Route: route, Timestamp: time.Now()})

	return route
}

// Lookup returns the route registered for an exact path, without the
// default-route fallback.
func (t *Table) Lookup(path string) (Route, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	route, exists := t.byPath[Normalize(path)]
	return route, exists
}

// Default returns the default route.
func (t *Table) Default() Route {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.byPath[t.defaultPage]
}

// All returns the routes in registration order.
func (t *Table) All() []Route {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	result := make([]Route, len(t.ordered))
	copy(result, t.ordered)
	return result
}

// PageIDs returns the distinct page ids in registration order.
func (t *Table) PageIDs() []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	ids := make([]string, 0, len(t.ordered))
	seen := make(map[string]bool, len(t.ordered))
	for _, r := range t.ordered {
		if seen[r.PageID] {
			continue
		}
		seen[r.PageID] = true
		ids = append(ids, r.PageID)
	}
	return ids
}

// Count returns the number of registered routes.
func (t *Table) Count() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return len(t.ordered)
}

// Announce publishes a navigation outcome to watchers. The router calls this
// after a navigation settles.
func (t *Table) Announce(eventType EventType, route Route) {
	t.notify(NavigationEvent{Type: eventType, Route: route, Timestamp: time.Now()})
}

// Watch returns a channel that receives navigation events.
func (t *Table) Watch() <-chan NavigationEvent {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	ch := make(chan NavigationEvent, 100)
	t.watchers = append(t.watchers, ch)
	return ch
}

// Unwatch removes a watcher channel and closes it.
func (t *Table) Unwatch(ch <-chan NavigationEvent) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for i, watcher := range t.watchers {
		if watcher == ch {
			close(watcher)
			t.watchers = append(t.watchers[:i], t.watchers[i+1:]...)
			break
		}
	}
}

func (t *Table) notify(event NavigationEvent) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for _, watcher := range t.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
