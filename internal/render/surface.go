// Package render provides the render surface abstraction and the transition
// sequencer that swaps page content.
//
// The surface is the explicit stand-in for the DOM mount point: the router
// drives it through a narrow interface, which keeps every navigation path
// testable without a browser. The in-memory Document implementation also
// backs the dev server's page snapshot endpoint.
package render

import (
	"context"
	"sync"
)

// Phase is the visibility state of the surface during a transition.
type Phase int

const (
	PhaseVisible Phase = iota
	PhaseFadedOut
)

// Surface is the mount point the router renders into.
type Surface interface {
	// SetLoading toggles the loading indicator.
	SetLoading(visible bool)
	// SetTitle sets the document title.
	SetTitle(title string)
	// SetActiveLink marks the navigation link for a page as active.
	SetActiveLink(pageID string)
	// BeginTransition fades the content region out.
	BeginTransition(ctx context.Context) error
	// Replace swaps the content region's markup.
	Replace(markup string)
	// EndTransition fades the content region back in.
	EndTransition(ctx context.Context) error
	// AnimateOnLoad starts the staggered entrance animation for an element.
	AnimateOnLoad(index int)
	// FocusHeading moves keyboard focus to the first heading of the new
	// content, so focus never rests on a removed element.
	FocusHeading(heading string)
}

// Document is an in-memory Surface. It records every operation in order so
// tests and the snapshot endpoint can inspect the exact sequence a
// navigation performed.
type Document struct {
	mutex      sync.RWMutex
	title      string
	markup     string
	activeLink string
	loading    bool
	phase      Phase
	focused    string
	animated   int
	journal    []string
}

// NewDocument creates an empty document surface.
func NewDocument() *Document {
	return &Document{phase: PhaseVisible}
}

// SetLoading toggles the loading indicator.
func (d *Document) SetLoading(visible bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.loading = visible
	if visible {
		d.journal = append(d.journal, "loading:on")
	} else {
		d.journal = append(d.journal, "loading:off")
	}
}

// SetTitle sets the document title.
func (d *Document) SetTitle(title string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.title = title
	d.journal = append(d.journal, "title:"+title)
}

// SetActiveLink marks the active navigation link.
func (d *Document) SetActiveLink(pageID string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.activeLink = pageID
	d.journal = append(d.journal, "active:"+pageID)
}

// BeginTransition fades the content out.
func (d *Document) BeginTransition(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.phase = PhaseFadedOut
	d.journal = append(d.journal, "fade-out")
	return nil
}

// Replace swaps the content markup.
func (d *Document) Replace(markup string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.markup = markup
	d.journal = append(d.journal, "replace")
}

// EndTransition fades the content back in.
func (d *Document) EndTransition(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.phase = PhaseVisible
	d.journal = append(d.journal, "fade-in")
	return nil
}

// AnimateOnLoad records a staggered entrance animation start.
func (d *Document) AnimateOnLoad(index int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.animated++
}

// FocusHeading moves focus to a heading.
func (d *Document) FocusHeading(heading string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.focused = heading
	d.journal = append(d.journal, "focus:"+heading)
}

// Title returns the current document title.
func (d *Document) Title() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.title
}

// Markup returns the current content markup.
func (d *Document) Markup() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.markup
}

// ActiveLink returns the active navigation link page id.
func (d *Document) ActiveLink() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.activeLink
}

// Loading reports whether the loading indicator is visible.
func (d *Document) Loading() bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.loading
}

// CurrentPhase returns the surface's visibility phase.
func (d *Document) CurrentPhase() Phase {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.phase
}

// Focused returns the text of the focused heading.
func (d *Document) Focused() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.focused
}

// Animated returns the number of elements whose entrance animation started.
func (d *Document) Animated() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.animated
}

// Journal returns the ordered operation log.
func (d *Document) Journal() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	result := make([]string, len(d.journal))
	copy(result, d.journal)
	return result
}
