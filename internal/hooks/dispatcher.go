package hooks

import (
	"context"
	"fmt"

	"github.com/kattalitextile/sitekit/internal/errors"
	"github.com/kattalitextile/sitekit/internal/logging"
)

// Hook activates page behavior against the mounted region.
type Hook interface {
	// Name identifies the hook in logs.
	Name() string
	// Activate annotates the region for the given page. Returning an error
	// marks the hook as failed; it never fails the navigation.
	Activate(ctx context.Context, pageID string, region *Region) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc struct {
	HookName string
	Fn       func(ctx context.Context, pageID string, region *Region) error
}

// Name identifies the hook.
func (h HookFunc) Name() string { return h.HookName }

// Activate invokes the wrapped function.
func (h HookFunc) Activate(ctx context.Context, pageID string, region *Region) error {
	return h.Fn(ctx, pageID, region)
}

// noopHook is the explicit default for pages with no registered hook.
type noopHook struct{}

func (noopHook) Name() string { return "noop" }
func (noopHook) Activate(ctx context.Context, pageID string, region *Region) error {
	return nil
}

// Dispatcher runs per-page hooks from a lookup table keyed by page id plus a
// set of hooks that run unconditionally on every page.
type Dispatcher struct {
	perPage       map[string]Hook
	unconditional []Hook
	fallback      Hook
	logger        logging.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		perPage:  make(map[string]Hook),
		fallback: noopHook{},
		logger:   logger.WithComponent("hooks"),
	}
}

// RegisterPage installs the hook for a page id, replacing any previous one.
func (d *Dispatcher) RegisterPage(pageID string, hook Hook) {
	d.perPage[pageID] = hook
}

// RegisterAlways installs a hook that runs on every page, in registration
// order, before the per-page hook.
func (d *Dispatcher) RegisterAlways(hook Hook) {
	d.unconditional = append(d.unconditional, hook)
}

// Activate parses the markup, runs the unconditional hooks and then the page
// hook, and returns the annotated markup. Hook errors and panics are logged
// and swallowed: whatever annotations landed before the failure are kept.
// If the markup does not re-render, the original markup is returned.
func (d *Dispatcher) Activate(ctx context.Context, pageID, markup string) string {
	region, err := ParseRegion(markup)
	if err != nil {
		d.logger.Warn(ctx, err, "fragment did not parse, skipping hooks", "page", pageID)
		return markup
	}

	for _, hook := range d.unconditional {
		d.run(ctx, hook, pageID, region)
	}

	pageHook, exists := d.perPage[pageID]
	if !exists {
		pageHook = d.fallback
	}
	d.run(ctx, pageHook, pageID, region)

	rendered, err := region.Render()
	if err != nil {
		d.logger.Warn(ctx, err, "activated region did not render", "page", pageID)
		return markup
	}

	return rendered
}

// run executes one hook with panic isolation.
func (d *Dispatcher) run(ctx context.Context, hook Hook, pageID string, region *Region) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.NewHookError("E_PANIC", fmt.Sprintf("hook panicked: %v", r), nil).WithPage(pageID)
			d.logger.Error(ctx, err, "hook panic isolated", "hook", hook.Name())
		}
	}()

	if err := hook.Activate(ctx, pageID, region); err != nil {
		d.logger.Warn(ctx, err, "hook failed", "hook", hook.Name(), "page", pageID)
	}
}
