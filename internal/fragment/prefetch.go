package fragment

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kattalitextile/sitekit/internal/logging"
)

// Prefetcher proactively loads fragments before the user asks for them.
// Failures are swallowed and logged; they never surface to a navigation.
// Membership in the prefetch set is monotonic.
type Prefetcher struct {
	loader *Loader
	logger logging.Logger
	group  singleflight.Group

	fetched map[string]bool
	mutex   sync.Mutex
}

// NewPrefetcher creates a prefetcher over the given loader.
func NewPrefetcher(loader *Loader, logger logging.Logger) *Prefetcher {
	return &Prefetcher{
		loader:  loader,
		logger:  logger.WithComponent("prefetch"),
		fetched: make(map[string]bool),
	}
}

// Prefetch loads a fragment into the cache, best effort. Repeated calls for
// the same page id are deduplicated: the set skips pages already fetched, and
// singleflight collapses concurrent in-flight attempts into one fetch. A
// failed prefetch does not join the set, so a later hint may retry.
func (p *Prefetcher) Prefetch(ctx context.Context, pageID string) {
	p.mutex.Lock()
	done := p.fetched[pageID]
	p.mutex.Unlock()
	if done {
		return
	}

	_, err, _ := p.group.Do(pageID, func() (interface{}, error) {
		return p.loader.Get(ctx, pageID)
	})
	if err != nil {
		p.logger.Debug(ctx, "prefetch failed", "page", pageID, "reason", err.Error())
		return
	}

	p.mutex.Lock()
	p.fetched[pageID] = true
	p.mutex.Unlock()
}

// Hint is the hover-driven entry point: fire-and-forget in its own goroutine.
func (p *Prefetcher) Hint(ctx context.Context, pageID string) {
	go p.Prefetch(ctx, pageID)
}

// Warm prefetches the critical pages after the configured delay. It blocks
// until the pages are fetched or the context is cancelled, so callers run
// it in a goroutine.
func (p *Prefetcher) Warm(ctx context.Context, delay time.Duration, pages []string) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}

	for _, pageID := range pages {
		if ctx.Err() != nil {
			return
		}
		p.Prefetch(ctx, pageID)
	}

	p.logger.Info(ctx, "critical pages warmed", "count", len(pages))
}

// Fetched reports whether a page id has been successfully prefetched.
func (p *Prefetcher) Fetched(pageID string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.fetched[pageID]
}
