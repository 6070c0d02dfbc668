package fragment

import (
	"context"
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kattalitextile/sitekit/internal/logging"
)

// Loader resolves page ids to markup through the cache, falling back to a
// generated "Content Unavailable" fragment when the source fails. Navigation
// always completes with some content.
type Loader struct {
	cache  *Cache
	source Source
	logger logging.Logger
	titler cases.Caser
}

// NewLoader creates a fragment loader.
func NewLoader(cache *Cache, source Source, logger logging.Logger) *Loader {
	return &Loader{
		cache:  cache,
		source: source,
		logger: logger.WithComponent("fragment"),
		titler: cases.Title(language.English),
	}
}

// Get returns the markup for a page id. Cache hits return without touching
// the source. On a miss the fragment is fetched and cached. Fetch failures
// are logged and produce a fallback fragment that is NOT cached, so a later
// navigation retries the fetch.
func (l *Loader) Get(ctx context.Context, pageID string) (string, error) {
	if markup, ok := l.cache.Get(pageID); ok {
		return markup, nil
	}

	markup, err := l.source.Fetch(ctx, pageID)
	if err != nil {
		l.logger.Warn(ctx, err, "fragment unavailable, serving fallback", "page", pageID)
		return l.Fallback(pageID), err
	}

	l.cache.Set(pageID, markup)

	return markup, nil
}

// Fallback generates the "Content Unavailable" fragment for a page.
func (l *Loader) Fallback(pageID string) string {
	label := l.titler.String(strings.ReplaceAll(pageID, "-", " "))

	return fmt.Sprintf(`<section class="content-unavailable" data-page="%s">
  <h1 tabindex="-1">Content Unavailable</h1>
  <p>The %s page could not be loaded right now. Please try again in a moment.</p>
</section>`, html.EscapeString(pageID), html.EscapeString(label))
}

// ErrorFragment generates the generic fragment shown when a navigation fails
// for a reason other than a fragment fetch.
func ErrorFragment() string {
	return `<section class="navigation-error">
  <h1 tabindex="-1">Something Went Wrong</h1>
  <p>We could not display this page. Please try again.</p>
</section>`
}

// Cache exposes the loader's cache for inspection.
func (l *Loader) Cache() *Cache {
	return l.cache
}
