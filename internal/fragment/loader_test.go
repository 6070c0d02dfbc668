package fragment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kattalitextile/sitekit/internal/errors"
	"github.com/kattalitextile/sitekit/internal/logging"
)

func newTestServer(t *testing.T, fetches *int64, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(fetches, 1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestLoaderFetchesOnceThenCaches(t *testing.T) {
	var fetches int64
	srv := newTestServer(t, &fetches, http.StatusOK, "<h1>About</h1>")

	loader := NewLoader(NewCache(), NewHTTPSource(srv.URL, nil), logging.NewTestLogger())

	ctx := context.Background()
	first, err := loader.Get(ctx, "about")
	require.NoError(t, err)
	second, err := loader.Get(ctx, "about")
	require.NoError(t, err)

	assert.Equal(t, "<h1>About</h1>", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&fetches))
}

func TestLoaderFallbackOnServerError(t *testing.T) {
	var fetches int64
	srv := newTestServer(t, &fetches, http.StatusInternalServerError, "boom")

	loader := NewLoader(NewCache(), NewHTTPSource(srv.URL, nil), logging.NewTestLogger())

	markup, err := loader.Get(context.Background(), "news")
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
	assert.Contains(t, markup, "Content Unavailable")
	assert.Contains(t, markup, "News")

	// Failures are not cached, so the next Get retries the fetch.
	assert.False(t, loader.Cache().Contains("news"))
	loader.Get(context.Background(), "news")
	assert.Equal(t, int64(2), atomic.LoadInt64(&fetches))
}

func TestLoaderFallbackOnNetworkError(t *testing.T) {
	loader := NewLoader(NewCache(), NewHTTPSource("http://127.0.0.1:1", nil), logging.NewTestLogger())

	markup, err := loader.Get(context.Background(), "contact")
	require.Error(t, err)
	assert.Contains(t, markup, "Content Unavailable")
}

func TestFallbackTitleCasesPageID(t *testing.T) {
	loader := NewLoader(NewCache(), NewDirSource(t.TempDir()), logging.NewTestLogger())

	markup := loader.Fallback("investor-relations")
	assert.Contains(t, markup, "Investor Relations")
	assert.Contains(t, markup, `data-page="investor-relations"`)
}

func TestValidatePageID(t *testing.T) {
	assert.NoError(t, ValidatePageID("about"))
	assert.NoError(t, ValidatePageID("investor-relations"))
	assert.Error(t, ValidatePageID(""))
	assert.Error(t, ValidatePageID("../etc/passwd"))
	assert.Error(t, ValidatePageID("About"))
	assert.Error(t, ValidatePageID("a/b"))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "about.html", "<h1>About</h1>")

	source := NewDirSource(dir)

	markup, err := source.Fetch(context.Background(), "about")
	require.NoError(t, err)
	assert.Equal(t, "<h1>About</h1>", markup)

	_, err = source.Fetch(context.Background(), "missing")
	assert.True(t, errors.IsFetchError(err))
}

func TestHTTPSourceStatusFailure(t *testing.T) {
	var fetches int64
	srv := newTestServer(t, &fetches, http.StatusNotFound, "not here")

	source := NewHTTPSource(srv.URL, nil)

	_, err := source.Fetch(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
	assert.Contains(t, err.Error(), "404")
}
