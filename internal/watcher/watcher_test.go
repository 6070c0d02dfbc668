package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kattalitextile/sitekit/internal/logging"
)

func TestFilters(t *testing.T) {
	assert.True(t, SiteAssetFilter("partials/about.html"))
	assert.True(t, SiteAssetFilter("css/site.css"))
	assert.True(t, SiteAssetFilter("js/app.js"))
	assert.False(t, SiteAssetFilter("notes.txt"))
	assert.False(t, SiteAssetFilter("archive.tar.gz"))

	assert.True(t, NoHiddenFilter("partials/about.html"))
	assert.False(t, NoHiddenFilter(".git/config"))
	assert.False(t, NoHiddenFilter("web/.cache/x.html"))
	assert.True(t, NoHiddenFilter("./partials/about.html"))
}

func TestWatcherReportsDebouncedChanges(t *testing.T) {
	dir := t.TempDir()

	logger := logging.NewTestLogger()
	w, err := New(30*time.Millisecond, logger)
	require.NoError(t, err)
	defer w.Stop()

	w.AddFilter(SiteAssetFilter)

	var mutex sync.Mutex
	var batches [][]Change
	w.AddHandler(func(changes []Change) {
		mutex.Lock()
		defer mutex.Unlock()
		batches = append(batches, changes)
	})

	require.NoError(t, w.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	path := filepath.Join(dir, "about.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>a</h1>"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("<h1>b</h1>"), 0o644))

	assert.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(batches) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	mutex.Lock()
	defer mutex.Unlock()

	// Two rapid writes to one file arrive as one deduplicated batch.
	require.NotEmpty(t, batches)
	assert.Len(t, batches[0], 1)
	assert.Equal(t, path, batches[0][0].Path)
}

func TestWatcherIgnoresFilteredFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(20*time.Millisecond, logging.NewTestLogger())
	require.NoError(t, err)
	defer w.Stop()

	w.AddFilter(SiteAssetFilter)

	var mutex sync.Mutex
	seen := 0
	w.AddHandler(func(changes []Change) {
		mutex.Lock()
		defer mutex.Unlock()
		seen += len(changes)
	})

	require.NoError(t, w.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(100 * time.Millisecond)

	mutex.Lock()
	defer mutex.Unlock()
	assert.Zero(t, seen)
}
