package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheGetMiss(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Get("about")
	assert.False(t, ok)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCacheSetAndGet(t *testing.T) {
	cache := NewCache()
	cache.Set("about", "<h1>About</h1>")

	markup, ok := cache.Get("about")
	assert.True(t, ok)
	assert.Equal(t, "<h1>About</h1>", markup)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(0), misses)
}

func TestCacheFirstWriteWins(t *testing.T) {
	cache := NewCache()
	cache.Set("about", "original")
	cache.Set("about", "replacement")

	markup, _ := cache.Get("about")
	assert.Equal(t, "original", markup)
}

func TestCacheSecondGetIdentical(t *testing.T) {
	cache := NewCache()
	cache.Set("news", "<article>one</article>")

	first, _ := cache.Get("news")
	second, _ := cache.Get("news")
	assert.Equal(t, first, second)
}

func TestCacheContainsDoesNotCountStats(t *testing.T) {
	cache := NewCache()
	cache.Set("home", "x")

	assert.True(t, cache.Contains("home"))
	assert.False(t, cache.Contains("about"))

	hits, misses := cache.Stats()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(0), misses)
}

func TestCachePageIDs(t *testing.T) {
	cache := NewCache()
	cache.Set("home", "a")
	cache.Set("about", "b")

	assert.Equal(t, 2, cache.Len())
	assert.ElementsMatch(t, []string{"home", "about"}, cache.PageIDs())
}
