package analytics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kattalitextile/sitekit/internal/logging"
)

func TestHTTPTrackerPayload(t *testing.T) {
	var got PageView
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tracker := NewHTTPTracker(srv.URL, time.Second, logging.NewTestLogger())

	err := tracker.PageView(context.Background(), PageView{
		PageTitle: "About Us | Kattali Textile Ltd.",
		PageURL:   "/#about",
	})
	require.NoError(t, err)

	assert.Equal(t, "About Us | Kattali Textile Ltd.", got.PageTitle)
	assert.Equal(t, "/#about", got.PageURL)
}

func TestHTTPTrackerStatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tracker := NewHTTPTracker(srv.URL, time.Second, logging.NewTestLogger())

	err := tracker.PageView(context.Background(), PageView{PageTitle: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNoopTracker(t *testing.T) {
	assert.NoError(t, Noop{}.PageView(context.Background(), PageView{}))
}
