// Package analytics reports page views to an external tracker.
//
// The router reports only successful navigations, and only when analytics is
// enabled in configuration. Tracker errors are logged and never surfaced to
// the navigation.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kattalitextile/sitekit/internal/logging"
)

// PageView is the payload reported for a successful navigation.
type PageView struct {
	PageTitle string `json:"page_title"`
	PageURL   string `json:"page_url"`
}

// Tracker reports page views.
type Tracker interface {
	PageView(ctx context.Context, view PageView) error
}

// Noop is the tracker used when analytics is disabled.
type Noop struct{}

// PageView does nothing.
func (Noop) PageView(ctx context.Context, view PageView) error { return nil }

// HTTPTracker POSTs page views as JSON to a collection endpoint.
type HTTPTracker struct {
	endpoint string
	client   *http.Client
	logger   logging.Logger
}

// NewHTTPTracker creates a tracker for the given endpoint.
func NewHTTPTracker(endpoint string, timeout time.Duration, logger logging.Logger) *HTTPTracker {
	return &HTTPTracker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.WithComponent("analytics"),
	}
}

// PageView reports one page view. Failures are returned for the caller to
// log; they carry no navigation consequence.
func (t *HTTPTracker) PageView(ctx context.Context, view PageView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encoding page view: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building page view request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting page view: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}

	t.logger.Debug(ctx, "page view reported", "title", view.PageTitle)

	return nil
}
