package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kattalitextile/sitekit/internal/analytics"
	"github.com/kattalitextile/sitekit/internal/fragment"
	"github.com/kattalitextile/sitekit/internal/hooks"
	"github.com/kattalitextile/sitekit/internal/logging"
	"github.com/kattalitextile/sitekit/internal/render"
	"github.com/kattalitextile/sitekit/internal/router"
	"github.com/kattalitextile/sitekit/internal/version"
)

// handlePartial serves a single fragment file from the partials directory.
func (s *DevServer) handlePartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/partials/")
	pageID := strings.TrimSuffix(name, ".html")
	if !strings.HasSuffix(name, ".html") || fragment.ValidatePageID(pageID) != nil {
		http.Error(w, "Invalid fragment name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.cfg.Server.PartialsDir, pageID+".html")

	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "Fragment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// handleRoutes returns the route table.
func (s *DevServer) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"routes":       s.table.All(),
		"default_page": s.table.Default().PageID,
		"count":        s.table.Count(),
	}

	writeJSON(w, response)
}

// pageSnapshot is the result of driving a full navigation server-side.
type pageSnapshot struct {
	PageID     string   `json:"page_id"`
	Title      string   `json:"title"`
	Markup     string   `json:"markup"`
	ActiveLink string   `json:"active_link"`
	State      string   `json:"state"`
	Journal    []string `json:"journal"`
}

// handlePageSnapshot runs a real navigation for the requested page on a
// fresh surface and returns what the shell would show. Each request is its
// own session: a fresh cache, so edited partials are always re-read.
func (s *DevServer) handlePageSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/page/")
	if path == "" {
		http.Error(w, "Missing page id", http.StatusBadRequest)
		return
	}

	op := logging.StartOperation(s.logger, "page-snapshot")
	defer op.End(r.Context())

	doc := render.NewDocument()

	loader := fragment.NewLoader(fragment.NewCache(), fragment.NewDirSource(s.cfg.Server.PartialsDir), s.logger)
	sequencer := render.NewSequencer(0, 0, s.logger) // no timed phases for snapshots
	dispatcher := hooks.SiteDispatcher(s.logger)

	var tracker analytics.Tracker = analytics.Noop{}
	if s.cfg.Analytics.Enabled {
		tracker = analytics.NewHTTPTracker(s.cfg.Analytics.Endpoint, s.cfg.Analytics.Timeout, s.logger)
	}

	nav := router.New(s.cfg, s.table, loader, nil, sequencer, dispatcher, tracker, doc, s.logger)

	if err := nav.Navigate(r.Context(), path); err != nil {
		s.logger.Warn(r.Context(), err, "snapshot navigation failed", "path", path)
	}

	writeJSON(w, pageSnapshot{
		PageID:     nav.CurrentPageID(),
		Title:      doc.Title(),
		Markup:     doc.Markup(),
		ActiveLink: doc.ActiveLink(),
		State:      nav.State().String(),
		Journal:    doc.Journal(),
	})
}

// handleHealth returns the server health status for health checks.
func (s *DevServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.Short(),
		"checks": map[string]interface{}{
			"server": map[string]interface{}{"status": "healthy"},
			"routes": map[string]interface{}{"status": "healthy", "count": s.table.Count()},
		},
	}

	writeJSON(w, health)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already written; nothing more to do.
		_ = err
	}
}
