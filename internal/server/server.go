// Package server provides the sitekit development server.
//
// It serves the static shell and page fragments, exposes the navigation
// engine through a snapshot API, and pushes live-reload messages over a
// WebSocket when site content changes on disk.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/kattalitextile/sitekit/internal/config"
	"github.com/kattalitextile/sitekit/internal/logging"
	"github.com/kattalitextile/sitekit/internal/routes"
	"github.com/kattalitextile/sitekit/internal/watcher"
)

// DevServer serves the site with live reload.
type DevServer struct {
	cfg    *config.Config
	table  *routes.Table
	logger logging.Logger

	httpServer  *http.Server
	serverMutex sync.RWMutex

	assets *watcher.AssetWatcher

	clients      map[*websocket.Conn]*client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *client
	unregister   chan *websocket.Conn

	shutdownOnce sync.Once
}

// New creates a dev server for the configured site.
func New(cfg *config.Config, logger logging.Logger) (*DevServer, error) {
	assets, err := watcher.New(300*time.Millisecond, logger)
	if err != nil {
		return nil, fmt.Errorf("creating asset watcher: %w", err)
	}

	return &DevServer{
		cfg:        cfg,
		table:      routes.DefaultSite(),
		logger:     logger.WithComponent("server"),
		assets:     assets,
		clients:    make(map[*websocket.Conn]*client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
	}, nil
}

// Start runs the server until it fails or is shut down.
func (s *DevServer) Start(ctx context.Context) error {
	s.setupWatcher(ctx)

	go s.runHub(ctx)
	go s.watchNavigation(ctx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	srv := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "dev server listening", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Handler builds the route mux wrapped in middleware.
func (s *DevServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/partials/", s.handlePartial)
	mux.HandleFunc("/api/routes", s.handleRoutes)
	mux.HandleFunc("/api/page/", s.handlePageSnapshot)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Server.StaticRoot)))

	return s.middleware(mux)
}

func (s *DevServer) setupWatcher(ctx context.Context) {
	s.assets.AddFilter(watcher.SiteAssetFilter)
	s.assets.AddFilter(watcher.NoHiddenFilter)
	s.assets.AddHandler(s.handleAssetChanges)

	for _, dir := range []string{s.cfg.Server.StaticRoot, s.cfg.Server.PartialsDir} {
		if err := s.assets.AddRecursive(dir); err != nil {
			s.logger.Warn(ctx, err, "not watching directory", "dir", dir)
		}
	}

	s.assets.Start(ctx)
}

// middleware adds CORS headers and request logging.
func (s *DevServer) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if s.cfg.Server.Environment == "development" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request served",
			"method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *DevServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// watchNavigation forwards navigation events from the route table to
// connected clients, so the dev shell can surface what the snapshot
// endpoint resolved.
func (s *DevServer) watchNavigation(ctx context.Context) {
	events := s.table.Watch()
	defer s.table.Unwatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.broadcastMessage(reloadMessage{
				Type:      "navigation:" + e.Type.String(),
				Paths:     []string{e.Route.Path},
				Timestamp: e.Timestamp,
			})
		}
	}
}

func (s *DevServer) handleAssetChanges(changes []watcher.Change) {
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		paths = append(paths, c.Path)
	}

	s.broadcastMessage(reloadMessage{Type: "reload", Paths: paths, Timestamp: time.Now()})
}

// Shutdown gracefully stops the server and closes all connections.
func (s *DevServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down dev server")

		if err := s.assets.Stop(); err != nil {
			s.logger.Warn(ctx, err, "asset watcher stop")
		}

		s.clientsMutex.Lock()
		for conn, c := range s.clients {
			close(c.send)
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.clients = make(map[*websocket.Conn]*client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		srv := s.httpServer
		s.serverMutex.RUnlock()

		if srv != nil {
			shutdownErr = srv.Shutdown(ctx)
		}
	})

	return shutdownErr
}
