// Package server exposes a browser.Workspace over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/sqlbrowser/internal/browser"
	"github.com/koustreak/sqlbrowser/internal/logger"
)

// Server wraps the HTTP server with chi routing, middleware, and graceful shutdown.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	log        *logger.Logger

	// mu serializes every request that touches ws. The workspace holds a
	// single session and is not safe for concurrent use.
	mu sync.Mutex
	ws *browser.Workspace
}

// New creates a Server that serves ws on listenAddr.
func New(listenAddr string, ws *browser.Workspace, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		log: log,
		ws:  ws,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              listenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server and blocks until it stops.
// Returns nil if the server was shut down gracefully via Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.InfoWith("HTTP server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// closes the workspace connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cerr := s.ws.Disconnect(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
