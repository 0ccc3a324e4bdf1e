package server

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth())
	r.Get("/drivers", s.handleDrivers())

	// Saved servers and preferences
	r.Get("/servers", s.handleListServers())
	r.Get("/servers/{name}", s.handleGetServer())
	r.Put("/servers/{name}", s.handleSaveServer())
	r.Delete("/servers/{name}", s.handleRemoveServer())
	r.Post("/servers/{name}/connect", s.handleConnect())
	r.Get("/preferences", s.handleGetPreferences())
	r.Put("/preferences", s.handleSetPreferences())

	// Session
	r.Get("/state", s.handleState())
	r.Post("/test-connection", s.handleTestConnection())
	r.Post("/disconnect", s.handleDisconnect())
	r.Get("/databases", s.handleDatabases())
	r.Post("/databases/{name}/use", s.handleUseDatabase())
	r.Get("/tables", s.handleTables())
	r.Post("/tables/{name}/open", s.handleOpenTable())
	r.Post("/query", s.handleQuery())

	// Grid
	r.Get("/grid", s.handleGrid())
	r.Post("/grid/edit", s.handleEdit())
	r.Post("/grid/sort", s.handleSort())

	s.router = r
}
