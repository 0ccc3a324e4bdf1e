package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/sqlbrowser/internal/browser"
	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/reconcile"
	"github.com/koustreak/sqlbrowser/internal/settings"
)

// detached drops the request's cancellation for calls that reach the
// session. Once a statement is sent it runs to completion even if the
// client goes away; only deadlines set by the session itself apply.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// handleHealth returns a liveness handler. Always responds 200 if the
// server process is running.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type engineInfo struct {
	Driver      dialect.Driver `json:"driver"`
	DefaultPort uint16         `json:"defaultPort"`
}

type driversResponse struct {
	Engines []engineInfo `json:"engines"`
	// SQLDrivers are the linked database/sql drivers belonging to a known
	// engine family.
	SQLDrivers []string `json:"sqlDrivers"`
}

func (s *Server) handleDrivers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := driversResponse{Engines: []engineInfo{}, SQLDrivers: []string{}}
		for _, d := range database.Engines() {
			resp.Engines = append(resp.Engines, engineInfo{Driver: d, DefaultPort: dialect.DefaultPort(d)})
		}
		for _, name := range database.Drivers() {
			if dialect.Supported(name) {
				resp.SQLDrivers = append(resp.SQLDrivers, name)
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleListServers() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		names, err := s.ws.Store().List(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"servers": names})
	})
}

func (s *Server) handleGetServer() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.ws.Store().Load(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
}

func (s *Server) handleSaveServer() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		var p database.Params
		if err := decode(r, &p); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.ws.Store().Save(r.Context(), chi.URLParam(r, "name"), p); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleRemoveServer() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		if err := s.ws.Store().Remove(r.Context(), chi.URLParam(r, "name")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleGetPreferences() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		prefs, err := s.ws.Store().Preferences(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	})
}

func (s *Server) handleSetPreferences() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		var prefs settings.Preferences
		if err := decode(r, &prefs); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.ws.Store().SetPreferences(r.Context(), prefs); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	})
}

func (s *Server) handleState() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.ws.State())
	})
}

// handleConnect opens the saved server and reports the resulting state.
func (s *Server) handleConnect() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		if err := s.ws.Connect(detached(r), chi.URLParam(r, "name")); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.ws.State())
	})
}

// handleTestConnection tries the params in the body without touching the
// workspace connection.
func (s *Server) handleTestConnection() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		var p database.Params
		if err := decode(r, &p); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.ws.TestConnection(detached(r), p); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) handleDisconnect() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		if err := s.ws.Disconnect(); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.ws.State())
	})
}

func (s *Server) handleDatabases() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		names, err := s.ws.Databases(detached(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"databases": names})
	})
}

func (s *Server) handleUseDatabase() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		if err := s.ws.UseDatabase(detached(r), chi.URLParam(r, "name")); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.ws.State())
	})
}

func (s *Server) handleTables() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		names, err := s.ws.Tables(detached(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"tables": names})
	})
}

func (s *Server) handleOpenTable() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		view, err := s.ws.OpenTable(detached(r), chi.URLParam(r, "name"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})
}

type queryRequest struct {
	Statement string `json:"statement"`
}

type queryResponse struct {
	Result        *database.QueryResult `json:"result"`
	ExecutionTime string                `json:"executionTime"`
}

func (s *Server) handleQuery() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.ws.Run(detached(r), req.Statement)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, queryResponse{Result: res, ExecutionTime: s.ws.State().ExecutionTime})
	})
}

func (s *Server) handleGrid() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		view := s.ws.View()
		if view == nil {
			s.writeError(w, r, errs.New(errs.ErrKindNotFound, "no grid loaded"))
			return
		}
		writeJSON(w, http.StatusOK, view)
	})
}

type editRequest struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Value  string `json:"value"`
}

type editResponse struct {
	Result *reconcile.Result `json:"result"`
	Grid   *browser.View     `json:"grid"`
}

// handleEdit writes one cell. A failed edit leaves the grid showing the
// committed value, so the response to an error carries no grid.
func (s *Server) handleEdit() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.ws.Edit(detached(r), req.Row, req.Column, req.Value)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, editResponse{Result: res, Grid: s.ws.View()})
	})
}

type sortRequest struct {
	Column int `json:"column"`
}

func (s *Server) handleSort() http.HandlerFunc {
	return s.locked(func(w http.ResponseWriter, r *http.Request) {
		var req sortRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		view, err := s.ws.Sort(req.Column)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})
}
