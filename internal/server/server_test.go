package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/sqlbrowser/internal/browser"
	"github.com/koustreak/sqlbrowser/internal/database"
	_ "github.com/koustreak/sqlbrowser/internal/database/sqlite"
	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/settings"
)

func newServer(t *testing.T) (*Server, database.Params) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE items (id INTEGER, label TEXT);
INSERT INTO items VALUES (2, 'b'), (1, 'a');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	p := database.Params{Driver: dialect.SQLite, Host: "localhost", Port: 1, Database: path, User: "x"}
	store := settings.NewFileStore(filepath.Join(dir, "servers.yaml"))
	require.NoError(t, store.Save(context.Background(), "local", p))

	s := New("127.0.0.1:0", browser.New(store, browser.Options{}), nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, p
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDrivers(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s, http.MethodGet, "/drivers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp driversResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Engines, engineInfo{Driver: dialect.SQLite, DefaultPort: 0})
	assert.Contains(t, resp.SQLDrivers, "sqlite")
}

func TestServersCRUD(t *testing.T) {
	s, p := newServer(t)

	other := p
	other.Database = "other.db"
	rec := do(t, s, http.MethodPut, "/servers/second", other)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/servers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"servers":["local","second"]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/servers/second", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got database.Params
	decodeBody(t, rec, &got)
	assert.Equal(t, other, got)

	rec = do(t, s, http.MethodDelete, "/servers/second", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/servers/second", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveServer_BadBody(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s, http.MethodPut, "/servers/x", map[string]string{"hostname": "db"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "invalid_input", resp.Kind)
}

func TestPreferences(t *testing.T) {
	s, _ := newServer(t)

	rec := do(t, s, http.MethodGet, "/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"defaultDriver":"mysql"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/preferences", map[string]string{"defaultDriver": "postgres"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/preferences", nil)
	assert.JSONEq(t, `{"defaultDriver":"postgres"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/preferences", map[string]string{"defaultDriver": "db2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrowseEditSort(t *testing.T) {
	s, _ := newServer(t)

	rec := do(t, s, http.MethodPost, "/query", queryRequest{Statement: "SELECT 1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/servers/local/connect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st browser.State
	decodeBody(t, rec, &st)
	assert.True(t, st.Connected)
	assert.Equal(t, "local", st.Server)

	rec = do(t, s, http.MethodGet, "/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tables":["items"]}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/tables/items/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/grid/sort", sortRequest{Column: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	var view browser.View
	decodeBody(t, rec, &view)
	assert.Equal(t, []string{"id ▲", "label"}, view.Headers)
	assert.Equal(t, [][]string{{"1", "a"}, {"2", "b"}}, view.Rows)
	assert.True(t, view.Sort.Active)

	rec = do(t, s, http.MethodPost, "/grid/edit", editRequest{Row: 1, Column: 1, Value: "bee"})
	require.Equal(t, http.StatusOK, rec.Code)
	var edit editResponse
	decodeBody(t, rec, &edit)
	assert.Equal(t, int64(1), edit.Result.RowsAffected)
	assert.Equal(t, "bee", edit.Grid.Rows[1][1])

	rec = do(t, s, http.MethodPost, "/query", queryRequest{Statement: "SELECT label FROM items WHERE id = 2"})
	require.Equal(t, http.StatusOK, rec.Code)
	var q queryResponse
	decodeBody(t, rec, &q)
	assert.Equal(t, [][]string{{"bee"}}, q.Result.Rows)
	assert.Contains(t, q.ExecutionTime, " ms")
}

func TestQuery_StatementFailed(t *testing.T) {
	s, _ := newServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/servers/local/connect", nil).Code)

	rec := do(t, s, http.MethodPost, "/query", queryRequest{Statement: "SELECT * FROM nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "statement_failed", resp.Kind)
	assert.Contains(t, resp.Driver, "nope")

	// still connected
	rec = do(t, s, http.MethodGet, "/state", nil)
	var st browser.State
	decodeBody(t, rec, &st)
	assert.True(t, st.Connected)
	assert.Contains(t, st.LastError, "nope")
}

func TestQuery_ClientGoneStillRuns(t *testing.T) {
	s, _ := newServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/servers/local/connect", nil).Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(queryRequest{Statement: "DELETE FROM items WHERE id = 1"}))
	req := httptest.NewRequest(http.MethodPost, "/query", &buf).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/query", queryRequest{Statement: "SELECT id FROM items"})
	require.Equal(t, http.StatusOK, rec.Code)
	var q queryResponse
	decodeBody(t, rec, &q)
	assert.Equal(t, [][]string{{"2"}}, q.Result.Rows)
}

func TestGrid_NoneLoaded(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s, http.MethodGet, "/grid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/grid/edit", editRequest{Value: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestConnection(t *testing.T) {
	s, p := newServer(t)

	rec := do(t, s, http.MethodPost, "/test-connection", p)
	assert.Equal(t, http.StatusOK, rec.Code)

	p.User = ""
	rec = do(t, s, http.MethodPost, "/test-connection", p)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "invalid_params", resp.Kind)
}

func TestDisconnect(t *testing.T) {
	s, _ := newServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/servers/local/connect", nil).Code)

	rec := do(t, s, http.MethodPost, "/disconnect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st browser.State
	decodeBody(t, rec, &st)
	assert.False(t, st.Connected)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind errs.ErrKind
		want int
	}{
		{errs.ErrKindInvalidParams, http.StatusBadRequest},
		{errs.ErrKindEditRejected, http.StatusBadRequest},
		{errs.ErrKindNotFound, http.StatusNotFound},
		{errs.ErrKindNotConnected, http.StatusConflict},
		{errs.ErrKindConnectFailed, http.StatusBadGateway},
		{errs.ErrKindCommitFailed, http.StatusUnprocessableEntity},
		{errs.ErrKindTimeout, http.StatusGatewayTimeout},
		{errs.ErrKindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.kind))
		})
	}
}
