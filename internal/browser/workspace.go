// Package browser keeps the navigation context of one user: which saved
// server is connected, which database and table are selected, and the grid
// currently on screen. It ties the session, the grid and the edit
// reconciler together.
package browser

import (
	"context"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/grid"
	"github.com/koustreak/sqlbrowser/internal/logger"
	"github.com/koustreak/sqlbrowser/internal/reconcile"
	"github.com/koustreak/sqlbrowser/internal/settings"
)

// Options configures a Workspace.
type Options struct {
	// Locale drives string ordering when sorting the grid.
	Locale string
	// UsePrimaryKey makes edits match on the opened table's primary key
	// when it has one.
	UsePrimaryKey bool
	Logger        *logger.Logger
	// SessionOptions are passed to every session the workspace opens.
	SessionOptions []database.Option
}

// Workspace is not safe for concurrent use.
type Workspace struct {
	store    settings.Store
	session  *database.Session
	sessOpts []database.Option
	cmp      *grid.Comparer
	rec      *reconcile.Reconciler
	log      *logger.Logger
	usePK    bool

	server string
	table  string
	key    []string
	grid   *grid.Grid
}

// State is a snapshot of the navigation context.
type State struct {
	Connected     bool   `json:"connected"`
	Server        string `json:"server,omitempty"`
	Driver        string `json:"driver,omitempty"`
	Database      string `json:"database,omitempty"`
	Table         string `json:"table,omitempty"`
	LastError     string `json:"lastError,omitempty"`
	ExecutionTime string `json:"executionTime"`
}

// View is the grid as it should be rendered.
type View struct {
	Table   string         `json:"table,omitempty"`
	Key     []string       `json:"key,omitempty"`
	Headers []string       `json:"headers"`
	Rows    [][]string     `json:"rows"`
	Sort    grid.SortState `json:"sort"`
}

// New returns a disconnected workspace reading servers from store.
func New(store settings.Store, opts Options) *Workspace {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}

	sessOpts := append([]database.Option{database.WithLogger(log)}, opts.SessionOptions...)
	session := database.New(sessOpts...)

	return &Workspace{
		store:    store,
		session:  session,
		sessOpts: sessOpts,
		cmp:      grid.NewComparer(locale),
		rec:      reconcile.New(session, log),
		log:      log,
		usePK:    opts.UsePrimaryKey,
	}
}

// Store returns the settings store the workspace reads servers from.
func (w *Workspace) Store() settings.Store { return w.store }

// State reports the current navigation context.
func (w *Workspace) State() State {
	st := State{
		Connected:     w.session.IsOpen(),
		ExecutionTime: w.session.LastExecutionTime(),
		Table:         w.table,
	}
	if st.Connected {
		p := w.session.Params()
		st.Server = w.server
		st.Driver = string(p.Driver)
		st.Database = p.Database
	}
	if err := w.session.LastError(); err != nil {
		st.LastError = errs.DriverText(err)
	}
	return st
}

// Connect opens the saved server name. Any earlier selection is dropped,
// except when the saved params are invalid: then nothing was closed and the
// current connection and selection stay as they were.
func (w *Workspace) Connect(ctx context.Context, name string) error {
	p, err := w.store.Load(ctx, name)
	if err != nil {
		return err
	}
	if err := w.session.Open(ctx, p); err != nil {
		// invalid params leave the previous connection open
		if !w.session.IsOpen() {
			w.reset()
			w.server = ""
		}
		return err
	}
	w.reset()
	w.server = name
	return nil
}

// TestConnection opens and closes a separate session for p. The workspace's
// own connection is not touched.
func (w *Workspace) TestConnection(ctx context.Context, p database.Params) error {
	return database.Test(ctx, p, w.sessOpts...)
}

// Disconnect closes the connection and clears the selection.
func (w *Workspace) Disconnect() error {
	w.reset()
	w.server = ""
	return w.session.Close()
}

// Databases lists the databases on the connected server.
func (w *Workspace) Databases(ctx context.Context) ([]string, error) {
	return w.session.ListDatabases(ctx)
}

// UseDatabase switches the connection to another database. On failure the
// workspace is disconnected.
func (w *Workspace) UseDatabase(ctx context.Context, name string) error {
	w.reset()
	if err := w.session.SwitchDatabase(ctx, name); err != nil {
		w.server = ""
		return err
	}
	return nil
}

// Tables lists the tables of the selected database.
func (w *Workspace) Tables(ctx context.Context) ([]string, error) {
	return w.session.ListTables(ctx)
}

// OpenTable loads every row of table into the grid and makes it the edit
// target.
func (w *Workspace) OpenTable(ctx context.Context, table string) (*View, error) {
	res, err := w.session.Execute(ctx, w.session.Policy().SelectAll(table))
	if err != nil {
		return nil, err
	}
	w.grid = grid.FromResult(res)
	w.table = table
	w.key = nil

	if w.usePK {
		key, err := w.session.PrimaryKey(ctx, table)
		if err != nil {
			w.log.WarnWith("primary key lookup failed, matching on all columns", err, map[string]interface{}{
				"table": table,
			})
		} else {
			w.key = key
		}
	}
	return w.View(), nil
}

// Run executes stmt. A read result replaces the grid and clears the edit
// target, since an arbitrary result set maps to no single table.
func (w *Workspace) Run(ctx context.Context, stmt string) (*database.QueryResult, error) {
	res, err := w.session.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if !res.Mutation {
		w.grid = grid.FromResult(res)
		w.table = ""
		w.key = nil
	}
	return res, nil
}

// View returns the current grid, or nil if none is loaded.
func (w *Workspace) View() *View {
	if w.grid == nil {
		return nil
	}
	return &View{
		Table:   w.table,
		Key:     w.key,
		Headers: w.grid.Headers(),
		Rows:    w.grid.Rows(),
		Sort:    w.grid.SortState(),
	}
}

// Edit writes value into cell (row, col) of the grid and the opened table.
func (w *Workspace) Edit(ctx context.Context, row, col int, value string) (*reconcile.Result, error) {
	if w.grid == nil {
		return nil, errs.New(errs.ErrKindEditRejected, "no grid loaded")
	}
	return w.rec.Apply(ctx, w.grid, reconcile.Target{Table: w.table, Key: w.key}, row, col, value)
}

// Sort applies a header click on col.
func (w *Workspace) Sort(col int) (*View, error) {
	if w.grid == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "no grid loaded")
	}
	if err := w.grid.Sort(col, w.cmp); err != nil {
		return nil, err
	}
	return w.View(), nil
}

func (w *Workspace) reset() {
	w.table = ""
	w.key = nil
	w.grid = nil
}
