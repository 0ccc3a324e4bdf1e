package reconcile

import (
	"context"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/grid"
	"github.com/koustreak/sqlbrowser/internal/logger"
)

// Executor runs statements against the connection the grid came from.
// *database.Session satisfies it.
type Executor interface {
	Execute(ctx context.Context, stmt string) (*database.QueryResult, error)
	Policy() dialect.Policy
}

// Target names what an edit applies to.
type Target struct {
	Table string
	// Key restricts row matching to these columns. Empty means every column.
	Key []string
}

// Result reports an applied edit.
type Result struct {
	Statement    string `json:"statement"`
	RowsAffected int64  `json:"rowsAffected"`
}

// Reconciler applies grid edits through an Executor.
type Reconciler struct {
	exec Executor
	log  *logger.Logger
}

// New returns a Reconciler. A nil log disables logging.
func New(exec Executor, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{exec: exec, log: log}
}

// Intent captures the edit of cell (row, col) to value on g. Previous is
// the cell's committed value.
func Intent(g *grid.Grid, row, col int, value string) (EditIntent, error) {
	cell, err := g.Cell(row, col)
	if err != nil {
		return EditIntent{}, err
	}
	return EditIntent{
		Row:      row,
		Column:   col,
		Previous: cell.Committed,
		New:      value,
		Values:   g.Values(row),
	}, nil
}

// Apply sets cell (row, col) of g to value and writes it to t.
//
// On success the new value becomes the cell's committed value, so the next
// edit of that row matches on it. On any failure the cell is reverted and
// the error is returned; errs.DriverText gives the driver's message.
func (r *Reconciler) Apply(ctx context.Context, g *grid.Grid, t Target, row, col int, value string) (*Result, error) {
	in, err := Intent(g, row, col, value)
	if err != nil {
		return nil, err
	}

	stmt, err := BuildUpdate(r.exec.Policy(), t.Table, g.Headers(), in, t.Key)
	if err != nil {
		return nil, err
	}
	_ = g.Set(row, col, value)

	r.log.DebugWith("applying edit", map[string]interface{}{
		"table":     t.Table,
		"row":       row,
		"column":    col,
		"statement": stmt,
	})

	res, err := r.exec.Execute(ctx, stmt)
	if err != nil {
		g.Revert(row, col)
		r.log.WarnWith("edit reverted", err, map[string]interface{}{
			"table":  t.Table,
			"row":    row,
			"column": col,
		})
		return nil, err
	}

	g.Commit(row, col)
	return &Result{Statement: stmt, RowsAffected: res.RowsAffected}, nil
}
