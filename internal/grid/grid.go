// Package grid holds a fetched result set as the user sees it: column
// headers, rows of cells that remember their last committed value, and the
// sort state of the view.
package grid

import (
	"fmt"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/errs"
)

// Cell is one displayed value. Committed is the value the backing store is
// known to hold; Value differs from it only while an edit is pending.
type Cell struct {
	Value     string `json:"value"`
	Committed string `json:"-"`
}

// Grid is a result set loaded for display and editing.
// It is not safe for concurrent use.
type Grid struct {
	columns []string
	rows    [][]Cell
	sort    SortState
}

// New builds a grid from column names and rows of rendered values.
func New(columns []string, rows [][]string) *Grid {
	g := &Grid{
		columns: append([]string(nil), columns...),
		rows:    make([][]Cell, len(rows)),
	}
	for i, row := range rows {
		cells := make([]Cell, len(columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = Cell{Value: row[j], Committed: row[j]}
			}
		}
		g.rows[i] = cells
	}
	return g
}

// FromResult loads a query result. Mutation results give an empty grid.
func FromResult(res *database.QueryResult) *Grid {
	if res == nil {
		return New(nil, nil)
	}
	return New(res.Columns, res.Rows)
}

// Columns returns the undecorated column names.
func (g *Grid) Columns() []string {
	return append([]string(nil), g.columns...)
}

// Len is the number of rows.
func (g *Grid) Len() int { return len(g.rows) }

// Values returns the displayed values of row i.
func (g *Grid) Values(i int) []string {
	out := make([]string, len(g.rows[i]))
	for j, c := range g.rows[i] {
		out[j] = c.Value
	}
	return out
}

// Rows returns the displayed values of every row.
func (g *Grid) Rows() [][]string {
	out := make([][]string, len(g.rows))
	for i := range g.rows {
		out[i] = g.Values(i)
	}
	return out
}

// Cell returns the cell at (row, col).
func (g *Grid) Cell(row, col int) (Cell, error) {
	if err := g.check(row, col); err != nil {
		return Cell{}, err
	}
	return g.rows[row][col], nil
}

// Set replaces the displayed value of a cell, leaving Committed alone.
func (g *Grid) Set(row, col int, value string) error {
	if err := g.check(row, col); err != nil {
		return err
	}
	g.rows[row][col].Value = value
	return nil
}

// Commit records the displayed value of a cell as stored.
func (g *Grid) Commit(row, col int) {
	c := &g.rows[row][col]
	c.Committed = c.Value
}

// Revert restores the displayed value of a cell to its committed value.
func (g *Grid) Revert(row, col int) {
	c := &g.rows[row][col]
	c.Value = c.Committed
}

func (g *Grid) check(row, col int) error {
	if row < 0 || row >= len(g.rows) {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("row %d out of range", row))
	}
	if col < 0 || col >= len(g.columns) {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("column %d out of range", col))
	}
	return nil
}
