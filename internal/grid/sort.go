package grid

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/koustreak/sqlbrowser/internal/errs"
)

// Direction is a sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// MarshalText renders the direction as "asc" or "desc".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "asc" or "desc".
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "asc":
		*d = Ascending
	case "desc":
		*d = Descending
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown sort direction %q", b))
	}
	return nil
}

// SortState is the column and direction a grid is currently sorted by.
type SortState struct {
	Active bool      `json:"active"`
	Column int       `json:"column"`
	Dir    Direction `json:"direction"`
}

// Toggle returns the state after the user picks col: the same column flips
// direction, any other column starts ascending.
func (s SortState) Toggle(col int) SortState {
	if s.Active && s.Column == col {
		if s.Dir == Ascending {
			s.Dir = Descending
		} else {
			s.Dir = Ascending
		}
		return s
	}
	return SortState{Active: true, Column: col, Dir: Ascending}
}

// Comparer orders cell values: numerically when both sides parse as
// numbers, otherwise by the collation rules of its locale.
// A Comparer is not safe for concurrent use.
type Comparer struct {
	col *collate.Collator
}

// NewComparer returns a Comparer for the given BCP 47 locale. Unknown tags
// fall back to the root collation.
func NewComparer(locale string) *Comparer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Comparer{col: collate.New(tag)}
}

// Compare returns -1, 0 or +1.
func (c *Comparer) Compare(a, b string) int {
	x, okA := number(a)
	y, okB := number(b)
	if okA && okB {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return c.col.CompareString(a, b)
}

func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// SortRows returns rows stably reordered by column col. Whole rows move,
// so per-cell state stays with its row. rows itself is not modified.
func SortRows(rows [][]Cell, col int, dir Direction, c *Comparer) [][]Cell {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b []Cell) int {
		r := c.Compare(a[col].Value, b[col].Value)
		if dir == Descending {
			return -r
		}
		return r
	})
	return out
}

// Sort applies a header click on col: it toggles the sort state and
// reorders the rows.
func (g *Grid) Sort(col int, c *Comparer) error {
	if col < 0 || col >= len(g.columns) {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("column %d out of range", col))
	}
	g.sort = g.sort.Toggle(col)
	g.rows = SortRows(g.rows, col, g.sort.Dir, c)
	return nil
}

// SortState returns the current sort state.
func (g *Grid) SortState() SortState { return g.sort }
