// Package reconcile turns an accepted grid edit into an UPDATE statement,
// runs it, and keeps or reverts the edit depending on the outcome.
//
// Rows are matched by value: the WHERE clause compares every column with
// the row as it was displayed, because a fetched grid carries no row
// identity. If two rows hold identical values in every column the UPDATE
// changes both. Callers that know a key may restrict matching to it.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/grid"
)

// EditIntent describes one cell change and the row it happened in.
type EditIntent struct {
	Row      int
	Column   int
	Previous string
	New      string
	// Values holds the displayed value of every cell in the row at edit
	// time. The edited column's entry is ignored in favour of Previous.
	Values []string
}

// BuildUpdate renders the UPDATE for in against table. headers are the grid
// column labels; sort markers are stripped before they are used as names.
// When key is non-empty only those columns appear in the WHERE clause.
//
// Values are escaped by doubling single quotes and nothing else. On engines
// that honour backslash escapes inside literals (MySQL by default) a value
// ending in a backslash breaks out of its literal.
func BuildUpdate(policy dialect.Policy, table string, headers []string, in EditIntent, key []string) (string, error) {
	if table == "" {
		return "", errs.New(errs.ErrKindEditRejected, "no table selected")
	}
	if len(headers) == 0 {
		return "", errs.New(errs.ErrKindEditRejected, "grid has no columns")
	}
	if len(in.Values) != len(headers) {
		return "", errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("row has %d values for %d columns", len(in.Values), len(headers)))
	}
	if in.Column < 0 || in.Column >= len(headers) {
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("column %d out of range", in.Column))
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = grid.StripSortMarker(h)
	}

	match, err := matchColumns(columns, key)
	if err != nil {
		return "", err
	}

	conds := make([]string, 0, len(match))
	for _, i := range match {
		v := in.Values[i]
		if i == in.Column {
			v = in.Previous
		}
		conds = append(conds, policy.Quote(columns[i])+" = "+literal(v))
	}

	return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s",
		policy.Quote(table),
		policy.Quote(columns[in.Column]),
		literal(in.New),
		strings.Join(conds, " AND "),
	), nil
}

// matchColumns returns the indexes of the columns the WHERE clause compares.
func matchColumns(columns, key []string) ([]int, error) {
	if len(key) == 0 {
		all := make([]int, len(columns))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	out := make([]int, 0, len(key))
	for _, k := range key {
		idx := -1
		for i, c := range columns {
			if c == k {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errs.New(errs.ErrKindEditRejected,
				fmt.Sprintf("key column %q is not in the grid", k))
		}
		out = append(out, idx)
	}
	return out, nil
}

func literal(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
