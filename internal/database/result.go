package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QueryResult is the materialized outcome of one Execute call: column names
// in positional order and rows of string-rendered cells aligned with them.
// Mutations carry no columns; RowsAffected reports what the driver counted.
type QueryResult struct {
	Columns      []string   `json:"columns"`
	Rows         [][]string `json:"rows"`
	RowsAffected int64      `json:"rowsAffected"`
	Mutation     bool       `json:"mutation"`
}

// timeLayout renders driver time values in a form every engine accepts back
// as a literal.
const timeLayout = "2006-01-02 15:04:05.999999999Z07:00"

// collect reads all rows and always closes them.
// The returned Rows slice is non-nil even for an empty result.
func collect(rows *sql.Rows) (*QueryResult, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Columns: columns, Rows: make([][]string, 0)}

	for rows.Next() {
		// Scan targets are *any so the driver can write any type.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, err
		}

		row := make([]string, len(columns))
		for i, v := range dest {
			row[i] = render(v)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// render converts a scanned value to its display text. NULL renders as the
// empty string, which the grid cannot tell apart from an empty value.
func render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format(timeLayout)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// firstColumn reads the first column of every row as text.
func firstColumn(rows *sql.Rows) ([]string, error) {
	res, err := collect(rows)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) > 0 {
			out = append(out, strings.TrimSpace(row[0]))
		}
	}
	return out, nil
}
