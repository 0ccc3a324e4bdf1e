package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
)

func aliceToBob() EditIntent {
	return EditIntent{Row: 0, Column: 1, Previous: "Alice", New: "Bob", Values: []string{"1", "Bob"}}
}

func TestBuildUpdate_MySQL(t *testing.T) {
	stmt, err := BuildUpdate(dialect.For(dialect.MySQL), "users", []string{"id", "name"}, aliceToBob(), nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = 'Bob' WHERE `id` = '1' AND `name` = 'Alice'", stmt)
}

func TestBuildUpdate_Postgres(t *testing.T) {
	stmt, err := BuildUpdate(dialect.For(dialect.Postgres), "users", []string{"id", "name"}, aliceToBob(), nil)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = 'Bob' WHERE "id" = '1' AND "name" = 'Alice'`, stmt)
}

func TestBuildUpdate_UnknownDriverUsesBackticks(t *testing.T) {
	stmt, err := BuildUpdate(dialect.For("mariadb"), "users", []string{"id", "name"}, aliceToBob(), nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = 'Bob' WHERE `id` = '1' AND `name` = 'Alice'", stmt)
}

func TestBuildUpdate_EscapesQuotes(t *testing.T) {
	in := EditIntent{Column: 1, Previous: "D'Arcy", New: "O'Brien", Values: []string{"7", "ignored"}}

	stmt, err := BuildUpdate(dialect.For(dialect.MySQL), "users", []string{"id", "name"}, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = 'O''Brien' WHERE `id` = '7' AND `name` = 'D''Arcy'", stmt)
}

// Only quotes are doubled. A trailing backslash escapes the closing quote on
// MySQL, so the literal swallows the rest of the statement.
func TestBuildUpdate_BackslashIsNotEscaped(t *testing.T) {
	in := EditIntent{Column: 1, Previous: "a", New: `x\`, Values: []string{"1", "a"}}

	stmt, err := BuildUpdate(dialect.For(dialect.MySQL), "t", []string{"id", "v"}, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `t` SET `v` = 'x\\' WHERE `id` = '1' AND `v` = 'a'", stmt)
}

func TestBuildUpdate_StripsSortMarkers(t *testing.T) {
	stmt, err := BuildUpdate(dialect.For(dialect.MySQL), "users", []string{"id ▲", "name"}, aliceToBob(), nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = 'Bob' WHERE `id` = '1' AND `name` = 'Alice'", stmt)
	assert.NotContains(t, stmt, "▲")

	stmt, err = BuildUpdate(dialect.For(dialect.MySQL), "users", []string{"id", "name ▼"}, aliceToBob(), nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = 'Bob' WHERE `id` = '1' AND `name` = 'Alice'", stmt)
}

func TestBuildUpdate_KeyColumns(t *testing.T) {
	in := EditIntent{Column: 1, Previous: "Alice", New: "Bob", Values: []string{"1", "Bob", "x@y"}}

	stmt, err := BuildUpdate(dialect.For(dialect.Postgres), "users", []string{"id", "name", "email"}, in, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = 'Bob' WHERE "id" = '1'`, stmt)
}

func TestBuildUpdate_KeyIncludesEditedColumn(t *testing.T) {
	in := EditIntent{Column: 0, Previous: "1", New: "5", Values: []string{"5", "Alice"}}

	stmt, err := BuildUpdate(dialect.For(dialect.MySQL), "users", []string{"id", "name"}, in, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `id` = '5' WHERE `id` = '1'", stmt)
}

func TestBuildUpdate_Rejections(t *testing.T) {
	policy := dialect.For(dialect.MySQL)
	headers := []string{"id", "name"}

	tests := []struct {
		name    string
		table   string
		headers []string
		in      EditIntent
		key     []string
		check   func(error) bool
	}{
		{"no table", "", headers, aliceToBob(), nil, errs.IsEditRejected},
		{"no columns", "users", nil, EditIntent{}, nil, errs.IsEditRejected},
		{"short row", "users", headers, EditIntent{Column: 1, Values: []string{"1"}}, nil, errs.IsInvalidInput},
		{"bad column", "users", headers, EditIntent{Column: 2, Values: []string{"1", "a"}}, nil, errs.IsInvalidInput},
		{"unknown key", "users", headers, aliceToBob(), []string{"uuid"}, errs.IsEditRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := BuildUpdate(policy, tt.table, tt.headers, tt.in, tt.key)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
			assert.Empty(t, stmt)
		})
	}
}
