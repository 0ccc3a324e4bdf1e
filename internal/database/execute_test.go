package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/sqlbrowser/internal/errs"
)

func TestIsMutation(t *testing.T) {
	tests := []struct {
		stmt string
		want bool
	}{
		{"UPDATE users SET name = 'x'", true},
		{"  insert into t values (1)", true},
		{"\n\tDelete FROM t", true},
		{"SELECT * FROM t", false},
		{"SHOW TABLES", false},
		{"WITH x AS (SELECT 1) UPDATE t SET a = 1", false},
		{"-- comment\nUPDATE t SET a = 1", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMutation(tt.stmt))
		})
	}
}

func TestExecute_NotConnected(t *testing.T) {
	s := New()

	res, err := s.Execute(context.Background(), "SELECT 1")
	assert.Nil(t, res)
	assert.True(t, errs.IsNotConnected(err))
	assert.Equal(t, err, s.LastError())
	assert.Zero(t, s.LastDuration())
	assert.Equal(t, "0 ms", s.LastExecutionTime())
}

func TestExecute_Query(t *testing.T) {
	s, mock, _ := openMock(t)

	mock.ExpectQuery("SELECT id, name, note FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "note"}).
			AddRow(int64(1), "Alice", nil).
			AddRow(int64(2), []byte("Bob"), "hi"))

	res, err := s.Execute(context.Background(), "SELECT id, name, note FROM users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "note"}, res.Columns)
	assert.Equal(t, [][]string{{"1", "Alice", ""}, {"2", "Bob", "hi"}}, res.Rows)
	assert.False(t, res.Mutation)
	assert.NoError(t, s.LastError())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_QueryError(t *testing.T) {
	s, mock, _ := openMock(t)

	mock.ExpectQuery("SELECT * FROM missing").WillReturnError(errors.New("Table 'shop.missing' doesn't exist"))

	_, err := s.Execute(context.Background(), "SELECT * FROM missing")
	require.Error(t, err)
	assert.True(t, errs.IsStatementFailed(err))
	assert.Equal(t, "Table 'shop.missing' doesn't exist", errs.DriverText(s.LastError()))
}

func TestExecute_MutationCommits(t *testing.T) {
	s, mock, _ := openMock(t)
	stmt := "UPDATE users SET name = 'Bob' WHERE id = 1"

	mock.ExpectBegin()
	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := s.Execute(context.Background(), stmt)
	require.NoError(t, err)
	assert.True(t, res.Mutation)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Empty(t, res.Columns)
	assert.Empty(t, res.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MutationZeroRowsIsSuccess(t *testing.T) {
	s, mock, _ := openMock(t)
	stmt := "DELETE FROM users WHERE id = 99"

	mock.ExpectBegin()
	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := s.Execute(context.Background(), stmt)
	require.NoError(t, err)
	assert.Zero(t, res.RowsAffected)
}

func TestExecute_BeginFails(t *testing.T) {
	s, mock, _ := openMock(t)

	mock.ExpectBegin().WillReturnError(errors.New("server has gone away"))

	_, err := s.Execute(context.Background(), "INSERT INTO t VALUES (1)")
	require.Error(t, err)
	assert.True(t, errs.IsTransactionBeginFailed(err))
	assert.Equal(t, "server has gone away", errs.DriverText(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_StatementFailsRollsBack(t *testing.T) {
	s, mock, _ := openMock(t)
	stmt := "INSERT INTO users (id) VALUES (1)"

	mock.ExpectBegin()
	mock.ExpectExec(stmt).WillReturnError(errors.New("Duplicate entry '1' for key 'PRIMARY'"))
	mock.ExpectRollback()

	_, err := s.Execute(context.Background(), stmt)
	require.Error(t, err)
	assert.True(t, errs.IsStatementFailed(err))
	assert.Equal(t, err, s.LastError())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CommitFails(t *testing.T) {
	s, mock, _ := openMock(t)
	stmt := "DELETE FROM users"

	mock.ExpectBegin()
	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit().WillReturnError(errors.New("deadlock detected"))

	_, err := s.Execute(context.Background(), stmt)
	require.Error(t, err)
	assert.True(t, errs.IsCommitFailed(err))
	assert.Equal(t, "deadlock detected", errs.DriverText(err))

	// the session stays open and usable
	assert.True(t, s.IsOpen())
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	res, err := s.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}}, res.Rows)
	assert.Nil(t, s.LastError())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RecordsDuration(t *testing.T) {
	s, mock, _ := openMock(t)

	mock.ExpectQuery("SELECT SLEEP(1)").
		WillDelayFor(20 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(int64(0)))

	_, err := s.Execute(context.Background(), "SELECT SLEEP(1)")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.LastDuration(), 20*time.Millisecond)
	assert.NotEqual(t, "0 ms", s.LastExecutionTime())
}

func TestExecute_RecordsDurationOnFailure(t *testing.T) {
	s, mock, _ := openMock(t)

	mock.ExpectQuery("SELECT broken").
		WillDelayFor(10 * time.Millisecond).
		WillReturnError(errors.New("syntax error"))

	_, err := s.Execute(context.Background(), "SELECT broken")
	require.Error(t, err)
	assert.GreaterOrEqual(t, s.LastDuration(), 10*time.Millisecond)
}

func TestExecute_SuccessClearsLastError(t *testing.T) {
	s, mock, _ := openMock(t)

	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("syntax error"))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	_, err := s.Execute(context.Background(), "SELECT broken")
	require.Error(t, err)
	require.Error(t, s.LastError())

	_, err = s.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.NoError(t, s.LastError())
}

func TestRender(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{[]byte("raw"), "raw"},
		{"text", "text"},
		{int64(-7), "-7"},
		{3.25, "3.25"},
		{true, "true"},
		{ts, "2024-03-01 12:30:00Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, render(tt.in))
	}
}
