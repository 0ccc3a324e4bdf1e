// Package sqlite registers the embedded SQLite engine. The Database param
// is the file path; host, port and user are accepted for uniformity and
// otherwise ignored.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"modernc.org/sqlite"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
)

const busyTimeoutPragma = "_pragma=busy_timeout(5000)"

func init() {
	database.Register(dialect.SQLite, database.Driver{
		Connect:  connect,
		Describe: describe,
	})
}

func connect(_ context.Context, p database.Params, policy dialect.Policy) (*sql.DB, func(), error) {
	db, err := sql.Open(policy.SQLDriver, dsn(p.Database))
	if err != nil {
		return nil, nil, err
	}
	return db, func() {}, nil
}

func dsn(path string) string {
	return path + "?" + busyTimeoutPragma
}

func describe(err error) map[string]interface{} {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	return map[string]interface{}{
		"sqlite_code": sqliteErr.Code(),
	}
}
