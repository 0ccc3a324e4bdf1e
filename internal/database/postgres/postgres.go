// Package postgres registers the PostgreSQL engine, backed by the pgx
// database/sql driver.
package postgres

import (
	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
)

func init() {
	database.Register(dialect.Postgres, database.Driver{
		Connect:  connect,
		Describe: describe,
	})
}
