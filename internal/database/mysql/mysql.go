// Package mysql registers the MySQL engine with the database package.
//
//	import _ "github.com/koustreak/sqlbrowser/internal/database/mysql"
package mysql

import (
	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
)

func init() {
	database.Register(dialect.MySQL, database.Driver{
		Connect:  connect,
		Describe: describe,
	})
}
