// Package dialect holds the per-engine policy table: identifier quoting,
// default ports, introspection statements and connect-time host rules.
//
// Adding an engine means adding one Policy entry to the table; nothing
// outside this package branches on a driver name.
package dialect

import (
	"strings"
	"time"
)

// Driver identifies the database engine a connection talks to.
type Driver string

const (
	MySQL    Driver = "mysql"
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

// Default is the engine preselected for new servers.
const Default = MySQL

// loopbackIPv4 replaces the literal host "localhost" for MySQL.
const loopbackIPv4 = "127.0.0.1"

// Policy describes how sqlbrowser talks to one engine.
type Policy struct {
	// Driver is the engine identifier.
	Driver Driver

	// SQLDriver is the database/sql driver name registered for the engine.
	SQLDriver string

	// Open and Close quote an identifier.
	Open, Close string

	// DefaultPort is a UI convenience when switching engine; it is never
	// enforced when connecting.
	DefaultPort uint16

	// ListDatabases returns database names in its first column.
	// Empty means the engine has no listing and yields an empty list.
	ListDatabases string

	// ListTables returns table names of the current database in its first column.
	ListTables string

	// PrimaryKey returns the primary key column names of the table bound to
	// its single placeholder, in key order.
	PrimaryKey string

	// LoopbackLocalhost rewrites the literal host "localhost" to 127.0.0.1
	// before connecting.
	LoopbackLocalhost bool

	// ConnectTimeout bounds connection establishment. Zero leaves the
	// driver default in place.
	ConnectTimeout time.Duration
}

var policies = map[Driver]Policy{
	MySQL: {
		Driver:        MySQL,
		SQLDriver:     "mysql",
		Open:          "`",
		Close:         "`",
		DefaultPort:   3306,
		ListDatabases: "SHOW DATABASES",
		ListTables: `SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`,
		PrimaryKey: `SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema    = DATABASE()
		  AND table_name      = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`,
		LoopbackLocalhost: true,
		ConnectTimeout:    20 * time.Second,
	},
	Postgres: {
		Driver:        Postgres,
		SQLDriver:     "pgx",
		Open:          `"`,
		Close:         `"`,
		DefaultPort:   5432,
		ListDatabases: "SELECT datname FROM pg_database WHERE datistemplate = false",
		ListTables: `SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`,
		PrimaryKey: `SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = 'public'
		  AND tc.table_name      = $1
		ORDER BY kcu.ordinal_position`,
	},
	SQLite: {
		Driver:    SQLite,
		SQLDriver: "sqlite",
		Open:      `"`,
		Close:     `"`,
		ListTables: `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`,
		PrimaryKey: `SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`,
	},
}

// For returns the policy for d. Unrecognised drivers get the MySQL-family
// quoting with no introspection and no host rewrite.
func For(d Driver) Policy {
	if p, ok := policies[d]; ok {
		return p
	}
	return Policy{Driver: d, Open: "`", Close: "`"}
}

// Known reports whether d has an entry in the policy table.
func Known(d Driver) bool {
	_, ok := policies[d]
	return ok
}

// Drivers lists the engines in the policy table in a stable order.
func Drivers() []Driver {
	return []Driver{MySQL, Postgres, SQLite}
}

// Quote wraps name in the policy's identifier quotes. The name is inserted
// as-is; embedded quote characters are not escaped.
func (p Policy) Quote(name string) string {
	return p.Open + name + p.Close
}

// NormalizeHost applies the connect-time host rule. Only policies with
// LoopbackLocalhost rewrite, and only the literal name "localhost"
// (case-insensitive); every other host passes through unchanged.
func (p Policy) NormalizeHost(host string) string {
	if p.LoopbackLocalhost && strings.EqualFold(host, "localhost") {
		return loopbackIPv4
	}
	return host
}

// SelectAll returns the statement that loads every row of table.
func (p Policy) SelectAll(table string) string {
	return "SELECT * FROM " + p.Quote(table)
}

// DefaultPort returns the port to preselect when the user switches to d.
func DefaultPort(d Driver) uint16 {
	return For(d).DefaultPort
}

// Supported reports whether a database/sql driver name belongs to an engine
// in the policy table. Callers use it to filter what they present.
func Supported(sqlDriver string) bool {
	name := strings.ToLower(sqlDriver)
	for _, family := range []string{"mysql", "postgres", "pgx", "sqlite"} {
		if strings.Contains(name, family) {
			return true
		}
	}
	return false
}
