package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
)

const defaultSSLMode = "prefer"

// connect parses the params into a pgx config and opens it through the pgx
// database/sql driver.
func connect(_ context.Context, p database.Params, policy dialect.Policy) (*sql.DB, func(), error) {
	cfg, err := pgx.ParseConfig(buildDSN(p, policy))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	cfg.ConnectTimeout = policy.ConnectTimeout

	db, _, release, err := openRegistered(cfg, policy.SQLDriver)
	return db, release, err
}

// openRegistered registers cfg with the pgx driver under a generated name
// and opens a handle on it. The release func drops that registration once
// the handle is closed.
func openRegistered(cfg *pgx.ConnConfig, driverName string) (*sql.DB, string, func(), error) {
	name := stdlib.RegisterConnConfig(cfg)
	db, err := sql.Open(driverName, name)
	if err != nil {
		stdlib.UnregisterConnConfig(name)
		return nil, "", nil, err
	}
	return db, name, func() { stdlib.UnregisterConnConfig(name) }, nil
}

// buildDSN constructs a keyword/value connection string. Values are always
// quoted so spaces and quotes in passwords survive parsing.
func buildDSN(p database.Params, policy dialect.Policy) string {
	port := p.Port
	if port == 0 {
		port = policy.DefaultPort
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(p.Host), port, quote(p.User), quote(p.Password), quote(p.Database), defaultSSLMode,
	)
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}
