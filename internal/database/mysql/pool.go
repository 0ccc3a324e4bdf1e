package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
)

// connect opens a single-connection handle through a connector so the
// password never has to be spliced into a DSN string.
func connect(_ context.Context, p database.Params, policy dialect.Policy) (*sql.DB, func(), error) {
	connector, err := gomysql.NewConnector(buildConfig(p, policy))
	if err != nil {
		return nil, nil, err
	}
	db := sql.OpenDB(connector)
	return db, func() {}, nil
}

// buildConfig translates Params into a driver config. Host is expected to be
// normalized already.
func buildConfig(p database.Params, policy dialect.Policy) *gomysql.Config {
	port := p.Port
	if port == 0 {
		port = policy.DefaultPort
	}

	cfg := gomysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, strconv.Itoa(int(port)))
	cfg.DBName = p.Database
	cfg.Timeout = policy.ConnectTimeout
	// Dates stay as driver bytes; the grid renders them verbatim.
	cfg.ParseTime = false
	return cfg
}
