// Package database owns the connection lifecycle of the browser: a Session
// holds at most one live handle, opens and closes it, re-points it at another
// database and runs statements with the transaction protocol in execute.go.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/logger"
)

// Session wraps at most one open connection handle.
//
// A Session is not safe for concurrent use: one statement is in flight at a
// time and callers that need responsiveness run it on their own goroutine.
type Session struct {
	name    string
	log     *logger.Logger
	drivers map[dialect.Driver]Driver

	params  Params
	policy  dialect.Policy
	db      *sql.DB
	release func()
	driver  Driver

	lastErr error
	lastDur time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for connect and statement events.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithDriver overrides the registered Driver for one engine on this session only.
func WithDriver(d dialect.Driver, drv Driver) Option {
	return func(s *Session) { s.drivers[d] = drv }
}

// New returns a closed Session with a fresh connection name.
func New(opts ...Option) *Session {
	s := &Session{
		name:    "sqlbrowser-" + uuid.NewString(),
		log:     logger.Nop(),
		drivers: make(map[dialect.Driver]Driver),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name is the unique connection name this session registers its handle under.
// It stays the same across open/close cycles.
func (s *Session) Name() string { return s.name }

// Open validates p and connects. Invalid params fail before anything else
// happens, and an already open connection is kept in that case. Otherwise
// any existing connection is closed first, the policy's host rule and connect
// timeout are applied, and the handle is opened and pinged.
//
// On failure the session is closed and LastError reports why.
func (s *Session) Open(ctx context.Context, p Params) error {
	if err := p.Validate(); err != nil {
		s.lastErr = err
		return err
	}

	_ = s.Close()

	policy := dialect.For(p.Driver)
	target := p
	target.Host = policy.NormalizeHost(p.Host)

	log := s.log.With().
		Str("session", s.name).
		Str("driver", string(p.Driver)).
		Str("host", target.Host).
		Int("port", int(target.Port)).
		Str("database", target.Database).
		Str("user", target.User).
		Logger()
	log.Info("connecting")

	drv, ok := s.resolve(p.Driver)
	if !ok {
		err := errs.New(errs.ErrKindConnectFailed, fmt.Sprintf("driver %q is not available", p.Driver))
		s.lastErr = err
		log.ErrorWith("connect failed", err, nil)
		return err
	}

	db, release, err := drv.Connect(ctx, target, policy)
	if err != nil {
		s.lastErr = errs.Wrap(errs.ErrKindConnectFailed, "connect failed", err)
		log.ErrorWith("connect failed", err, describe(drv, err))
		return s.lastErr
	}
	if release == nil {
		release = func() {}
	}

	// One handle per session: the pool never grows past a single connection.
	db.SetMaxOpenConns(1)

	pingCtx := ctx
	if policy.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, policy.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		release()
		s.lastErr = errs.Wrap(errs.ErrKindConnectFailed, "connect failed", err)
		log.ErrorWith("connect failed", err, describe(drv, err))
		return s.lastErr
	}

	s.params = p
	s.policy = policy
	s.db = db
	s.release = release
	s.driver = drv
	s.lastErr = nil
	register(s.name)

	log.Info("connected")
	return nil
}

// Close releases the connection and its registration. Closing a closed
// session is a no-op.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.release()
	unregister(s.name)

	s.db = nil
	s.release = nil
	s.log.With().Str("session", s.name).Logger().Debug("closed")
	return err
}

// IsOpen reports whether the session holds a live handle.
func (s *Session) IsOpen() bool {
	return s.db != nil
}

// SwitchDatabase reopens the session with the same credentials on another
// database. The session must be open. On any failure, including an invalid
// name, it is left closed.
func (s *Session) SwitchDatabase(ctx context.Context, name string) error {
	if !s.IsOpen() {
		s.lastErr = errNotConnected()
		return s.lastErr
	}
	if err := s.Open(ctx, s.params.WithDatabase(name)); err != nil {
		_ = s.Close()
		return err
	}
	return nil
}

// Params returns the params of the last successful Open, as supplied
// (before host normalization).
func (s *Session) Params() Params { return s.params }

// Policy returns the dialect policy of the current connection. For a session
// that was never opened it is the policy of the zero driver.
func (s *Session) Policy() dialect.Policy {
	if s.policy.Driver == "" {
		return dialect.For(s.params.Driver)
	}
	return s.policy
}

// LastError returns the error of the most recent failed operation, or nil
// if the most recent Open or Execute succeeded.
func (s *Session) LastError() error { return s.lastErr }

// LastDuration is the wall-clock time of the most recent Execute call,
// recorded whether it succeeded or not.
func (s *Session) LastDuration() time.Duration { return s.lastDur }

// LastExecutionTime renders LastDuration for a status line, e.g. "12 ms".
func (s *Session) LastExecutionTime() string {
	return fmt.Sprintf("%d ms", s.lastDur.Milliseconds())
}

// ListDatabases runs the policy's database listing. A closed session or an
// engine without a listing gives an empty slice.
func (s *Session) ListDatabases(ctx context.Context) ([]string, error) {
	if !s.IsOpen() || s.policy.ListDatabases == "" {
		return []string{}, nil
	}
	return s.column(ctx, "failed to list databases", s.policy.ListDatabases)
}

// ListTables returns the tables of the current database. A closed session
// gives an empty slice.
func (s *Session) ListTables(ctx context.Context) ([]string, error) {
	if !s.IsOpen() || s.policy.ListTables == "" {
		return []string{}, nil
	}
	return s.column(ctx, "failed to list tables", s.policy.ListTables)
}

// PrimaryKey returns the primary key columns of table, or an empty slice if
// it has none or the session is closed.
func (s *Session) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	if !s.IsOpen() || s.policy.PrimaryKey == "" {
		return []string{}, nil
	}
	return s.column(ctx, "failed to fetch primary key", s.policy.PrimaryKey, table)
}

func (s *Session) column(ctx context.Context, msg, q string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStatementFailed, msg, err)
	}
	names, err := firstColumn(rows)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStatementFailed, msg, err)
	}
	return names, nil
}

func (s *Session) resolve(d dialect.Driver) (Driver, bool) {
	if drv, ok := s.drivers[d]; ok {
		return drv, true
	}
	return lookupDriver(d)
}

// Test opens a throwaway session for p and closes it again.
func Test(ctx context.Context, p Params, opts ...Option) error {
	s := New(opts...)
	defer s.Close()
	return s.Open(ctx, p)
}

func errNotConnected() *errs.Error {
	return errs.New(errs.ErrKindNotConnected, "no open connection")
}

func describe(drv Driver, err error) map[string]interface{} {
	if drv.Describe == nil {
		return nil
	}
	return drv.Describe(err)
}
