package database

import (
	"context"
	"time"

	"github.com/koustreak/sqlbrowser/internal/errs"
)

// Execute runs one statement on the open connection.
//
// UPDATE, INSERT and DELETE statements (see IsMutation) run inside a
// transaction: begin, exec, commit, rolling back if exec or commit fails.
// Anything else is run as a query and its rows are materialized.
//
// The wall-clock duration of the call is recorded for LastDuration on every
// path except the not-connected one, and LastError is set to the returned
// error (nil on success).
func (s *Session) Execute(ctx context.Context, stmt string) (*QueryResult, error) {
	if !s.IsOpen() {
		s.lastErr = errNotConnected()
		return nil, s.lastErr
	}

	start := time.Now()
	defer func() { s.lastDur = time.Since(start) }()

	var (
		res *QueryResult
		err error
	)
	if IsMutation(stmt) {
		res, err = s.mutate(ctx, stmt)
	} else {
		res, err = s.query(ctx, stmt)
	}

	log := s.log.With().
		Str("session", s.name).
		Dur("elapsed_ms", time.Since(start)).
		Logger()
	if err != nil {
		s.lastErr = err
		log.WarnWith("statement failed", err, withKind(describe(s.driver, err), err))
		return nil, err
	}
	s.lastErr = nil
	log.DebugWith("statement executed", map[string]interface{}{
		"statement": stmt,
		"mutation":  res.Mutation,
		"rows":      len(res.Rows),
	})
	return res, nil
}

func withKind(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields["kind"] = errs.KindOf(err).String()
	return fields
}

// --- transaction protocol ---

func (s *Session) mutate(ctx context.Context, stmt string) (*QueryResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindTransactionBeginFailed, "failed to begin transaction", err)
	}

	result, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		_ = tx.Rollback()
		return nil, errs.Wrap(errs.ErrKindStatementFailed, "statement failed", err)
	}

	if err := tx.Commit(); err != nil {
		// database/sql marks the tx done before the driver commit runs, so
		// this usually reports sql.ErrTxDone. The server has already
		// discarded the transaction in that case.
		_ = tx.Rollback()
		return nil, errs.Wrap(errs.ErrKindCommitFailed, "commit failed", err)
	}

	res := &QueryResult{Columns: []string{}, Rows: [][]string{}, Mutation: true}
	if n, err := result.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	return res, nil
}

func (s *Session) query(ctx context.Context, stmt string) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStatementFailed, "statement failed", err)
	}
	res, err := collect(rows)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStatementFailed, "failed to read rows", err)
	}
	return res, nil
}
