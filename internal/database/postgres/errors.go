package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE error codes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrConnectionFailure = "08006"
	pgErrSyntaxError       = "42601"
	pgErrUndefinedTable    = "42P01"
	pgErrUndefinedColumn   = "42703"
	pgErrUniqueViolation   = "23505"
	pgErrForeignKey        = "23503"
	pgErrInvalidPassword   = "28P01"
	pgErrInvalidCatalog    = "3D000"
)

// describe extracts SQLSTATE and message from a server error for logging.
func describe(err error) map[string]interface{} {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	fields := map[string]interface{}{
		"sqlstate":   pgErr.Code,
		"pg_message": pgErr.Message,
	}
	if pgErr.Detail != "" {
		fields["pg_detail"] = pgErr.Detail
	}
	if reason := reasonFor(pgErr.Code); reason != "" {
		fields["reason"] = reason
	}
	return fields
}

func reasonFor(code string) string {
	switch code {
	case pgErrConnectionFailure, pgErrInvalidCatalog:
		return "connection"
	case pgErrInvalidPassword:
		return "access_denied"
	case pgErrSyntaxError, pgErrUndefinedTable, pgErrUndefinedColumn:
		return "invalid_query"
	case pgErrUniqueViolation:
		return "conflict"
	case pgErrForeignKey:
		return "foreign_key_violation"
	}
	return ""
}
