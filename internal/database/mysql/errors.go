package mysql

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDuplicateEntry  = 1062
	errNoReferencedRow = 1452
	errRowIsReferenced = 1451
	errBadFieldError   = 1054
	errAccessDenied    = 1045
	errConnRefused     = 2003
	errUnknownDatabase = 1049
	errNoSuchTable     = 1146
	errParse           = 1064
)

// describe extracts the server error number and message for logging.
// Non-server errors (network, driver) give nil.
func describe(err error) map[string]interface{} {
	var mysqlErr *gomysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return nil
	}
	fields := map[string]interface{}{
		"mysql_errno":   mysqlErr.Number,
		"mysql_message": mysqlErr.Message,
	}
	if reason := reasonFor(mysqlErr.Number); reason != "" {
		fields["reason"] = reason
	}
	if state := string(mysqlErr.SQLState[:]); state != "\x00\x00\x00\x00\x00" {
		fields["sqlstate"] = state
	}
	return fields
}

func reasonFor(number uint16) string {
	switch number {
	case errDuplicateEntry:
		return "conflict"
	case errNoReferencedRow, errRowIsReferenced:
		return "foreign_key_violation"
	case errAccessDenied:
		return "access_denied"
	case errConnRefused, errUnknownDatabase:
		return "connection"
	case errBadFieldError, errNoSuchTable, errParse:
		return "invalid_query"
	}
	return ""
}
