package dao

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/workpulse-io/workpulse/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// identifierPattern is the strict pattern a configured table name must match
// before it is interpolated into DDL/DML.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateIdentifier rejects table/column names that could smuggle SQL into
// interpolated statements.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

// Queryable is implemented by both *sqlx.DB and *sqlx.Tx.
type Queryable interface {
	sqlx.ExtContext
	GetContext(context.Context, interface{}, string, ...interface{}) error
	SelectContext(context.Context, interface{}, string, ...interface{}) error
}

// queryable resolves the transaction carried in ctx, falling back to the
// given pool handle.
func queryable(ctx context.Context, handle *sqlx.DB) Queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return handle
}

// IsTransient reports whether err is worth retrying: connectivity failures,
// pool exhaustion/closure, and query-level transient Postgres errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if IsPoolClosed(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsOperatorIntervention(pgErr.Code),
			pgErr.Code == pgerrcode.TooManyConnections,
			pgErr.Code == pgerrcode.SerializationFailure,
			pgErr.Code == pgerrcode.DeadlockDetected:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsPoolClosed detects a closed database/sql pool, which the caller recreates
// before the next attempt.
func IsPoolClosed(err error) bool {
	return err != nil && strings.Contains(err.Error(), "sql: database is closed")
}
