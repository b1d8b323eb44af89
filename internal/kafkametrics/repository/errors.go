package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
)

// QueryError reports the failure of one catalog query. Code holds the Postgres SQLSTATE when the server
// returned one.
type QueryError struct {
	Query string
	Code  string
	Err   error
}

func newQueryError(query string, err error) *QueryError {
	queryErr := &QueryError{Query: query, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		queryErr.Code = pgErr.Code
	}
	return queryErr
}

func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s query failed (SQLSTATE %s): %v", e.Query, e.Code, e.Err)
	}
	return fmt.Sprintf("%s query failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Unavailable reports whether the server refused or dropped the connection rather than failing the query itself.
func (e *QueryError) Unavailable() bool {
	switch e.Code {
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionFailure,
		pgerrcode.SQLClientUnableToEstablishSQLConnection,
		pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.CannotConnectNow,
		pgerrcode.TooManyConnections:
		return true
	}
	return false
}

// Canceled reports whether the query was cancelled, either by the caller or by a statement timeout.
func (e *QueryError) Canceled() bool {
	return e.Code == pgerrcode.QueryCanceled ||
		pgconn.Timeout(e.Err) ||
		errors.Is(e.Err, context.Canceled) ||
		errors.Is(e.Err, context.DeadlineExceeded)
}
