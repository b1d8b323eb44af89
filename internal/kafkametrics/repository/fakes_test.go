package repository

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v4"
)

type recordedQuery struct {
	sql  string
	args []interface{}
}

// fakeQuerier answers queries with canned rows chosen by respond, and records everything it was asked.
type fakeQuerier struct {
	mu        sync.Mutex
	queries   []recordedQuery
	txOptions []pgx.TxOptions
	rows      []*fakeRows
	respond   func(sql string) ([][]interface{}, error)
}

func respondWith(data ...[]interface{}) func(string) ([][]interface{}, error) {
	return func(string) ([][]interface{}, error) {
		return data, nil
	}
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	data, err := q.respond(sql)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, recordedQuery{sql: sql, args: args})
	if err != nil {
		return nil, err
	}
	rows := &fakeRows{data: data}
	q.rows = append(q.rows, rows)
	return rows, nil
}

func (q *fakeQuerier) BeginTxFunc(_ context.Context, txOptions pgx.TxOptions, f func(pgx.Tx) error) error {
	q.mu.Lock()
	q.txOptions = append(q.txOptions, txOptions)
	q.mu.Unlock()
	return f(&fakeTx{querier: q})
}

func (q *fakeQuerier) queryContaining(fragment string) (recordedQuery, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, query := range q.queries {
		if strings.Contains(query.sql, fragment) {
			return query, true
		}
	}
	return recordedQuery{}, false
}

func (q *fakeQuerier) allRowsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, rows := range q.rows {
		if !rows.closed {
			return false
		}
	}
	return true
}

type fakeTx struct {
	pgx.Tx
	querier *fakeQuerier
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return tx.querier.Query(ctx, sql, args...)
}

// fakeRows implements the parts of pgx.Rows the repository uses.
type fakeRows struct {
	pgx.Rows
	data   [][]interface{}
	idx    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.closed || r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan of %d columns into %d destinations", len(row), len(dest))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("column %d: %v", i, err)
		}
	}
	return nil
}

func (r *fakeRows) Close() {
	r.closed = true
}

func (r *fakeRows) Err() error {
	return r.err
}

func assign(dest interface{}, value interface{}) error {
	if scanner, ok := dest.(sql.Scanner); ok {
		return scanner.Scan(value)
	}
	target := reflect.ValueOf(dest).Elem()
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	if !v.Type().ConvertibleTo(target.Type()) {
		return fmt.Errorf("cannot assign %T to %s", value, target.Type())
	}
	target.Set(v.Convert(target.Type()))
	return nil
}
