package testutils

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/postgres"
)

// Query is one statement seen by FakeDB
type Query struct {
	SQL  string
	Args []any
}

// FakeDB is a scripted postgres.DBTX. Each call pops the next queued
// response for its method.
type FakeDB struct {
	mu      sync.Mutex
	queries []Query
	rows    []*FakeRows
	execErr []error
}

var _ postgres.DBTX = (*FakeDB)(nil)

// NewFakeDB creates an empty FakeDB
func NewFakeDB() *FakeDB {
	return &FakeDB{}
}

// QueueRows queues the result of the next Query or QueryRow call
func (f *FakeDB) QueueRows(rows *FakeRows) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows)
}

// QueueExecError queues the error returned by the next Exec call
func (f *FakeDB) QueueExecError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execErr = append(f.execErr, err)
}

// Queries returns every statement seen so far
func (f *FakeDB) Queries() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Query(nil), f.queries...)
}

// Exec records the statement
func (f *FakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, Query{SQL: sql, Args: args})
	if len(f.execErr) == 0 {
		return pgconn.NewCommandTag("OK"), nil
	}
	err := f.execErr[0]
	f.execErr = f.execErr[1:]
	return pgconn.NewCommandTag("OK"), err
}

// Query returns the next queued rows
func (f *FakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows := f.next(sql, args)
	if rows.QueryErr != nil {
		return nil, rows.QueryErr
	}
	return rows, nil
}

// QueryRow returns the first row of the next queued rows, or
// pgx.ErrNoRows when none were queued
func (f *FakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	rows := f.next(sql, args)
	return &fakeRow{rows: rows}
}

func (f *FakeDB) next(sql string, args []any) *FakeRows {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, Query{SQL: sql, Args: args})
	if len(f.rows) == 0 {
		return &FakeRows{}
	}
	rows := f.rows[0]
	f.rows = f.rows[1:]
	return rows
}

// FakeRows is a canned result set
type FakeRows struct {
	Data     [][]any
	QueryErr error
	ScanErr  error

	pos    int
	closed bool
}

var _ pgx.Rows = (*FakeRows)(nil)

// NewFakeRows builds a result set from rows of column values
func NewFakeRows(data ...[]any) *FakeRows {
	return &FakeRows{Data: data}
}

func (r *FakeRows) Close()                                       { r.closed = true }
func (r *FakeRows) Err() error                                   { return nil }
func (r *FakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *FakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *FakeRows) RawValues() [][]byte                          { return nil }
func (r *FakeRows) Conn() *pgx.Conn                              { return nil }

func (r *FakeRows) Next() bool {
	if r.closed || r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *FakeRows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.Data) {
		return nil, fmt.Errorf("no current row")
	}
	return r.Data[r.pos-1], nil
}

func (r *FakeRows) Scan(dest ...any) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}
	values, err := r.Values()
	if err != nil {
		return err
	}
	return assign(values, dest)
}

type fakeRow struct {
	rows *FakeRows
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.rows.QueryErr != nil {
		return r.rows.QueryErr
	}
	if !r.rows.Next() {
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if v == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		src := reflect.ValueOf(v)
		if !src.Type().AssignableTo(elem.Type()) {
			if !src.Type().ConvertibleTo(elem.Type()) {
				return fmt.Errorf("scan: cannot assign %T to %s", v, elem.Type())
			}
			src = src.Convert(elem.Type())
		}
		elem.Set(src)
	}
	return nil
}
