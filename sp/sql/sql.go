// Package sql provides stream adapters for database operations using database/sql.
// Query turns a result set into a bounded stream; Insert is a processor
// executing a statement for each input it reads.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Querier is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Execer is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner is a function that scans a row into a value.
type Scanner[T any] func(*sql.Rows) (T, error)

// Query executes query and returns its rows as a bounded stream, scanned
// with scanner. The first row is read before Query returns; every Tail
// reads one more. An empty result set is ErrExhausted.
//
// The rows are closed when the stream is exhausted or fails. A caller
// abandoning the stream early should cancel ctx, which makes database/sql
// close them.
func Query[T any](ctx context.Context, db Querier, query string, scanner Scanner[T], args ...any) (core.Stream[T], error) {
	if scanner == nil {
		panic("sql: nil scanner")
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sql: query: %w", err)
	}
	return nextRow(rows, scanner)
}

func nextRow[T any](rows *sql.Rows, scanner Scanner[T]) (core.Stream[T], error) {
	if !rows.Next() {
		err := rows.Err()
		if cerr := rows.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("sql: rows: %w", err)
		}
		return nil, core.ErrExhausted
	}
	v, err := scanner(rows)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("sql: scan: %w", err), rows.Close())
	}
	return &row[T]{head: v, rows: rows, scanner: scanner}, nil
}

// row is one node of a result-set stream. The successor is read at most
// once, so the cursor is never advanced twice for the same node.
type row[T any] struct {
	head    T
	rows    *sql.Rows
	scanner Scanner[T]

	once sync.Once
	tail core.Stream[T]
	err  error
}

func (r *row[T]) Head() T {
	return r.head
}

func (r *row[T]) Tail() (core.Stream[T], error) {
	r.once.Do(func() {
		r.tail, r.err = nextRow(r.rows, r.scanner)
		r.rows, r.scanner = nil, nil
	})
	return r.tail, r.err
}

// ExecResult contains the result of an exec operation.
type ExecResult struct {
	LastInsertId int64
	RowsAffected int64
}

// Insert returns a processor executing query once per input, with the
// arguments produced by bind. Each execution emits its ExecResult, or the
// failure of the statement, as a Result; a failed row does not stop the
// processor.
func Insert[T any](ctx context.Context, db Execer, query string, bind func(T) []any) core.Processor[T, core.Result[ExecResult]] {
	if bind == nil {
		panic("sql: nil binder")
	}
	return core.Map(func(v T) core.Result[ExecResult] {
		res, err := db.ExecContext(ctx, query, bind(v)...)
		if err != nil {
			return core.Err[ExecResult](fmt.Errorf("sql: exec: %w", err))
		}
		lastID, _ := res.LastInsertId()
		rowsAffected, _ := res.RowsAffected()
		return core.Ok(ExecResult{
			LastInsertId: lastID,
			RowsAffected: rowsAffected,
		})
	})
}

// Sink inserts every element of the bounded stream s and returns the total
// number of affected rows. It stops at the first failed statement.
func Sink[T any](ctx context.Context, db Execer, query string, s core.Stream[T], bind func(T) []any) (int64, error) {
	results, err := core.Eval(Insert(ctx, db, query, bind), s)
	var total int64
	for err == nil {
		res, execErr := results.Head().Unwrap()
		if execErr != nil {
			return total, execErr
		}
		total += res.RowsAffected
		results, err = results.Tail()
	}
	if core.IsExhausted(err) {
		return total, nil
	}
	return total, err
}

// ScanStrings scans a row of any shape into a slice of strings.
func ScanStrings(rows *sql.Rows) ([]string, error) {
	values, _, err := scanAny(rows)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			result[i] = ""
		case []byte:
			result[i] = string(val)
		case string:
			result[i] = val
		case int64:
			result[i] = fmt.Sprintf("%d", val)
		case float64:
			result[i] = fmt.Sprintf("%g", val)
		case bool:
			result[i] = fmt.Sprintf("%t", val)
		default:
			result[i] = fmt.Sprintf("%v", val)
		}
	}
	return result, nil
}

// ScanMap scans a row into a map with column names as keys.
func ScanMap(rows *sql.Rows) (map[string]any, error) {
	values, cols, err := scanAny(rows)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any, len(cols))
	for i, col := range cols {
		result[col] = values[i]
	}
	return result, nil
}

func scanAny(rows *sql.Rows) ([]any, []string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	values := make([]any, len(cols))
	valuePtrs := make([]any, len(cols))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, nil, err
	}
	return values, cols, nil
}
