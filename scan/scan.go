// Package scan turns pgx result rows into values through projections.
package scan

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Konsultn-Engineering/rowmap/dialect"
	"github.com/Konsultn-Engineering/rowmap/projection"
	"github.com/Konsultn-Engineering/rowmap/relpath"
	"github.com/Konsultn-Engineering/rowmap/visitor"
)

// Querier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Row exposes a pgx row to projection evaluation, addressed by the field
// names the server reports.
type Row struct {
	index  map[string]int
	values []any
}

// NewRow decodes the current row of r.
func NewRow(r pgx.CollectableRow) (*Row, error) {
	values, err := r.Values()
	if err != nil {
		return nil, err
	}
	fields := r.FieldDescriptions()
	index := make(map[string]int, len(fields))
	for i, fd := range fields {
		if _, dup := index[fd.Name]; !dup {
			index[fd.Name] = i
		}
	}
	return &Row{index: index, values: values}, nil
}

func (r *Row) Value(label string) (any, bool) {
	i, ok := r.index[label]
	if !ok || i >= len(r.values) {
		return nil, false
	}
	return r.values[i], true
}

// RowTo adapts a projection to pgx.CollectRows and friends.
//
//	orders, err := pgx.CollectRows(rows, scan.RowTo(expr))
func RowTo[T any](expr *projection.Typed[T]) pgx.RowToFunc[T] {
	return func(r pgx.CollectableRow) (T, error) {
		row, err := NewRow(r)
		if err != nil {
			var zero T
			return zero, err
		}
		return expr.New(row)
	}
}

// Collect reads every remaining row of rows and closes it.
func Collect[T any](rows pgx.Rows, expr *projection.Typed[T]) ([]T, error) {
	return pgx.CollectRows(rows, RowTo(expr))
}

// Query selects the columns of expr from the table of p and collects the
// result. Trailing SQL such as a WHERE clause may be appended through tail,
// with args bound to its placeholders.
func Query[T any](ctx context.Context, q Querier, p relpath.Path, expr *projection.Typed[T], tail string, args ...any) ([]T, error) {
	sql, err := visitor.SelectFor(dialect.NewPostgresDialect(), p, expr.Expression)
	if err != nil {
		return nil, fmt.Errorf("scan.Query: %w", err)
	}
	if tail != "" {
		sql += " " + tail
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("scan.Query: %w", err)
	}
	return Collect(rows, expr)
}
