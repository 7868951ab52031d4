// Package rowmap maps relational rows onto Go values through their
// constructors.
//
// Entity types register their factory functions with a meta.Catalog, and
// qgen generates a path holder for every type marked //rowmap:entity. A
// projection then binds each constructor parameter to a column of the path:
//
//	rowmap.MustRegister[Money](meta.Func(NewMoney, meta.Params("amountMinor", "currency")))
//
//	expr, err := rowmap.Project[Money](qMoney)
//	money, err := expr.New(row)
//
// The package-level functions use meta.Default, relpath.Default and a shared
// projection cache.
package rowmap

import (
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/rowmap/cache"
	"github.com/Konsultn-Engineering/rowmap/dialect"
	"github.com/Konsultn-Engineering/rowmap/meta"
	"github.com/Konsultn-Engineering/rowmap/projection"
	"github.com/Konsultn-Engineering/rowmap/relpath"
	"github.com/Konsultn-Engineering/rowmap/visitor"
)

var (
	factory     = projection.NewFactory()
	projections = mustProjections(factory)
	queries     = cache.NewQueryCache()
)

func mustProjections(b cache.Builder) *cache.Projections {
	p, err := cache.NewProjections(b)
	if err != nil {
		panic(err)
	}
	return p
}

// Register records constructor metadata for T in meta.Default.
func Register[T any](options ...meta.TypeOption) error {
	return meta.Register[T](meta.Default, options...)
}

// MustRegister is Register for package initialization.
func MustRegister[T any](options ...meta.TypeOption) {
	meta.MustRegister[T](meta.Default, options...)
}

// PathOf returns the generated path holder of entity type T.
func PathOf[T any]() (relpath.Path, error) {
	return relpath.NewResolver(relpath.Default).ForEntity(reflect.TypeFor[T]())
}

// PathFor returns the path holder of the entity managed by repository type R.
func PathFor[R any]() (relpath.Path, error) {
	return factory.RelationalPathFor(reflect.TypeFor[R]())
}

// Project returns the projection of T over p. Projections are cached by type
// and path structure.
func Project[T any](p relpath.Path) (*projection.Typed[T], error) {
	return projection.For[T](projections, p)
}

// SelectSQL renders the SELECT reading the columns the projection of T needs
// from the table of p.
func SelectSQL[T any](d dialect.Dialect, p relpath.Path) (string, error) {
	expr, err := Project[T](p)
	if err != nil {
		return "", err
	}
	q, err := visitor.Render(d, queries, visitor.Select(p, expr.Expression))
	if err != nil {
		return "", fmt.Errorf("rowmap.SelectSQL: %w", err)
	}
	return q.SQL, nil
}
