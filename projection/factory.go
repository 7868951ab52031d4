// Package projection builds constructor projections: expressions that create
// a value of a type from the columns of a relational path by calling the
// type's preferred constructor.
//
// Parameters bind to path columns by name, or by the column name of the
// persistent field they are named after. A parameter without a column is
// built recursively from the same path when it names an embedded field, and
// receives a typed null placeholder when it names an externally populated
// collection. Anything else is a configuration error.
package projection

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/Konsultn-Engineering/rowmap/ast"
	"github.com/Konsultn-Engineering/rowmap/ctor"
	"github.com/Konsultn-Engineering/rowmap/errs"
	"github.com/Konsultn-Engineering/rowmap/meta"
	"github.com/Konsultn-Engineering/rowmap/relpath"
)

const opBuild errs.Op = "projection.ConstructorExpression"

// Factory discovers constructors and builds projections. It keeps no state
// between calls and is safe for concurrent use.
type Factory struct {
	introspector meta.Introspector
	predicates   meta.Predicates
	resolver     *relpath.Resolver
	logger       *slog.Logger
}

type Option func(*Factory)

// WithIntrospector sets the source of constructor and field metadata.
func WithIntrospector(in meta.Introspector) Option {
	return func(f *Factory) { f.introspector = in }
}

// WithPredicates replaces the annotation predicates.
func WithPredicates(p meta.Predicates) Option {
	return func(f *Factory) { f.predicates = p }
}

// WithResolver sets the resolver used by RelationalPathFor.
func WithResolver(r *relpath.Resolver) Option {
	return func(f *Factory) { f.resolver = r }
}

// WithLogger enables debug logging of discoveries and builds.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

// NewFactory creates a factory backed by meta.Default and relpath.Default
// unless configured otherwise.
func NewFactory(options ...Option) *Factory {
	f := &Factory{
		introspector: meta.Default,
		predicates:   meta.DefaultPredicates(),
		resolver:     relpath.NewResolver(relpath.Default),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// PreferredConstructor selects the constructor used to create values of t.
func (f *Factory) PreferredConstructor(t reflect.Type) (*ctor.Preferred, error) {
	p, err := ctor.Discover(t, f.introspector, f.predicates)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("discovered constructor",
		slog.String("type", t.String()),
		slog.String("constructor", p.Constructor.Name),
		slog.Int("params", len(p.Params)))
	return p, nil
}

// RelationalPathFor returns the generated path of the entity managed by the
// repository type repo.
func (f *Factory) RelationalPathFor(repo reflect.Type) (relpath.Path, error) {
	return f.resolver.ForRepository(repo)
}

// ConstructorExpression builds the projection of t over p.
func (f *Factory) ConstructorExpression(t reflect.Type, p relpath.Path) (*Expression, error) {
	if p == nil {
		return nil, fmt.Errorf("%s: nil path for %v", opBuild, t)
	}
	columns, err := columnsByName(t, p)
	if err != nil {
		return nil, err
	}

	expr, err := f.build(t, columns, nil)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("built projection",
		slog.String("type", t.String()),
		slog.String("table", p.Table().Name),
		slog.Int("args", len(expr.Args)),
		slog.Int("columns", len(expr.Columns())))
	return expr, nil
}

func columnsByName(t reflect.Type, p relpath.Path) (map[string]*ast.Column, error) {
	cols := p.Columns()
	byName := make(map[string]*ast.Column, len(cols))
	for _, c := range cols {
		if _, dup := byName[c.Name]; dup {
			return nil, errs.Param(opBuild, errs.ErrDuplicateColumn, t, c.Name, "column appears twice in path")
		}
		byName[c.Name] = c
	}
	return byName, nil
}

// build creates the projection of t. outer lists the types whose
// projections are being built around this one.
func (f *Factory) build(t reflect.Type, columns map[string]*ast.Column, outer []reflect.Type) (*Expression, error) {
	preferred, err := f.PreferredConstructor(t)
	if err != nil {
		return nil, err
	}

	fields, err := f.introspector.Fields(t)
	if err != nil {
		return nil, errs.Wrap(opBuild, errs.ErrUnresolvableParameter, t, err)
	}
	byProperty := make(map[string]*meta.Field, len(fields))
	for _, fd := range fields {
		byProperty[fd.Property] = fd
	}

	chain := append(slices.Clip(outer), t)
	args := make([]Argument, len(preferred.Params))
	for i, param := range preferred.Params {
		if !param.Named() {
			return nil, errs.Param(opBuild, errs.ErrUnresolvableParameter, t,
				fmt.Sprintf("#%d", i), "parameter name not available")
		}

		if col, ok := columns[param.Name]; ok {
			args[i] = Argument{Kind: ColumnArg, Param: param, Column: col}
			continue
		}

		field, ok := byProperty[param.Name]
		switch {
		case ok && !f.isEmbedded(field) && !f.isCollection(field) && columns[field.Column] != nil:
			// Parameter named after a field whose column name differs.
			args[i] = Argument{Kind: ColumnArg, Param: param, Column: columns[field.Column]}

		case ok && f.isEmbedded(field):
			nestedType := field.Type
			if nestedType.Kind() == reflect.Ptr {
				nestedType = nestedType.Elem()
			}
			if slices.Contains(chain, nestedType) {
				return nil, errs.Param(opBuild, errs.ErrUnresolvableParameter, t, param.Name, "embedded cycle")
			}
			nested, err := f.build(nestedType, columns, chain)
			if err != nil {
				return nil, err
			}
			args[i] = Argument{Kind: NestedArg, Param: param, Nested: nested}

		case ok && f.isCollection(field):
			args[i] = Argument{Kind: NullArg, Param: param}

		default:
			return nil, errs.Param(opBuild, errs.ErrUnresolvableParameter, t, param.Name,
				"no matching column, embedded field or collection field")
		}
	}

	return &Expression{Type: t, Preferred: preferred, Args: args}, nil
}

func (f *Factory) isEmbedded(fd *meta.Field) bool {
	return f.predicates.IsEmbedded != nil && f.predicates.IsEmbedded(fd)
}

func (f *Factory) isCollection(fd *meta.Field) bool {
	return f.predicates.IsCollection != nil && f.predicates.IsCollection(fd)
}

// Builder builds projections. *Factory implements it, as do caches wrapping
// a Factory.
type Builder interface {
	ConstructorExpression(t reflect.Type, p relpath.Path) (*Expression, error)
}

// Typed is an Expression whose instances are known to be of type T.
type Typed[T any] struct {
	*Expression
	pointer bool
}

// For builds the projection of T over p. T may be a struct type or a pointer
// to one.
func For[T any](b Builder, p relpath.Path) (*Typed[T], error) {
	t := reflect.TypeFor[T]()
	pointer := t.Kind() == reflect.Ptr
	if pointer {
		t = t.Elem()
	}
	expr, err := b.ConstructorExpression(t, p)
	if err != nil {
		return nil, err
	}
	return &Typed[T]{Expression: expr, pointer: pointer}, nil
}

// New creates a T from row.
func (e *Typed[T]) New(row Row) (T, error) {
	var zero T
	v, err := e.instance(row)
	if err != nil {
		return zero, err
	}
	if e.pointer {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		v = ptr
	}
	return v.Interface().(T), nil
}
