package projection

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"

	"github.com/Konsultn-Engineering/rowmap/ast"
	"github.com/Konsultn-Engineering/rowmap/ctor"
	"github.com/Konsultn-Engineering/rowmap/schema"
	"github.com/Konsultn-Engineering/rowmap/utils"
)

// ArgKind tells where a constructor argument comes from.
type ArgKind int

const (
	ColumnArg ArgKind = iota // a column of the path
	NestedArg                // a nested projection over the same path
	NullArg                  // a typed null placeholder
)

func (k ArgKind) String() string {
	switch k {
	case ColumnArg:
		return "column"
	case NestedArg:
		return "nested"
	case NullArg:
		return "null"
	default:
		return fmt.Sprintf("ArgKind(%d)", int(k))
	}
}

// Argument binds one constructor parameter.
type Argument struct {
	Kind   ArgKind
	Param  ctor.Parameter
	Column *ast.Column // ColumnArg only; shared with the path
	Nested *Expression // NestedArg only
}

// Expression creates values of Type from result rows by invoking the
// preferred constructor with one argument per parameter, in parameter order.
type Expression struct {
	Type      reflect.Type
	Preferred *ctor.Preferred
	Args      []Argument
}

// ParamTypes returns the declared parameter types in order.
func (e *Expression) ParamTypes() []reflect.Type {
	types := make([]reflect.Type, len(e.Args))
	for i, a := range e.Args {
		types[i] = a.Param.Type
	}
	return types
}

// Columns returns every column the expression reads, nested ones included,
// in first-use order without repetitions.
func (e *Expression) Columns() []*ast.Column {
	var cols []*ast.Column
	seen := make(map[string]bool)
	e.collect(&cols, seen)
	return cols
}

func (e *Expression) collect(cols *[]*ast.Column, seen map[string]bool) {
	for _, a := range e.Args {
		switch a.Kind {
		case ColumnArg:
			if !seen[a.Column.Name] {
				seen[a.Column.Name] = true
				*cols = append(*cols, a.Column)
			}
		case NestedArg:
			a.Nested.collect(cols, seen)
		}
	}
}

// NewInstance creates a value of Type from row.
func (e *Expression) NewInstance(row Row) (any, error) {
	v, err := e.instance(row)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (e *Expression) instance(row Row) (reflect.Value, error) {
	args := make([]reflect.Value, len(e.Args))
	for i, a := range e.Args {
		switch a.Kind {
		case ColumnArg:
			raw, ok := row.Value(a.Column.Label())
			if !ok {
				return reflect.Value{}, fmt.Errorf("%s.%s: column %q missing from row", e.Type, a.Param.Name, a.Column.Label())
			}
			v, err := schema.Convert(raw, a.Param.Type)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s.%s: %w", e.Type, a.Param.Name, err)
			}
			args[i] = v

		case NestedArg:
			v, err := a.Nested.instance(row)
			if err != nil {
				return reflect.Value{}, err
			}
			if a.Param.Type.Kind() == reflect.Ptr {
				ptr := reflect.New(v.Type())
				ptr.Elem().Set(v)
				v = ptr
			}
			args[i] = v

		case NullArg:
			args[i] = reflect.Zero(a.Param.Type)
		}
	}

	v, err := e.Preferred.New(args)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("create %s: %w", e.Type, err)
	}
	return v, nil
}

// Fingerprint hashes the structure of the expression: type, constructor,
// parameter names and types, binding kinds and columns. Two builds of the
// same type over the same path have equal fingerprints.
func (e *Expression) Fingerprint() uint64 {
	h := utils.Fingerprint("expr", e.Type.String(), e.Preferred.Constructor.Name)
	for _, a := range e.Args {
		h = utils.Mix64(h, utils.Fingerprint(a.Kind.String(), a.Param.Name, a.Param.Type.String()))
		switch a.Kind {
		case ColumnArg:
			h = utils.Mix64(h, a.Column.Fingerprint())
		case NestedArg:
			h = utils.Mix64(h, a.Nested.Fingerprint())
		}
	}
	return h
}

type description struct {
	Type        string                `json:"type"`
	Constructor string                `json:"constructor"`
	Args        []argumentDescription `json:"args"`
}

type argumentDescription struct {
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Kind   string       `json:"kind"`
	Column string       `json:"column,omitempty"`
	Nested *description `json:"nested,omitempty"`
}

func (e *Expression) describe() *description {
	d := &description{
		Type:        e.Type.String(),
		Constructor: e.Preferred.Constructor.Name,
		Args:        make([]argumentDescription, len(e.Args)),
	}
	for i, a := range e.Args {
		ad := argumentDescription{Name: a.Param.Name, Type: a.Param.Type.String(), Kind: a.Kind.String()}
		switch a.Kind {
		case ColumnArg:
			ad.Column = a.Column.Qualified()
		case NestedArg:
			ad.Nested = a.Nested.describe()
		}
		d.Args[i] = ad
	}
	return d
}

// MarshalJSON describes the expression for debugging.
func (e *Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.describe())
}

// Row is a result row addressed by column label.
type Row interface {
	Value(label string) (any, bool)
}

// MapRow is a Row backed by a map.
type MapRow map[string]any

func (r MapRow) Value(label string) (any, bool) {
	v, ok := r[label]
	return v, ok
}
