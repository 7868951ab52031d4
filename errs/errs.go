// Package errs defines the configuration errors raised while discovering
// constructors, resolving relational paths and building projections.
//
// Every error is permanent: it describes a mismatch between a domain type and
// its schema and is never retried. Match kinds with errors.Is:
//
//	if errors.Is(err, errs.ErrUnresolvableParameter) { ... }
package errs

import (
	"errors"
	"reflect"
	"strings"
)

// Op names the operation that detected an error, in "pkg.Func" form.
type Op string

var (
	ErrNoUsableConstructor       = errors.New("no usable constructor")
	ErrUnresolvableParameter     = errors.New("unresolvable parameter")
	ErrUnresolvableEntityType    = errors.New("unresolvable entity type")
	ErrMissingGeneratedPathType  = errors.New("missing generated path type")
	ErrMissingPathSingletonField = errors.New("missing path singleton field")
	ErrDuplicateColumn           = errors.New("duplicate column")
)

// ConfigurationError reports a definitional mismatch for a type.
type ConfigurationError struct {
	Op     Op
	Kind   error        // one of the Err* sentinels
	Type   reflect.Type // offending type, if known
	Param  string       // offending parameter or field, if any
	Detail string
	Err    error // underlying cause, if any
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Type != nil {
		b.WriteString(": ")
		b.WriteString(e.Type.String())
		if e.Param != "" {
			b.WriteString(".")
			b.WriteString(e.Param)
		}
	} else if e.Param != "" {
		b.WriteString(": ")
		b.WriteString(e.Param)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns a ConfigurationError of the given kind.
func New(op Op, kind error, t reflect.Type, detail string) *ConfigurationError {
	return &ConfigurationError{Op: op, Kind: kind, Type: t, Detail: detail}
}

// Param returns a ConfigurationError naming a parameter of t.
func Param(op Op, kind error, t reflect.Type, param, detail string) *ConfigurationError {
	return &ConfigurationError{Op: op, Kind: kind, Type: t, Param: param, Detail: detail}
}

// Wrap returns a ConfigurationError of the given kind caused by err.
func Wrap(op Op, kind error, t reflect.Type, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, Kind: kind, Type: t, Err: err}
}

// As extracts the ConfigurationError from err's chain.
func As(err error) (*ConfigurationError, bool) {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
