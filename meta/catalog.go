package meta

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Konsultn-Engineering/rowmap/schema"
)

// Introspector exposes the type metadata constructor discovery and
// projection building rely on. Catalog is the implementation used at
// runtime; tests may substitute an in-memory fake.
type Introspector interface {
	// Constructors lists the declared constructors of t in encounter order.
	Constructors(t reflect.Type) ([]*Constructor, error)
	// Fields lists the persistent fields of t in declaration order.
	Fields(t reflect.Type) ([]*Field, error)
	// Canonical reports whether t follows the canonical primary constructor
	// convention.
	Canonical(t reflect.Type) bool
	// Primary returns the primary constructor of a canonical type.
	Primary(t reflect.Type) (Primary, bool)
	// Backing returns the concrete constructor behind a primary constructor.
	Backing(p Primary) (*Constructor, bool)
	// ParameterNames returns one name per parameter of c; "" when unknown.
	ParameterNames(c *Constructor) []string
}

type entry struct {
	canonical bool
	funcs     []*Constructor
}

// Catalog is the registry of constructor metadata. Go keeps no constructor
// information at runtime, so factory functions and the canonical marker are
// registered explicitly; everything else is derived by reflection on every
// call.
//
// A Catalog is safe for concurrent use. Registration normally happens during
// program initialization.
type Catalog struct {
	mu     sync.RWMutex
	types  map[reflect.Type]*entry
	schema *schema.Context
	names  NameDiscoverer
}

type Option func(*Catalog)

// WithSchema sets the schema context used to inspect persistent fields.
func WithSchema(ctx *schema.Context) Option {
	return func(c *Catalog) { c.schema = ctx }
}

// WithNameDiscoverer replaces the parameter name recovery chain.
func WithNameDiscoverer(d NameDiscoverer) Option {
	return func(c *Catalog) { c.names = d }
}

// NewCatalog creates an empty catalog. Parameter names come from
// registration first and from Go source second.
func NewCatalog(options ...Option) *Catalog {
	c := &Catalog{
		types:  make(map[reflect.Type]*entry),
		schema: schema.New(),
		names:  Chain{Explicit{}, NewSourceNames()},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Default is the process-wide catalog.
var Default = NewCatalog()

// TypeOption configures a registered type.
type TypeOption func(t reflect.Type, e *entry) error

// Canonical marks the type as following the canonical primary constructor
// convention: the composite literal over its persistent fields is preferred
// over any registered function.
func Canonical() TypeOption {
	return func(_ reflect.Type, e *entry) error {
		e.canonical = true
		return nil
	}
}

// FuncOption configures a registered factory function.
type FuncOption func(c *Constructor) error

// Func registers fn as a constructor. fn takes fixed parameters and returns
// T or *T, optionally followed by an error.
//
//	meta.Register[Money](cat, meta.Func(NewMoney, meta.Params("amountMinor", "currency")))
func Func(fn any, options ...FuncOption) TypeOption {
	return func(t reflect.Type, e *entry) error {
		c, err := newFuncConstructor(t, fn)
		if err != nil {
			return err
		}
		c.Synthetic = isSynthetic(c)
		for _, opt := range options {
			if err := opt(c); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
		}
		e.funcs = append(e.funcs, c)
		return nil
	}
}

// Params names the parameters of the function, in order.
func Params(names ...string) FuncOption {
	return func(c *Constructor) error {
		if len(names) != c.Arity() {
			return fmt.Errorf("%d names for %d parameters", len(names), c.Arity())
		}
		c.Names = names
		return nil
	}
}

// Creator designates the function as the constructor to use regardless of
// arity.
func Creator() FuncOption {
	return Annotate(schema.AnnotationCreator)
}

// Synthetic marks the function as an artifact that is never selected.
func Synthetic() FuncOption {
	return func(c *Constructor) error {
		c.Synthetic = true
		return nil
	}
}

// Annotate attaches annotations to the function.
func Annotate(names ...string) FuncOption {
	return func(c *Constructor) error {
		c.Annotations = append(c.Annotations, names...)
		return nil
	}
}

// ParamAnnotations attaches annotations to parameter i.
func ParamAnnotations(i int, names ...string) FuncOption {
	return func(c *Constructor) error {
		if i < 0 || i >= c.Arity() {
			return fmt.Errorf("parameter %d out of range", i)
		}
		c.ParamAnnotations[i] = append(c.ParamAnnotations[i], names...)
		return nil
	}
}

// Register records constructor metadata for t. Calls for the same type
// accumulate; functions keep their registration order.
func (c *Catalog) Register(t reflect.Type, options ...TypeOption) error {
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("meta.Register: %v is not a struct type", t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.types[t]
	if !ok {
		e = &entry{}
	}
	// Options run on a copy so a failing registration leaves no trace.
	staged := &entry{canonical: e.canonical, funcs: append([]*Constructor(nil), e.funcs...)}
	for _, opt := range options {
		if err := opt(t, staged); err != nil {
			return fmt.Errorf("meta.Register %s: %w", t, err)
		}
	}
	c.types[t] = staged
	return nil
}

// Register records constructor metadata for T in c.
func Register[T any](c *Catalog, options ...TypeOption) error {
	return c.Register(reflect.TypeFor[T](), options...)
}

// MustRegister is Register for package initialization.
func MustRegister[T any](c *Catalog, options ...TypeOption) {
	if err := Register[T](c, options...); err != nil {
		panic(err)
	}
}

func (c *Catalog) lookup(t reflect.Type) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.types[t]
	if !ok {
		return entry{}, false
	}
	return *e, true
}

// Constructors lists the registered functions of t in registration order.
// The composite literal is listed first for canonical types and alone for
// types without registered functions, provided it is concrete.
func (c *Catalog) Constructors(t reflect.Type) ([]*Constructor, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil
	}
	e, _ := c.lookup(t)

	out := make([]*Constructor, 0, len(e.funcs)+1)
	if e.canonical || len(e.funcs) == 0 {
		fields, err := c.Fields(t)
		if err != nil {
			return nil, err
		}
		if p := (Primary{Type: t, Fields: fields}); p.Concrete() {
			out = append(out, newLiteralConstructor(t, fields))
		}
	}
	return append(out, e.funcs...), nil
}

// Fields inspects the persistent fields of t.
func (c *Catalog) Fields(t reflect.Type) ([]*Field, error) {
	em, err := c.schema.Inspect(t)
	if err != nil {
		return nil, err
	}
	fields := make([]*Field, len(em.Fields))
	for i, fm := range em.Fields {
		fields[i] = newField(fm)
	}
	return fields, nil
}

func (c *Catalog) Canonical(t reflect.Type) bool {
	e, _ := c.lookup(t)
	return e.canonical
}

// Primary returns the composite literal description of a canonical type.
// Types without persistent fields have no primary constructor.
func (c *Catalog) Primary(t reflect.Type) (Primary, bool) {
	if !c.Canonical(t) {
		return Primary{}, false
	}
	fields, err := c.Fields(t)
	if err != nil || len(fields) == 0 {
		return Primary{}, false
	}
	return Primary{Type: t, Fields: fields}, true
}

// Backing returns the literal constructor behind p, if every field can be
// set through reflection.
func (c *Catalog) Backing(p Primary) (*Constructor, bool) {
	if p.Type == nil || !p.Concrete() {
		return nil, false
	}
	return newLiteralConstructor(p.Type, p.Fields), true
}

func (c *Catalog) ParameterNames(ctor *Constructor) []string {
	return c.names.ParameterNames(ctor)
}
