package meta

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/Konsultn-Engineering/rowmap/schema"
)

// Annotations are the marker names attached to a constructor, parameter or
// field.
type Annotations []string

// Has reports whether name is among the annotations.
func (a Annotations) Has(name string) bool {
	return slices.Contains(a, name)
}

var errorType = reflect.TypeFor[error]()

// Constructor is one way of creating values of a struct type: a registered
// factory function or the composite literal over the persistent fields.
type Constructor struct {
	// Name is the runtime function name, or "T{}" for a composite literal.
	Name string
	// Owner is the struct type the constructor creates.
	Owner reflect.Type
	// In lists the declared parameter types.
	In []reflect.Type
	// Synthetic constructors are compiler or generator artifacts and never
	// selected.
	Synthetic bool
	// Annotations carried by the constructor itself, e.g. "creator".
	Annotations Annotations
	// ParamAnnotations has one entry per parameter.
	ParamAnnotations []Annotations
	// Names are the parameter names given at registration, if any.
	Names []string

	fn       reflect.Value
	pointer  bool // fn returns *Owner
	hasError bool // fn returns a trailing error
	setters  []schema.Setter
}

// Arity is the number of declared parameters.
func (c *Constructor) Arity() int { return len(c.In) }

// Literal reports whether c assembles a composite literal instead of calling
// a function.
func (c *Constructor) Literal() bool { return !c.fn.IsValid() }

// Func returns the underlying factory function; the zero Value for literals.
func (c *Constructor) Func() reflect.Value { return c.fn }

func (c *Constructor) String() string { return c.Name }

// Invoke creates a value of Owner from args, one per parameter. Invalid
// (zero) Values stand for the zero value of the parameter type. The result is
// always of type Owner; pointer results are dereferenced.
func (c *Constructor) Invoke(args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(c.In) {
		return reflect.Value{}, fmt.Errorf("%s: want %d arguments, got %d", c.Name, len(c.In), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		switch {
		case !arg.IsValid():
			in[i] = reflect.Zero(c.In[i])
		case arg.Type().AssignableTo(c.In[i]):
			in[i] = arg
		default:
			return reflect.Value{}, fmt.Errorf("%s: argument %d: %s is not assignable to %s", c.Name, i, arg.Type(), c.In[i])
		}
	}

	if c.Literal() {
		ptr := reflect.New(c.Owner)
		for i, set := range c.setters {
			set(ptr.UnsafePointer(), in[i])
		}
		return ptr.Elem(), nil
	}

	out := c.fn.Call(in)
	if c.hasError {
		if err, _ := out[1].Interface().(error); err != nil {
			return reflect.Value{}, fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	result := out[0]
	if c.pointer {
		if result.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s: returned nil", c.Name)
		}
		result = result.Elem()
	}
	return result, nil
}

// newFuncConstructor validates fn as a factory of owner: any number of fixed
// parameters, returning owner or *owner, optionally followed by an error.
func newFuncConstructor(owner reflect.Type, fn any) (*Constructor, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("constructor for %s must be a non-nil function, got %T", owner, fn)
	}
	ft := v.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("constructor %s for %s must not be variadic", ft, owner)
	}

	c := &Constructor{
		Name:  funcName(v),
		Owner: owner,
		fn:    v,
	}

	switch ft.NumOut() {
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("constructor %s for %s: second result must be error", ft, owner)
		}
		c.hasError = true
		fallthrough
	case 1:
		switch out := ft.Out(0); {
		case out == owner:
		case out.Kind() == reflect.Ptr && out.Elem() == owner:
			c.pointer = true
		default:
			return nil, fmt.Errorf("constructor %s does not return %s", ft, owner)
		}
	default:
		return nil, fmt.Errorf("constructor %s for %s must return 1 or 2 results", ft, owner)
	}

	c.In = make([]reflect.Type, ft.NumIn())
	c.ParamAnnotations = make([]Annotations, ft.NumIn())
	for i := range c.In {
		c.In[i] = ft.In(i)
	}
	return c, nil
}

// newLiteralConstructor describes the composite literal over fields, in
// declaration order. Every field must be exported.
func newLiteralConstructor(owner reflect.Type, fields []*Field) *Constructor {
	c := &Constructor{
		Name:             owner.String() + "{}",
		Owner:            owner,
		In:               make([]reflect.Type, len(fields)),
		ParamAnnotations: make([]Annotations, len(fields)),
		Names:            make([]string, len(fields)),
		setters:          make([]schema.Setter, len(fields)),
	}
	for i, f := range fields {
		c.In[i] = f.Type
		c.ParamAnnotations[i] = f.Annotations
		c.Names[i] = f.Property
		c.setters[i] = schema.NewSetter(owner, f.meta)
	}
	return c
}
