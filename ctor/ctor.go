// Package ctor selects the constructor a persistence layer uses to create
// values of a type.
//
// Selection order:
//
//  1. Synthetic constructors are ignored.
//  2. The first constructor marked as designated creator wins.
//  3. Types following the canonical primary constructor convention use
//     the concrete constructor backing their primary constructor.
//  4. Otherwise the constructor with the most parameters wins; ties go to
//     the one declared first.
//
// Nothing is cached. Every call reflects anew and returns a fresh value.
package ctor

import (
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/rowmap/errs"
	"github.com/Konsultn-Engineering/rowmap/meta"
)

const opDiscover errs.Op = "ctor.Discover"

// Shape is the constructor convention a type follows.
type Shape int

const (
	PlainShape Shape = iota
	CanonicalShape
)

func (s Shape) String() string {
	switch s {
	case PlainShape:
		return "plain"
	case CanonicalShape:
		return "canonical"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ShapeOf classifies t once per discovery.
func ShapeOf(t reflect.Type, in meta.Introspector) Shape {
	if in.Canonical(t) {
		return CanonicalShape
	}
	return PlainShape
}

// Parameter is one resolved constructor parameter.
type Parameter struct {
	Name        string // "" when the name could not be recovered
	Type        reflect.Type
	Annotations meta.Annotations
}

// Named reports whether the parameter name is known.
func (p Parameter) Named() bool { return p.Name != "" }

// Preferred is the constructor selected for a type together with its
// resolved parameters.
type Preferred struct {
	Type        reflect.Type
	Constructor *meta.Constructor
	Params      []Parameter
}

// New invokes the selected constructor with one argument per parameter and
// returns a value of Type.
func (p *Preferred) New(args []reflect.Value) (reflect.Value, error) {
	return p.Constructor.Invoke(args)
}

// Discover selects the preferred constructor of t.
func Discover(t reflect.Type, in meta.Introspector, preds meta.Predicates) (*Preferred, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errs.New(opDiscover, errs.ErrNoUsableConstructor, t, "not a struct type")
	}

	declared, err := in.Constructors(t)
	if err != nil {
		return nil, errs.Wrap(opDiscover, errs.ErrNoUsableConstructor, t, err)
	}
	candidates := make([]*meta.Constructor, 0, len(declared))
	for _, c := range declared {
		if !c.Synthetic {
			candidates = append(candidates, c)
		}
	}

	chosen := designatedCreator(candidates, preds)
	if chosen == nil {
		chosen = selectConstructor(ShapeOf(t, in), t, candidates, in)
	}
	if chosen == nil {
		detail := ""
		if len(declared) > 0 && len(candidates) == 0 {
			detail = "all registered constructors are synthetic (function literals and generated functions are never selected)"
		}
		return nil, errs.New(opDiscover, errs.ErrNoUsableConstructor, t, detail)
	}

	return &Preferred{
		Type:        t,
		Constructor: chosen,
		Params:      parameters(chosen, in),
	}, nil
}

func designatedCreator(candidates []*meta.Constructor, preds meta.Predicates) *meta.Constructor {
	if preds.IsDesignatedCreator == nil {
		return nil
	}
	for _, c := range candidates {
		if preds.IsDesignatedCreator(c) {
			return c
		}
	}
	return nil
}

func selectConstructor(shape Shape, t reflect.Type, candidates []*meta.Constructor, in meta.Introspector) *meta.Constructor {
	switch shape {
	case CanonicalShape:
		primary, ok := in.Primary(t)
		if !ok {
			return greatestArity(candidates)
		}
		// A primary without concrete backing leaves nothing to select.
		backing, _ := in.Backing(primary)
		return backing
	default:
		return greatestArity(candidates)
	}
}

// greatestArity returns the first constructor with the most parameters.
func greatestArity(candidates []*meta.Constructor) *meta.Constructor {
	var best *meta.Constructor
	for _, c := range candidates {
		if best == nil || c.Arity() > best.Arity() {
			best = c
		}
	}
	return best
}

func parameters(c *meta.Constructor, in meta.Introspector) []Parameter {
	names := in.ParameterNames(c)
	params := make([]Parameter, c.Arity())
	for i, typ := range c.In {
		params[i].Type = typ
		if i < len(names) {
			params[i].Name = names[i]
		}
		if i < len(c.ParamAnnotations) {
			params[i].Annotations = c.ParamAnnotations[i]
		}
	}
	return params
}
