package meta

import (
	"reflect"

	"github.com/Konsultn-Engineering/rowmap/schema"
)

// Field is a persistent struct field as seen by constructor discovery and
// projection building.
type Field struct {
	Name        string // Go field name
	Property    string // joins the field to constructor parameters
	Column      string
	Type        reflect.Type
	Annotations Annotations
	Exported    bool

	meta *schema.FieldMeta
}

func newField(fm *schema.FieldMeta) *Field {
	return &Field{
		Name:        fm.Name,
		Property:    fm.Property,
		Column:      fm.Column,
		Type:        fm.Type,
		Annotations: fm.Tag.Annotations(),
		Exported:    fm.Exported,
		meta:        fm,
	}
}

// Primary describes the canonical primary constructor of a type: the
// composite literal over its persistent fields in declaration order.
type Primary struct {
	Type   reflect.Type
	Fields []*Field
}

// Concrete reports whether the literal can be assembled through reflection,
// which requires every field to be exported.
func (p Primary) Concrete() bool {
	for _, f := range p.Fields {
		if !f.Exported {
			return false
		}
	}
	return true
}

// Predicates classify constructors and fields. They are pure functions and
// are passed explicitly to discovery and projection building.
type Predicates struct {
	IsDesignatedCreator func(c *Constructor) bool
	IsEmbedded          func(f *Field) bool
	IsCollection        func(f *Field) bool
}

// DefaultPredicates match the annotation names declared in package schema.
func DefaultPredicates() Predicates {
	return Predicates{
		IsDesignatedCreator: func(c *Constructor) bool {
			return c.Annotations.Has(schema.AnnotationCreator)
		},
		IsEmbedded: func(f *Field) bool {
			return f.Annotations.Has(schema.AnnotationEmbedded)
		},
		IsCollection: func(f *Field) bool {
			return f.Annotations.Has(schema.AnnotationCollection)
		},
	}
}
