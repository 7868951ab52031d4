package schema

import "reflect"

// EntityMeta describes the persistent fields of a struct type.
type EntityMeta struct {
	Type   reflect.Type
	Name   string
	Table  string
	Fields []*FieldMeta // declaration order, skipped fields excluded

	byProperty map[string]*FieldMeta
}

// Field returns the persistent field with the given property name.
func (m *EntityMeta) Field(property string) (*FieldMeta, bool) {
	f, ok := m.byProperty[property]
	return f, ok
}

// FieldMeta describes one persistent struct field.
type FieldMeta struct {
	Name     string // Go field name
	Property string // join key for constructor parameters
	Column   string // column name
	Type     reflect.Type
	Index    []int
	Tag      *ParsedTag
	Exported bool
}

// TableNamer lets an entity override its derived table name.
type TableNamer interface {
	TableName() string
}
