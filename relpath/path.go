// Package relpath describes the relational source a projection reads from
// and locates the generated path holder of an entity.
package relpath

import (
	"github.com/Konsultn-Engineering/rowmap/ast"
)

// Path is a relational source: a table and the columns it exposes. Column
// names are unique within a path.
type Path interface {
	Table() *ast.Table
	Columns() []*ast.Column
}

// Base is the Path embedded by generated holders. Its columns are created
// once and shared by every expression built against the path.
type Base struct {
	table   *ast.Table
	columns []*ast.Column
	byName  map[string]*ast.Column
}

// New creates a path over table, qualifying every column with alias when
// set and with the table name otherwise.
//
//	orders := relpath.New("orders", "o", "id", "street", "city")
func New(table, alias string, columns ...string) *Base {
	t := ast.NewTable("", table, alias)
	cols := make([]*ast.Column, len(columns))
	for i, name := range columns {
		cols[i] = ast.NewColumn(t.Ref(), name, "")
	}
	return NewBase(t, cols...)
}

// NewBase creates a path from prepared nodes. The columns are kept as given.
func NewBase(table *ast.Table, columns ...*ast.Column) *Base {
	b := &Base{
		table:   table,
		columns: columns,
		byName:  make(map[string]*ast.Column, len(columns)),
	}
	for _, c := range columns {
		if _, dup := b.byName[c.Name]; !dup {
			b.byName[c.Name] = c
		}
	}
	return b
}

func (b *Base) Table() *ast.Table { return b.table }

// Columns returns the columns in declaration order. The slice is a copy; the
// column nodes are not.
func (b *Base) Columns() []*ast.Column {
	out := make([]*ast.Column, len(b.columns))
	copy(out, b.columns)
	return out
}

// Column returns the column with the given name, or nil.
func (b *Base) Column(name string) *ast.Column {
	return b.byName[name]
}
