package ast

import "github.com/Konsultn-Engineering/rowmap/utils"

// Column references a single column of a relational path. Columns are shared
// by every expression built against the same path and must not be mutated.
type Column struct {
	Table string
	Name  string
	Alias string
}

func NewColumn(table, name, alias string) *Column {
	return &Column{Table: table, Name: name, Alias: alias}
}

func (c *Column) Type() NodeType         { return NodeColumn }
func (c *Column) Accept(v Visitor) error { return v.VisitColumn(c) }

func (c *Column) Fingerprint() uint64 {
	return utils.Fingerprint("col", c.Table, c.Name, c.Alias)
}

// Qualified returns "table.name", or just the name when no table is set.
func (c *Column) Qualified() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// Label is the name a result row reports for the column: the alias when
// present, otherwise the column name.
func (c *Column) Label() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

func (c *Column) String() string { return c.Qualified() }
