package ast

import "github.com/Konsultn-Engineering/rowmap/utils"

type Table struct {
	Schema string
	Name   string
	Alias  string
}

func NewTable(schema, name, alias string) *Table {
	return &Table{Schema: schema, Name: name, Alias: alias}
}

func (t *Table) Type() NodeType         { return NodeTable }
func (t *Table) Accept(v Visitor) error { return v.VisitTable(t) }

func (t *Table) Fingerprint() uint64 {
	return utils.Fingerprint("table", t.Schema, t.Name, t.Alias)
}

// Ref is the identifier columns use to qualify themselves: the alias when
// present, otherwise the table name.
func (t *Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}
