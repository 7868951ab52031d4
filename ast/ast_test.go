package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnQualified(t *testing.T) {
	tests := []struct {
		name   string
		column *Column
		want   string
	}{
		{name: "Bare", column: NewColumn("", "id", ""), want: "id"},
		{name: "WithTable", column: NewColumn("o", "id", ""), want: "o.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.column.Qualified())
			assert.Equal(t, tt.want, tt.column.String())
		})
	}
}

func TestColumnLabel(t *testing.T) {
	assert.Equal(t, "city", NewColumn("a", "city", "").Label())
	assert.Equal(t, "ship_city", NewColumn("a", "city", "ship_city").Label())
}

func TestTableRef(t *testing.T) {
	assert.Equal(t, "orders", NewTable("", "orders", "").Ref())
	assert.Equal(t, "o", NewTable("public", "orders", "o").Ref())
}

func TestSelectFingerprint(t *testing.T) {
	from := NewTable("", "orders", "o")
	a := NewSelect(from, NewColumn("o", "id", ""), NewColumn("o", "city", ""))
	b := NewSelect(from, NewColumn("o", "id", ""), NewColumn("o", "city", ""))
	c := NewSelect(from, NewColumn("o", "city", ""), NewColumn("o", "id", ""))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint(), "column order is part of the fingerprint")
	assert.Equal(t, NodeSelect, a.Type())
}
