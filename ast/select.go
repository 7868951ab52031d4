package ast

import (
	"hash/fnv"

	"github.com/Konsultn-Engineering/rowmap/utils"
)

// SelectStmt is a projection-only SELECT: a column list and its source table.
type SelectStmt struct {
	Columns []Node
	From    *Table
}

func NewSelect(from *Table, columns ...Node) *SelectStmt {
	return &SelectStmt{Columns: columns, From: from}
}

func (s *SelectStmt) Type() NodeType         { return NodeSelect }
func (s *SelectStmt) Accept(v Visitor) error { return v.VisitSelect(s) }

func (s *SelectStmt) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte("select:"))
	if s.From != nil {
		h.Write(utils.U64ToBytes(s.From.Fingerprint()))
	}
	for _, col := range s.Columns {
		h.Write(utils.U64ToBytes(col.Fingerprint()))
	}
	return h.Sum64()
}
