// Package visitor renders statement trees to SQL text.
package visitor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/rowmap/ast"
	"github.com/Konsultn-Engineering/rowmap/cache"
	"github.com/Konsultn-Engineering/rowmap/dialect"
	"github.com/Konsultn-Engineering/rowmap/projection"
	"github.com/Konsultn-Engineering/rowmap/relpath"
	"github.com/Konsultn-Engineering/rowmap/utils"
)

var visitorPool = sync.Pool{
	New: func() any {
		return &SQLVisitor{
			labels: make([]string, 0, 8),
		}
	},
}

// SQLVisitor renders one statement at a time. Get one with NewSQLVisitor
// and return it with Release.
type SQLVisitor struct {
	sb      strings.Builder
	labels  []string
	dialect dialect.Dialect
	qcache  cache.QueryCache
}

func NewSQLVisitor(d dialect.Dialect, q cache.QueryCache) *SQLVisitor {
	v := visitorPool.Get().(*SQLVisitor)
	v.dialect = d
	v.qcache = q
	v.Reset()
	return v
}

func (v *SQLVisitor) Release() {
	v.dialect = nil
	v.qcache = nil
	v.Reset()
	visitorPool.Put(v)
}

func (v *SQLVisitor) Reset() {
	v.sb.Reset()
	v.labels = v.labels[:0]
}

// Build renders root, consulting the query cache first when one is set.
func (v *SQLVisitor) Build(root ast.Node) (*cache.CachedQuery, error) {
	fp := utils.Mix64(utils.FingerprintString(v.dialect.Name()), root.Fingerprint())

	if v.qcache != nil {
		if cached, ok := v.qcache.GetSQL(fp); ok {
			return cached, nil
		}
	}

	v.Reset()
	if err := root.Accept(v); err != nil {
		return nil, err
	}

	q := &cache.CachedQuery{
		SQL:    v.sb.String(),
		Labels: append([]string(nil), v.labels...),
	}
	if v.qcache != nil {
		v.qcache.SetSQL(fp, q)
	}
	return q, nil
}

func (v *SQLVisitor) VisitSelect(s *ast.SelectStmt) error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("select without columns")
	}
	v.sb.WriteString("SELECT ")

	for i, col := range s.Columns {
		if i > 0 {
			v.sb.WriteString(", ")
		}
		if err := col.Accept(v); err != nil {
			return err
		}
	}

	if s.From != nil {
		if err := s.From.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *SQLVisitor) VisitColumn(c *ast.Column) error {
	if c.Table != "" {
		v.sb.WriteString(v.dialect.QuoteIdentifier(c.Table))
		v.sb.WriteByte('.')
	}
	v.sb.WriteString(v.dialect.QuoteIdentifier(c.Name))

	if c.Alias != "" && c.Alias != c.Name {
		v.sb.WriteString(" AS ")
		v.sb.WriteString(v.dialect.QuoteIdentifier(c.Alias))
	}

	v.labels = append(v.labels, c.Label())
	return nil
}

func (v *SQLVisitor) VisitTable(t *ast.Table) error {
	v.sb.WriteString(" FROM ")

	if t.Schema != "" {
		v.sb.WriteString(v.dialect.QuoteIdentifier(t.Schema))
		v.sb.WriteByte('.')
	}
	v.sb.WriteString(v.dialect.QuoteIdentifier(t.Name))

	if t.Alias != "" && t.Alias != t.Name {
		v.sb.WriteString(" AS ")
		v.sb.WriteString(v.dialect.QuoteIdentifier(t.Alias))
	}

	return nil
}

// Select builds the SELECT statement reading the columns of expr from the
// table of p.
func Select(p relpath.Path, expr *projection.Expression) *ast.SelectStmt {
	cols := expr.Columns()
	nodes := make([]ast.Node, len(cols))
	for i, c := range cols {
		nodes[i] = c
	}
	return ast.NewSelect(p.Table(), nodes...)
}

// SelectFor renders the SELECT reading the columns of expr from the table of
// p in dialect d.
func SelectFor(d dialect.Dialect, p relpath.Path, expr *projection.Expression) (string, error) {
	q, err := Render(d, nil, Select(p, expr))
	if err != nil {
		return "", err
	}
	return q.SQL, nil
}

// Render renders root with a pooled visitor.
func Render(d dialect.Dialect, q cache.QueryCache, root ast.Node) (*cache.CachedQuery, error) {
	v := NewSQLVisitor(d, q)
	defer v.Release()
	return v.Build(root)
}
