package ast

type Visitor interface {
	VisitSelect(*SelectStmt) error
	VisitColumn(*Column) error
	VisitTable(*Table) error
}
