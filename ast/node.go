package ast

type NodeType int

const (
	NodeSelect NodeType = iota
	NodeColumn
	NodeTable
)

// Node is an element of a rendered statement.
type Node interface {
	Type() NodeType
	Accept(v Visitor) error
	Fingerprint() uint64
}
