// Package ast defines the tagged abstract syntax tree produced by the
// parser and consumed by the compiler and the tree-walking interpreter. The
// AST is immutable once built and is owned by whichever phase runs next, for
// the lifetime of a single compile/exec.
package ast

import "github.com/embervm/ember/lang/token"

// Node is implemented by every AST node. Every node carries its source
// position for diagnostics.
type Node interface {
	Pos() token.Position
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Block is an ordered sequence of statements, the body of a chunk, function,
// if/while/for or naked iterator.
type Block struct {
	Position token.Position
	Stmts    []Stmt
}

func (b *Block) Pos() token.Position { return b.Position }

// Chunk is the root of a parsed program or imported file.
type Chunk struct {
	Name  string // filename, may be empty
	Block *Block
}

func (c *Chunk) Pos() token.Position {
	if c.Block != nil {
		return c.Block.Pos()
	}
	return token.Position{}
}
