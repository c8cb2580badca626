package ast

import "github.com/embervm/ember/lang/token"

// All expression node types implement exprNode as a marker.
func (*LiteralExpr) exprNode()            {}
func (*VariableExpr) exprNode()           {}
func (*BinaryOpExpr) exprNode()           {}
func (*UnaryOpExpr) exprNode()            {}
func (*ArrayLiteralExpr) exprNode()       {}
func (*IndexAccessExpr) exprNode()        {}
func (*ObjectLiteralExpr) exprNode()      {}
func (*PropertyAccessExpr) exprNode()     {}
func (*MethodCallExpr) exprNode()         {}
func (*FunctionDefExpr) exprNode()        {}
func (*FunctionCallExpr) exprNode()       {}
func (*RangeExpr) exprNode()              {}

type (
	// LiteralExpr is a number, string, boolean or null literal.
	LiteralExpr struct {
		Position token.Position
		Kind     token.Kind // NUMBER, STRING, BOOLEAN or NULL
		Text     string     // token text, e.g. "42", "true", or a string's unescaped contents without quotes
	}

	// VariableExpr refers to a variable, function or the reserved identifier
	// "this".
	VariableExpr struct {
		Position token.Position
		Name     string
	}

	// BinaryOpExpr is a binary operator expression.
	BinaryOpExpr struct {
		Position token.Position
		Op       token.Kind // one of +,-,*,/,%,==,!=,<,>,<=,>=,&&,||
		Left     Expr
		Right    Expr
	}

	// UnaryOpExpr is a unary operator expression.
	UnaryOpExpr struct {
		Position token.Position
		Op       token.Kind // BANG or MINUS
		Operand  Expr
	}

	// ArrayLiteralExpr is an ordered sequence of element expressions, `[...]`.
	ArrayLiteralExpr struct {
		Position token.Position
		Elements []Expr
	}

	// IndexAccessExpr is `arr[index]`.
	IndexAccessExpr struct {
		Position token.Position
		Array    Expr
		Index    Expr
	}

	// ObjectProperty is a single (key, value) pair in declaration order inside
	// an ObjectLiteralExpr.
	ObjectProperty struct {
		Key   string
		Value Expr
	}

	// ObjectLiteralExpr is `{ :[Mixin1, Mixin2], k1: v1, k2: v2 }`.
	ObjectLiteralExpr struct {
		Position   token.Position
		Mixins     []string // ordered mixin variable names from the `:[...]` prefix
		Properties []ObjectProperty
	}

	// PropertyAccessExpr is `obj.name`.
	PropertyAccessExpr struct {
		Position token.Position
		Object   Expr
		Property string
	}

	// MethodCallExpr is `obj.method(args...)`.
	MethodCallExpr struct {
		Position token.Position
		Object   Expr
		Method   string
		Args     []Expr
	}

	// FunctionDefExpr is a function value: `fn(params) body`, optionally used
	// either as a top-level named statement (see FunctionDefStmt) or inline as
	// an object-literal property value. EventSources records the (currently
	// inert) `<- [ ... ]` event-binding head documented in the language
	// surface; it compiles to nothing.
	FunctionDefExpr struct {
		Position     token.Position
		Params       []string
		EventSources []Expr
		Body         *Block
	}

	// FunctionCallExpr is a call to a function by name: `name(args...)`.
	FunctionCallExpr struct {
		Position token.Position
		Name     string
		Args     []Expr
	}

	// RangeExpr is `start..end`, inclusive on both ends.
	RangeExpr struct {
		Position token.Position
		Start    Expr
		End      Expr
	}
)

func (n *LiteralExpr) Pos() token.Position        { return n.Position }
func (n *VariableExpr) Pos() token.Position       { return n.Position }
func (n *BinaryOpExpr) Pos() token.Position       { return n.Position }
func (n *UnaryOpExpr) Pos() token.Position        { return n.Position }
func (n *ArrayLiteralExpr) Pos() token.Position   { return n.Position }
func (n *IndexAccessExpr) Pos() token.Position    { return n.Position }
func (n *ObjectLiteralExpr) Pos() token.Position  { return n.Position }
func (n *PropertyAccessExpr) Pos() token.Position { return n.Position }
func (n *MethodCallExpr) Pos() token.Position     { return n.Position }
func (n *FunctionDefExpr) Pos() token.Position    { return n.Position }
func (n *FunctionCallExpr) Pos() token.Position   { return n.Position }
func (n *RangeExpr) Pos() token.Position          { return n.Position }
