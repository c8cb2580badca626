package ast

import "github.com/embervm/ember/lang/token"

func (*ExprStmt) stmtNode()               {}
func (*VarDeclStmt) stmtNode()            {}
func (*AssignmentStmt) stmtNode()         {}
func (*IndexAssignmentStmt) stmtNode()    {}
func (*PropertyAssignmentStmt) stmtNode() {}
func (*FunctionDefStmt) stmtNode()        {}
func (*IfStmt) stmtNode()                 {}
func (*WhileStmt) stmtNode()              {}
func (*ForStmt) stmtNode()                {}
func (*NakedIteratorStmt) stmtNode()      {}
func (*ImportStmt) stmtNode()             {}
func (*ReturnStmt) stmtNode()             {}
func (*BreakStmt) stmtNode()              {}
func (*ContinueStmt) stmtNode()           {}
func (*SwitchCaseStmt) stmtNode()         {}

type (
	// ExprStmt is an expression evaluated for its side effects, most commonly
	// a FunctionCallExpr or MethodCallExpr.
	ExprStmt struct {
		Position token.Position
		X        Expr
	}

	// VarDeclStmt declares a new binding: `var name: expr`, `const name: expr`,
	// `let name: expr` or a bare `name: expr`. Mutable reports whether the
	// binding may later be reassigned (false for const and let).
	VarDeclStmt struct {
		Position token.Position
		Kind     token.Kind // VAR, CONST, LET, or IDENT for a bare declaration
		Name     string
		Value    Expr
		Mutable  bool
	}

	// AssignmentStmt rebinds an existing variable: `name = expr`.
	AssignmentStmt struct {
		Position token.Position
		Name     string
		Value    Expr
	}

	// IndexAssignmentStmt assigns through an array index: `arr[index] = expr`.
	IndexAssignmentStmt struct {
		Position token.Position
		Array    Expr
		Index    Expr
		Value    Expr
	}

	// PropertyAssignmentStmt assigns an object property: `obj.name = expr`.
	PropertyAssignmentStmt struct {
		Position token.Position
		Object   Expr
		Property string
		Value    Expr
	}

	// FunctionDefStmt binds a FunctionDefExpr to a name at the enclosing
	// scope, making it callable by name via FunctionCallExpr.
	FunctionDefStmt struct {
		Position token.Position
		Name     string
		Fn       *FunctionDefExpr
	}

	// IfStmt is `if cond body [else elseBody]`. Else may itself hold a single
	// IfStmt wrapped in an ExprStmt-free Block to model `else if` chains, or
	// be nil when there is no else clause.
	IfStmt struct {
		Position token.Position
		Cond     Expr
		Body     *Block
		Else     *Block
	}

	// WhileStmt is `while cond body`.
	WhileStmt struct {
		Position token.Position
		Cond     Expr
		Body     *Block
	}

	// ForStmt is the three-clause C-style for loop: `for [init]: [cond]:
	// [incr] body`. Any of Init, Cond and Post may be nil.
	ForStmt struct {
		Position token.Position
		Init     Stmt // VarDeclStmt, AssignmentStmt or ExprStmt; may be nil
		Cond     Expr // may be nil
		Post     Stmt // AssignmentStmt or ExprStmt; may be nil
		Body     *Block
	}

	// NakedIteratorStmt is `name: iterable` followed by an indented (or
	// braced) body: the surface-level loop form, binding Name to each
	// element of Source in turn — a range's values, an array literal's
	// values, or an object's keys (see §9's array/object asymmetry). An
	// array reached any other way (a variable, a call) yields its indices.
	NakedIteratorStmt struct {
		Position token.Position
		Name     string
		Source   Expr
		Body     *Block
	}

	// ImportStmt is `import "path.ember"` or `use "path.ember"`.
	ImportStmt struct {
		Position token.Position
		Path     string
	}

	// ReturnStmt is `return [expr]`. Value is nil for a bare return.
	ReturnStmt struct {
		Position token.Position
		Value    Expr
	}

	// BreakStmt is `break`.
	BreakStmt struct {
		Position token.Position
	}

	// ContinueStmt is `continue`.
	ContinueStmt struct {
		Position token.Position
	}

	// SwitchCase is a single `case expr:` arm of a SwitchCaseStmt. A nil Match
	// marks the default arm.
	SwitchCase struct {
		Match Expr
		Body  *Block
	}

	// SwitchCaseStmt is the `switch subject { case v1: ...; case v2: ...;
	// default: ... }` multi-way branch. It is parsed, but the compiler emits
	// no code for it.
	SwitchCaseStmt struct {
		Position token.Position
		Subject  Expr
		Cases    []SwitchCase
	}
)

func (n *ExprStmt) Pos() token.Position               { return n.Position }
func (n *VarDeclStmt) Pos() token.Position            { return n.Position }
func (n *AssignmentStmt) Pos() token.Position         { return n.Position }
func (n *IndexAssignmentStmt) Pos() token.Position    { return n.Position }
func (n *PropertyAssignmentStmt) Pos() token.Position { return n.Position }
func (n *FunctionDefStmt) Pos() token.Position        { return n.Position }
func (n *IfStmt) Pos() token.Position                 { return n.Position }
func (n *WhileStmt) Pos() token.Position              { return n.Position }
func (n *ForStmt) Pos() token.Position                { return n.Position }
func (n *NakedIteratorStmt) Pos() token.Position      { return n.Position }
func (n *ImportStmt) Pos() token.Position             { return n.Position }
func (n *ReturnStmt) Pos() token.Position             { return n.Position }
func (n *BreakStmt) Pos() token.Position              { return n.Position }
func (n *ContinueStmt) Pos() token.Position           { return n.Position }
func (n *SwitchCaseStmt) Pos() token.Position         { return n.Position }
