// Package compiler lowers a parsed ast.Chunk into an executable chunk.Chunk:
// one pass over the tree, emitting fixed-width bytecode directly with no
// intermediate IR, patching forward jumps as block ends are reached.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dolthub/swiss"
	"github.com/embervm/ember/lang/ast"
	"github.com/embervm/ember/lang/chunk"
	"github.com/embervm/ember/lang/parser"
	"github.com/embervm/ember/lang/registry"
	"github.com/embervm/ember/lang/symtab"
	"github.com/embervm/ember/lang/token"
)

// Importer reads the source of an imported .ember file. A Compiler built by
// New uses osImporter, which shells out to os.ReadFile; tests and
// embedders that want imports served from memory can install their own via
// WithImporter.
type Importer interface {
	ReadFile(path string) ([]byte, error)
}

type osImporter struct{}

func (osImporter) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Option configures a Compiler.
type Option func(*Compiler)

// WithImporter overrides the default filesystem Importer, e.g. to serve
// imports from an in-memory map in tests.
func WithImporter(imp Importer) Option {
	return func(c *Compiler) { c.importer = imp }
}

// WithRegistry overrides the default named-module registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Compiler) { c.registry = reg }
}

// loopCtx tracks the patch sites of break/continue statements for the loop
// currently being compiled, one entry per nesting level.
type loopCtx struct {
	// continueTarget is used directly by a while loop's continue (a
	// backward LOOP straight to the condition check); forLoop is false for
	// while loops and true for for-loops and naked iterators, which instead
	// record continueJumps to be patched once the post-body step's address
	// is known.
	forLoop        bool
	continueTarget int
	continueJumps  []int
	breakJumps     []int
}

// Compiler holds the mutable state of one compilation: the chunk being built,
// the flat symbol table, and the table mapping declared function names to
// the constant-pool slot holding their start-IP.
type Compiler struct {
	chunk    *chunk.Chunk
	symtab   *symtab.Table
	errs     token.ErrorList
	importer Importer
	registry *registry.Registry

	// funcsByName maps a declared function name to the constant-pool index
	// holding its start-IP Number. A swiss.Map rather than a builtin map for
	// the same reason the teacher's lang/machine reaches for one on its
	// runtime Map value: open-addressing lookup on an identifier table that
	// can grow past a handful of entries in a large module.
	funcsByName *swiss.Map[string, byte]
	loops       []loopCtx
	tempSeq     int

	importing map[string]bool // guards against import cycles
}

// New returns a Compiler ready to compile one ast.Chunk (and, transitively,
// whatever it imports) into a single chunk.Chunk.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		chunk:       chunk.New(),
		symtab:      symtab.New(),
		importer:    osImporter{},
		registry:    registry.Standard(),
		funcsByName: swiss.NewMap[string, byte](8),
		importing:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile parses and compiles src (named filename for diagnostics) into a
// chunk.Chunk, returning the first error encountered during parsing or
// compilation.
func Compile(filename string, src []byte, opts ...Option) (*chunk.Chunk, error) {
	astChunk, err := parser.ParseFile(filename, src)
	if err != nil {
		return nil, err
	}
	c := New(opts...)
	c.compileBlockTopLevel(astChunk.Block)
	if err := c.errs.Err(); err != nil {
		return nil, c.errs.First()
	}
	c.chunk.EmitOp(chunk.EOF)
	return c.chunk, nil
}

func (c *Compiler) errorf(pos token.Position, format string, args ...interface{}) {
	c.errs.Add(pos, fmt.Sprintf(format, args...))
}

func (c *Compiler) newTempName() string {
	c.tempSeq++
	return fmt.Sprintf("$t%d", c.tempSeq)
}

// compileBlockTopLevel compiles a plain statement sequence where no
// statement's value is preserved: every ExprStmt is evaluated purely for
// its side effects. Used for the module's own top level and for any nested
// block (if/while/for/naked-iterator body) that isn't a function body's
// outermost block — only that last case gets the last-statement-as-result
// treatment, see compileStmtsPreservingLast.
func (c *Compiler) compileBlockTopLevel(b *ast.Block) {
	for _, stmt := range b.Stmts {
		c.compileStmt(stmt)
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (c *Compiler) compileStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.compileExpr(s.X)
		c.chunk.EmitOp(chunk.POP)

	case *ast.VarDeclStmt:
		c.compileVarDecl(s)

	case *ast.AssignmentStmt:
		c.compileAssignment(s)

	case *ast.IndexAssignmentStmt:
		c.compileExpr(s.Array)
		c.compileExpr(s.Index)
		c.compileExpr(s.Value)
		c.chunk.EmitOp(chunk.SET_INDEX)
		c.chunk.EmitOp(chunk.POP)

	case *ast.PropertyAssignmentStmt:
		c.compilePropertyAssignment(s)

	case *ast.FunctionDefStmt:
		c.compileFunctionDefStmt(s)

	case *ast.IfStmt:
		c.compileIfStmt(s)

	case *ast.WhileStmt:
		c.compileWhileStmt(s)

	case *ast.ForStmt:
		c.compileForStmt(s)

	case *ast.NakedIteratorStmt:
		c.compileNakedIteratorStmt(s)

	case *ast.ImportStmt:
		c.compileImport(s)

	case *ast.ReturnStmt:
		c.compileReturnStmt(s)

	case *ast.BreakStmt:
		c.compileBreak(s.Position)

	case *ast.ContinueStmt:
		c.compileContinue(s.Position)

	case *ast.SwitchCaseStmt:
		// Recognized but not lowered: switch/case is accepted by the parser
		// for forward compatibility but the compiler emits no code for it.

	default:
		c.errorf(stmt.Pos(), "compiler: unhandled statement %T", stmt)
	}
}

func (c *Compiler) compileVarDecl(s *ast.VarDeclStmt) {
	idx, err := c.symtab.Declare(s.Name, s.Mutable)
	if err != nil {
		c.errorf(s.Position, "%s", err)
		idx = c.symtab.GetOrAdd(s.Name, false)
	}
	c.compileExpr(s.Value)
	c.chunk.EmitOpU16(chunk.STORE_VAR, idx)
}

func (c *Compiler) compileAssignment(s *ast.AssignmentStmt) {
	sym, ok := c.symtab.Lookup(s.Name)
	if !ok {
		c.errorf(s.Position, "undefined variable %q", s.Name)
		sym.Index = c.symtab.GetOrAdd(s.Name, false)
	} else if !sym.IsMutable {
		c.errorf(s.Position, "cannot assign to immutable variable %q", s.Name)
	}
	c.compileExpr(s.Value)
	c.chunk.EmitOpU16(chunk.STORE_VAR, sym.Index)
}

// compilePropertyAssignment handles both `obj.name = v` (SET_PROPERTY) and
// the deep `a.b.c = v` case, detected structurally when Object is itself a
// PropertyAccessExpr: the chain is flattened into a dotted path string and
// SET_NESTED_PROPERTY walks it at runtime.
func (c *Compiler) compilePropertyAssignment(s *ast.PropertyAssignmentStmt) {
	if nested, ok := s.Object.(*ast.PropertyAccessExpr); ok {
		root, path := flattenPropertyChain(nested)
		path = path + "." + s.Property
		c.compileExpr(root)
		c.chunk.EmitConstant(chunk.String(path))
		c.compileExpr(s.Value)
		c.chunk.EmitOp(chunk.SET_NESTED_PROPERTY)
	} else {
		c.compileExpr(s.Object)
		c.chunk.EmitConstant(chunk.String(s.Property))
		c.compileExpr(s.Value)
		c.chunk.EmitOp(chunk.SET_PROPERTY)
	}
	c.chunk.EmitOp(chunk.POP)
}

// flattenPropertyChain walks a chain of nested PropertyAccessExpr nodes down
// to its root (non-property) expression, returning that root and the
// dotted path of property names from the root to expr, e.g. for `g.p.q`'s
// assignment target `g.p` it returns (VariableExpr{g}, "p").
func flattenPropertyChain(expr *ast.PropertyAccessExpr) (ast.Expr, string) {
	var parts []string
	cur := expr
	for {
		parts = append([]string{cur.Property}, parts...)
		if inner, ok := cur.Object.(*ast.PropertyAccessExpr); ok {
			cur = inner
			continue
		}
		return cur.Object, strings.Join(parts, ".")
	}
}

// compileFunctionBody compiles fn as a standalone callable unit: a forward
// jump over the body (so straight-line execution never falls into it), the
// body itself compiled with a fresh locals window, and a trailing RETURN
// that is always emitted. It returns the start-IP of the body
// (the offset just after the forward jump).
func (c *Compiler) compileFunctionBody(fn *ast.FunctionDefExpr) int {
	skip := c.chunk.EmitJump(chunk.JUMP)
	startIP := c.chunk.Len()

	c.symtab.EnterFunction()
	for _, p := range fn.Params {
		if _, err := c.symtab.Declare(p, true); err != nil {
			c.errorf(fn.Position, "%s", err)
		}
	}
	c.compileStmtsPreservingLast(fn.Body.Stmts)
	c.chunk.EmitOp(chunk.RETURN)
	c.symtab.ExitFunction()
	c.symtab.Reset()

	c.chunk.PatchJump(skip)
	return startIP
}

// compileFunctionDefStmt reserves the start-IP constant and binds the name
// before compiling the body, so the body can call itself recursively; the
// constant is filled in once the start-IP is known.
func (c *Compiler) compileFunctionDefStmt(s *ast.FunctionDefStmt) {
	idx := c.chunk.AddConstant(chunk.Number(0))
	if idx > 0xff {
		c.errorf(s.Position, "too many top-level constants to index function %q", s.Name)
	}
	c.funcsByName.Put(s.Name, byte(idx))
	startIP := c.compileFunctionBody(s.Fn)
	c.chunk.Constants[idx] = chunk.Number(startIP)
	c.symtab.GetOrAdd(s.Name, true)
}

func (c *Compiler) compileIfStmt(s *ast.IfStmt) {
	c.compileExpr(s.Cond)
	thenJump := c.chunk.EmitJump(chunk.JUMP_IF_FALSE)
	c.compileBlockTopLevel(s.Body)
	if s.Else != nil {
		elseJump := c.chunk.EmitJump(chunk.JUMP)
		c.chunk.PatchJump(thenJump)
		c.compileBlockTopLevel(s.Else)
		c.chunk.PatchJump(elseJump)
	} else {
		c.chunk.PatchJump(thenJump)
	}
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) {
	loopStart := c.chunk.Len()
	c.compileExpr(s.Cond)
	exitJump := c.chunk.EmitJump(chunk.JUMP_IF_FALSE)

	c.loops = append(c.loops, loopCtx{forLoop: false, continueTarget: loopStart})
	c.compileBlockTopLevel(s.Body)
	ctx := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.chunk.EmitLoop(loopStart)
	c.chunk.PatchJump(exitJump)
	for _, j := range ctx.breakJumps {
		c.chunk.PatchJump(j)
	}
}

func (c *Compiler) compileForStmt(s *ast.ForStmt) {
	if s.Init != nil {
		c.compileStmt(s.Init)
	}
	loopStart := c.chunk.Len()
	var exitJump int
	hasCond := s.Cond != nil
	if hasCond {
		c.compileExpr(s.Cond)
		exitJump = c.chunk.EmitJump(chunk.JUMP_IF_FALSE)
	}

	c.loops = append(c.loops, loopCtx{forLoop: true})
	c.compileBlockTopLevel(s.Body)
	ctx := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	postStart := c.chunk.Len()
	for _, j := range ctx.continueJumps {
		c.chunk.PatchJump(j)
	}
	if s.Post != nil {
		c.compileStmt(s.Post)
	}
	_ = postStart
	c.chunk.EmitLoop(loopStart)
	if hasCond {
		c.chunk.PatchJump(exitJump)
	}
	for _, j := range ctx.breakJumps {
		c.chunk.PatchJump(j)
	}
}

// compileNakedIteratorStmt compiles `name: source body`. Two shapes of
// source are distinguished structurally at compile time, per the spec's
// documented array/object asymmetry: a RangeExpr drives a numeric
// start..end loop; an ArrayLiteralExpr is iterated directly, so Name is
// bound to each of its values; anything else is iterated by GET_KEYS, so
// Name is bound to each element of the key sequence in turn (the object's
// property names for an object, or the indices of an array held in a
// variable or returned by a call, whose shape is not known at compile time).
func (c *Compiler) compileNakedIteratorStmt(s *ast.NakedIteratorStmt) {
	if rng, ok := s.Source.(*ast.RangeExpr); ok {
		c.compileNakedIteratorRange(s, rng)
		return
	}
	c.compileNakedIteratorKeys(s)
}

func (c *Compiler) compileNakedIteratorRange(s *ast.NakedIteratorStmt, rng *ast.RangeExpr) {
	varIdx := c.symtab.GetOrAdd(s.Name, true)

	c.compileExpr(rng.Start)
	c.chunk.EmitOpU16(chunk.STORE_VAR, varIdx)

	loopStart := c.chunk.Len()
	c.chunk.EmitOpU16(chunk.LOAD_VAR, varIdx)
	c.compileExpr(rng.End)
	c.chunk.EmitOp(chunk.LTE)
	exitJump := c.chunk.EmitJump(chunk.JUMP_IF_FALSE)

	c.loops = append(c.loops, loopCtx{forLoop: true})
	c.compileBlockTopLevel(s.Body)
	ctx := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	incrStart := c.chunk.Len()
	for _, j := range ctx.continueJumps {
		c.chunk.PatchJump(j)
	}
	_ = incrStart
	c.chunk.EmitOpU16(chunk.LOAD_VAR, varIdx)
	c.chunk.EmitConstant(chunk.Number(1))
	c.chunk.EmitOp(chunk.ADD)
	c.chunk.EmitOpU16(chunk.STORE_VAR, varIdx)

	c.chunk.EmitLoop(loopStart)
	c.chunk.PatchJump(exitJump)
	for _, j := range ctx.breakJumps {
		c.chunk.PatchJump(j)
	}
}

func (c *Compiler) compileNakedIteratorKeys(s *ast.NakedIteratorStmt) {
	varIdx := c.symtab.GetOrAdd(s.Name, true)
	keysIdx := c.symtab.GetOrAdd(c.newTempName(), true)
	idxIdx := c.symtab.GetOrAdd(c.newTempName(), true)

	c.compileExpr(s.Source)
	if _, isArrayLit := s.Source.(*ast.ArrayLiteralExpr); !isArrayLit {
		c.chunk.EmitOp(chunk.GET_KEYS)
	}
	c.chunk.EmitOpU16(chunk.STORE_VAR, keysIdx)

	c.chunk.EmitConstant(chunk.Number(0))
	c.chunk.EmitOpU16(chunk.STORE_VAR, idxIdx)

	loopStart := c.chunk.Len()
	c.chunk.EmitOpU16(chunk.LOAD_VAR, idxIdx)
	c.chunk.EmitOpU16(chunk.LOAD_VAR, keysIdx)
	c.chunk.EmitOp(chunk.GET_LENGTH)
	c.chunk.EmitOp(chunk.LT)
	exitJump := c.chunk.EmitJump(chunk.JUMP_IF_FALSE)

	c.chunk.EmitOpU16(chunk.LOAD_VAR, keysIdx)
	c.chunk.EmitOpU16(chunk.LOAD_VAR, idxIdx)
	c.chunk.EmitOp(chunk.GET_INDEX)
	c.chunk.EmitOpU16(chunk.STORE_VAR, varIdx)

	c.loops = append(c.loops, loopCtx{forLoop: true})
	c.compileBlockTopLevel(s.Body)
	ctx := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	incrStart := c.chunk.Len()
	for _, j := range ctx.continueJumps {
		c.chunk.PatchJump(j)
	}
	_ = incrStart
	c.chunk.EmitOpU16(chunk.LOAD_VAR, idxIdx)
	c.chunk.EmitConstant(chunk.Number(1))
	c.chunk.EmitOp(chunk.ADD)
	c.chunk.EmitOpU16(chunk.STORE_VAR, idxIdx)

	c.chunk.EmitLoop(loopStart)
	c.chunk.PatchJump(exitJump)
	for _, j := range ctx.breakJumps {
		c.chunk.PatchJump(j)
	}
}

func (c *Compiler) compileBreak(pos token.Position) {
	if len(c.loops) == 0 {
		c.errorf(pos, "break outside of a loop")
		return
	}
	top := &c.loops[len(c.loops)-1]
	site := c.chunk.EmitJump(chunk.JUMP)
	top.breakJumps = append(top.breakJumps, site)
}

func (c *Compiler) compileContinue(pos token.Position) {
	if len(c.loops) == 0 {
		c.errorf(pos, "continue outside of a loop")
		return
	}
	top := &c.loops[len(c.loops)-1]
	if top.forLoop {
		site := c.chunk.EmitJump(chunk.JUMP)
		top.continueJumps = append(top.continueJumps, site)
	} else {
		c.chunk.EmitLoop(top.continueTarget)
	}
}

// compileImport compiles a `.ember` path by reading and recursively
// compiling it straight into the current chunk and symbol table (so its
// top-level declarations land in the importing module's own global slots,
// matching the flat, single-namespace symbol table). A bare (non-.ember)
// path names a host-provided module: the compiler only validates it
// against the registry and emits no code.
func (c *Compiler) compileImport(s *ast.ImportStmt) {
	if filepath.Ext(s.Path) != ".ember" {
		if !c.registry.Has(s.Path) {
			c.errorf(s.Position, "unknown module %q", s.Path)
		}
		return
	}

	if c.importing[s.Path] {
		c.errorf(s.Position, "import cycle via %q", s.Path)
		return
	}
	src, err := c.importer.ReadFile(s.Path)
	if err != nil {
		c.errorf(s.Position, "cannot read import %q: %s", s.Path, err)
		return
	}
	imported, err := parser.ParseFile(s.Path, src)
	if err != nil {
		c.errorf(s.Position, "%s", err)
		return
	}

	c.importing[s.Path] = true
	c.compileBlockTopLevel(imported.Block)
	delete(c.importing, s.Path)
}

func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) {
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else {
		c.chunk.EmitConstant(chunk.Null{})
	}
	c.chunk.EmitOp(chunk.RETURN)
}

// ---------------------------------------------------------------------------
// Function-body statement sequencing: the last statement of a function body
// is compiled so its value survives on the stack as the function's implicit
// result (so `fn(x) { x + 1 }` needs no explicit return), recursing through
// nested if/else branches. Every other statement, here and everywhere else,
// is compiled for effect only.
// ---------------------------------------------------------------------------

func (c *Compiler) compileStmtsPreservingLast(stmts []ast.Stmt) {
	if len(stmts) == 0 {
		c.chunk.EmitConstant(chunk.Null{})
		return
	}
	for i, stmt := range stmts {
		if i == len(stmts)-1 {
			c.compileLastStmt(stmt)
		} else {
			c.compileStmt(stmt)
		}
	}
}

func (c *Compiler) compileLastStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.compileExpr(s.X)
	case *ast.IfStmt:
		c.compileIfExpr(s)
	case *ast.ReturnStmt:
		c.compileReturnStmt(s)
	default:
		c.compileStmt(stmt)
		c.chunk.EmitConstant(chunk.Null{})
	}
}

// compileIfExpr compiles an if/else appearing in expression (value-producing)
// position: both arms are compiled with compileStmtsPreservingLast so the
// chosen arm's last statement's value is what remains on the stack, and a
// missing else arm contributes null.
func (c *Compiler) compileIfExpr(s *ast.IfStmt) {
	c.compileExpr(s.Cond)
	thenJump := c.chunk.EmitJump(chunk.JUMP_IF_FALSE)
	c.compileStmtsPreservingLast(s.Body.Stmts)
	elseJump := c.chunk.EmitJump(chunk.JUMP)
	c.chunk.PatchJump(thenJump)
	if s.Else != nil {
		c.compileStmtsPreservingLast(s.Else.Stmts)
	} else {
		c.chunk.EmitConstant(chunk.Null{})
	}
	c.chunk.PatchJump(elseJump)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (c *Compiler) compileExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		c.compileLiteral(e)
	case *ast.VariableExpr:
		c.compileVariable(e)
	case *ast.BinaryOpExpr:
		c.compileBinaryOp(e)
	case *ast.UnaryOpExpr:
		c.compileUnaryOp(e)
	case *ast.ArrayLiteralExpr:
		c.compileArrayLiteral(e)
	case *ast.IndexAccessExpr:
		c.compileExpr(e.Array)
		c.compileExpr(e.Index)
		c.chunk.EmitOp(chunk.GET_INDEX)
	case *ast.ObjectLiteralExpr:
		c.compileObjectLiteral(e)
	case *ast.PropertyAccessExpr:
		c.compileExpr(e.Object)
		c.chunk.EmitConstant(chunk.String(e.Property))
		c.chunk.EmitOp(chunk.GET_PROPERTY)
	case *ast.MethodCallExpr:
		c.compileMethodCall(e)
	case *ast.FunctionDefExpr:
		c.compileFunctionDefExpr(e)
	case *ast.FunctionCallExpr:
		c.compileFunctionCall(e)
	case *ast.RangeExpr:
		c.compileRangeAsObject(e)
	default:
		c.errorf(expr.Pos(), "compiler: unhandled expression %T", expr)
	}
}

func (c *Compiler) compileLiteral(e *ast.LiteralExpr) {
	switch e.Kind {
	case token.NUMBER:
		n, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			c.errorf(e.Position, "invalid number literal %q", e.Text)
		}
		c.chunk.EmitConstant(chunk.Number(n))
	case token.STRING:
		c.chunk.EmitConstant(chunk.String(e.Text))
	case token.BOOLEAN:
		c.chunk.EmitConstant(chunk.Boolean(e.Text == "true"))
	case token.NULL:
		c.chunk.EmitConstant(chunk.Null{})
	default:
		c.errorf(e.Position, "compiler: unhandled literal kind %s", e.Kind)
	}
}

func (c *Compiler) compileVariable(e *ast.VariableExpr) {
	if e.Name == "this" {
		c.chunk.EmitOpU16(chunk.LOAD_VAR, symtab.ThisSlot)
		return
	}
	sym, ok := c.symtab.Lookup(e.Name)
	if !ok {
		c.errorf(e.Position, "undefined variable %q", e.Name)
		sym.Index = c.symtab.GetOrAdd(e.Name, false)
	}
	c.chunk.EmitOpU16(chunk.LOAD_VAR, sym.Index)
}

var binaryOps = map[token.Kind]chunk.Opcode{
	token.PLUS:    chunk.ADD,
	token.MINUS:   chunk.SUB,
	token.STAR:    chunk.MUL,
	token.SLASH:   chunk.DIV,
	token.PERCENT: chunk.MOD,
	token.EQ:      chunk.EQ,
	token.NEQ:     chunk.NEQ,
	token.LT:      chunk.LT,
	token.GT:      chunk.GT,
	token.LE:      chunk.LTE,
	token.GE:      chunk.GTE,
	token.ANDAND:  chunk.AND,
	token.OROR:    chunk.OR,
}

func (c *Compiler) compileBinaryOp(e *ast.BinaryOpExpr) {
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	op, ok := binaryOps[e.Op]
	if !ok {
		c.errorf(e.Position, "compiler: unhandled binary operator %s", e.Op)
		return
	}
	c.chunk.EmitOp(op)
}

func (c *Compiler) compileUnaryOp(e *ast.UnaryOpExpr) {
	c.compileExpr(e.Operand)
	switch e.Op {
	case token.MINUS:
		c.chunk.EmitOp(chunk.NEG)
	case token.BANG:
		c.chunk.EmitOp(chunk.NOT)
	default:
		c.errorf(e.Position, "compiler: unhandled unary operator %s", e.Op)
	}
}

func (c *Compiler) compileArrayLiteral(e *ast.ArrayLiteralExpr) {
	c.chunk.EmitOp(chunk.NEW_ARRAY)
	for _, el := range e.Elements {
		c.compileExpr(el)
		c.chunk.EmitOp(chunk.ARRAY_PUSH)
	}
}

// compileObjectLiteral lowers `{ :[Mixin...], k: v, ... }`. Each mixin is
// merged in order via COPY_PROPERTIES (later mixins and then the literal's
// own properties win over earlier ones on key collision), then each
// declared property is set with SET_PROPERTY.
func (c *Compiler) compileObjectLiteral(e *ast.ObjectLiteralExpr) {
	c.chunk.EmitOp(chunk.NEW_OBJECT)
	for _, mixin := range e.Mixins {
		c.compileVariable(&ast.VariableExpr{Position: e.Position, Name: mixin})
		c.chunk.EmitOp(chunk.COPY_PROPERTIES)
	}
	for _, prop := range e.Properties {
		c.chunk.EmitConstant(chunk.String(prop.Key))
		c.compileExpr(prop.Value)
		c.chunk.EmitOp(chunk.SET_PROPERTY)
	}
}

// compileMethodCall lowers `obj.method(args...)`. The object is duplicated
// before the property lookup consumes one copy, so the other survives on
// the stack underneath the looked-up method value to serve as CALL_METHOD's
// `this` receiver.
func (c *Compiler) compileMethodCall(e *ast.MethodCallExpr) {
	c.compileExpr(e.Object)
	c.chunk.EmitOp(chunk.DUP)
	c.chunk.EmitConstant(chunk.String(e.Method))
	c.chunk.EmitOp(chunk.GET_PROPERTY)

	for i := len(e.Args) - 1; i >= 0; i-- {
		c.compileExpr(e.Args[i])
	}
	if len(e.Args) > 0xff {
		c.errorf(e.Position, "too many arguments to %s(...)", e.Method)
	}
	c.chunk.EmitOpU8(chunk.CALL_METHOD, byte(len(e.Args)))
}

// compileFunctionDefExpr lowers an anonymous function appearing in
// expression position (e.g. as an object-literal property value): the
// function's body is compiled like any other, but instead of recording its
// start-IP under a name, a Function-tagged constant is emitted so the value
// can be stored, passed around, and later invoked via CALL_METHOD.
func (c *Compiler) compileFunctionDefExpr(e *ast.FunctionDefExpr) {
	startIP := c.compileFunctionBody(e)
	c.chunk.EmitConstant(&chunk.Function{
		Kind:    chunk.UserFunc,
		Name:    "<anonymous>",
		Params:  append([]string(nil), e.Params...),
		StartIP: startIP,
	})
}

// compileFunctionCall lowers a call to a function by name. Arguments are
// compiled in reverse order so that the VM, popping them in LIFO order,
// assigns them to parameter slots in declared order.
func (c *Compiler) compileFunctionCall(e *ast.FunctionCallExpr) {
	for i := len(e.Args) - 1; i >= 0; i-- {
		c.compileExpr(e.Args[i])
	}
	if len(e.Args) > 0xff {
		c.errorf(e.Position, "too many arguments to %s(...)", e.Name)
	}

	if e.Name == "print" {
		if len(e.Args) != 1 {
			c.errorf(e.Position, "print expects exactly 1 argument, got %d", len(e.Args))
		}
		// PRINT itself leaves a null result on the stack for the call
		// expression's value; no separate push is needed here.
		c.chunk.EmitOp(chunk.PRINT)
		return
	}

	idx, ok := c.funcsByName.Get(e.Name)
	if !ok {
		c.errorf(e.Position, "undefined function %q", e.Name)
		idx = 0
	}
	c.chunk.EmitCall(idx, byte(len(e.Args)))
}

// compileRangeAsObject lowers a RangeExpr appearing outside a naked
// iterator's header into a plain two-property {start, end} object, per the
// glossary's definition of a Range as sugar rather than a distinct runtime
// type.
func (c *Compiler) compileRangeAsObject(e *ast.RangeExpr) {
	c.chunk.EmitOp(chunk.NEW_OBJECT)
	c.chunk.EmitConstant(chunk.String("start"))
	c.compileExpr(e.Start)
	c.chunk.EmitOp(chunk.SET_PROPERTY)
	c.chunk.EmitConstant(chunk.String("end"))
	c.compileExpr(e.End)
	c.chunk.EmitOp(chunk.SET_PROPERTY)
}
