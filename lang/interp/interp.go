// Package interp evaluates a parsed ast.Chunk directly, without compiling it
// to bytecode first: the `exec` path's interpreter backend (spec.md §4.6),
// used interchangeably with lang/compiler+lang/vm since both execute the
// same language and are expected to produce identical observable behavior
// for every construct they both support. Two deviations are intentional and
// documented where they occur: nested property assignment evaluates the
// object chain directly rather than flattening it to a dotted-path string,
// and a function body's final if/else naturally produces a value through
// the same block-evaluation path used everywhere else.
package interp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/embervm/ember/lang/ast"
	"github.com/embervm/ember/lang/chunk"
	"github.com/embervm/ember/lang/parser"
	"github.com/embervm/ember/lang/registry"
	"github.com/embervm/ember/lang/token"
)

// RuntimeError is a fault raised while evaluating the tree: unlike
// vm.RuntimeError, a Position is always available, since every ast node
// carries one.
type RuntimeError struct {
	Pos token.Position
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: runtime error: %s", e.Pos, e.Msg)
}

// Importer reads the source of an imported .ember file.
type Importer interface {
	ReadFile(path string) ([]byte, error)
}

type osImporter struct{}

func (osImporter) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Option configures an Interp.
type Option func(*Interp)

func WithStdout(w io.Writer) Option    { return func(i *Interp) { i.stdout = w } }
func WithStderr(w io.Writer) Option    { return func(i *Interp) { i.stderr = w } }
func WithImporter(imp Importer) Option { return func(i *Interp) { i.importer = imp } }
func WithRegistry(r *registry.Registry) Option {
	return func(i *Interp) { i.registry = r }
}

// ctrlKind tags the non-local control-flow effect of evaluating one
// statement, threaded back up through block evaluation in place of a Go
// exception: ctrlNone means normal fallthrough, the other three bubble up
// to the nearest loop (break/continue) or function call (return).
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

type result struct {
	ctrl  ctrlKind
	value chunk.Value
}

// Interp holds the state of one evaluation: I/O sinks, the import resolver
// and named-module registry, and an import-cycle guard, mirroring
// lang/compiler.Compiler's own option set so the two backends are
// configured identically by an embedder.
type Interp struct {
	stdout   io.Writer
	stderr   io.Writer
	importer Importer
	registry *registry.Registry

	importing map[string]bool
}

// New returns an Interp ready to evaluate one ast.Chunk (and, transitively,
// whatever it imports).
func New(opts ...Option) *Interp {
	i := &Interp{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		importer:  osImporter{},
		registry:  registry.Standard(),
		importing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Exec parses and evaluates src (named filename for diagnostics) against a
// fresh root Environment.
func Exec(filename string, src []byte, opts ...Option) error {
	astChunk, err := parser.ParseFile(filename, src)
	if err != nil {
		return err
	}
	i := New(opts...)
	env := NewEnvironment()
	_, err = i.evalBlock(astChunk.Block, env)
	return err
}

func fault(pos token.Position, format string, args ...interface{}) error {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// evalBlock evaluates every statement of b in env, propagating the first
// non-ctrlNone result (break/continue/return) without evaluating further
// statements. The block's own value is whatever evalLastStmt produces for
// its final statement, following the same "last statement is the block's
// result" convention the compiler uses for function bodies — applied here
// uniformly to every block, since the interpreter has no separate
// expression-producing code path to special-case it.
func (i *Interp) evalBlock(b *ast.Block, env *Environment) (result, error) {
	if len(b.Stmts) == 0 {
		return result{value: chunk.Null{}}, nil
	}
	for idx, stmt := range b.Stmts {
		if idx == len(b.Stmts)-1 {
			return i.evalLastStmt(stmt, env)
		}
		r, err := i.evalStmt(stmt, env)
		if err != nil {
			return result{}, err
		}
		if r.ctrl != ctrlNone {
			return r, nil
		}
	}
	panic("unreachable")
}

func (i *Interp) evalLastStmt(stmt ast.Stmt, env *Environment) (result, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		v, err := i.evalExpr(s.X, env)
		return result{value: v}, err
	case *ast.IfStmt:
		return i.evalIf(s, env)
	case *ast.ReturnStmt:
		v, err := i.evalReturnValue(s, env)
		if err != nil {
			return result{}, err
		}
		return result{ctrl: ctrlReturn, value: v}, nil
	default:
		r, err := i.evalStmt(stmt, env)
		if err != nil {
			return result{}, err
		}
		if r.ctrl != ctrlNone {
			return r, nil
		}
		return result{value: chunk.Null{}}, nil
	}
}

func (i *Interp) evalReturnValue(s *ast.ReturnStmt, env *Environment) (chunk.Value, error) {
	if s.Value == nil {
		return chunk.Null{}, nil
	}
	return i.evalExpr(s.Value, env)
}

func (i *Interp) evalStmt(stmt ast.Stmt, env *Environment) (result, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.X, env)
		return result{}, err

	case *ast.VarDeclStmt:
		v, err := i.evalExpr(s.Value, env)
		if err != nil {
			return result{}, err
		}
		env.Declare(s.Name, v, s.Mutable)
		return result{}, nil

	case *ast.AssignmentStmt:
		v, err := i.evalExpr(s.Value, env)
		if err != nil {
			return result{}, err
		}
		found, mutable := env.Assign(s.Name, v)
		if !found {
			return result{}, fault(s.Position, "undefined variable %q", s.Name)
		}
		if !mutable {
			return result{}, fault(s.Position, "cannot assign to immutable variable %q", s.Name)
		}
		return result{}, nil

	case *ast.IndexAssignmentStmt:
		return result{}, i.evalIndexAssignment(s, env)

	case *ast.PropertyAssignmentStmt:
		return result{}, i.evalPropertyAssignment(s, env)

	case *ast.FunctionDefStmt:
		env.Declare(s.Name, i.makeClosure(s.Fn, s.Name, env), false)
		return result{}, nil

	case *ast.IfStmt:
		return i.evalIf(s, env)

	case *ast.WhileStmt:
		return i.evalWhile(s, env)

	case *ast.ForStmt:
		return i.evalFor(s, env)

	case *ast.NakedIteratorStmt:
		return i.evalNakedIterator(s, env)

	case *ast.ImportStmt:
		return result{}, i.evalImport(s, env)

	case *ast.ReturnStmt:
		v, err := i.evalReturnValue(s, env)
		if err != nil {
			return result{}, err
		}
		return result{ctrl: ctrlReturn, value: v}, nil

	case *ast.BreakStmt:
		return result{ctrl: ctrlBreak}, nil

	case *ast.ContinueStmt:
		return result{ctrl: ctrlContinue}, nil

	case *ast.SwitchCaseStmt:
		// Recognized but not evaluated, matching the compiled path's
		// treatment of switch/case (lang/compiler.compileStmt).
		return result{}, nil

	default:
		return result{}, fault(stmt.Pos(), "interp: unhandled statement %T", stmt)
	}
}

func (i *Interp) evalIndexAssignment(s *ast.IndexAssignmentStmt, env *Environment) error {
	av, err := i.evalExpr(s.Array, env)
	if err != nil {
		return err
	}
	arr, ok := av.(*chunk.Array)
	if !ok {
		return fault(s.Position, "cannot index-assign into a %s", av.Type())
	}
	iv, err := i.evalExpr(s.Index, env)
	if err != nil {
		return err
	}
	idx, ok := iv.(chunk.Number)
	if !ok || int(idx) < 0 || int(idx) >= len(arr.Elems) {
		return fault(s.Position, "array index out of range")
	}
	vv, err := i.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	arr.Elems[int(idx)] = vv
	return nil
}

// evalPropertyAssignment handles both `obj.name = v` and the deep `a.b.c =
// v` case. Unlike the compiler, which must flatten a nested chain to a
// dotted string for SET_NESTED_PROPERTY, the interpreter evaluates s.Object
// directly — if it is itself a PropertyAccessExpr, evaluating it walks the
// chain via ordinary recursive evaluation, landing on the innermost *chunk.
// Object to assign into. This is the "nested property assignment is
// supported directly by the interpreter" deviation spec.md §9 documents.
func (i *Interp) evalPropertyAssignment(s *ast.PropertyAssignmentStmt, env *Environment) error {
	ov, err := i.evalExpr(s.Object, env)
	if err != nil {
		return err
	}
	obj, ok := ov.(*chunk.Object)
	if !ok {
		return fault(s.Position, "cannot set a property on a %s", ov.Type())
	}
	vv, err := i.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	obj.Set(s.Property, vv)
	return nil
}

func (i *Interp) evalIf(s *ast.IfStmt, env *Environment) (result, error) {
	cond, err := i.evalExpr(s.Cond, env)
	if err != nil {
		return result{}, err
	}
	if cond.Truthy() {
		return i.evalBlock(s.Body, env)
	}
	if s.Else != nil {
		return i.evalBlock(s.Else, env)
	}
	return result{value: chunk.Null{}}, nil
}

func (i *Interp) evalWhile(s *ast.WhileStmt, env *Environment) (result, error) {
	for {
		cond, err := i.evalExpr(s.Cond, env)
		if err != nil {
			return result{}, err
		}
		if !cond.Truthy() {
			return result{}, nil
		}
		r, err := i.evalBlock(s.Body, env)
		if err != nil {
			return result{}, err
		}
		switch r.ctrl {
		case ctrlBreak:
			return result{}, nil
		case ctrlReturn:
			return r, nil
		}
	}
}

func (i *Interp) evalFor(s *ast.ForStmt, env *Environment) (result, error) {
	if s.Init != nil {
		if _, err := i.evalStmt(s.Init, env); err != nil {
			return result{}, err
		}
	}
	for {
		if s.Cond != nil {
			cv, err := i.evalExpr(s.Cond, env)
			if err != nil {
				return result{}, err
			}
			if !cv.Truthy() {
				return result{}, nil
			}
		}
		r, err := i.evalBlock(s.Body, env)
		if err != nil {
			return result{}, err
		}
		if r.ctrl == ctrlBreak {
			return result{}, nil
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		if s.Post != nil {
			if _, err := i.evalStmt(s.Post, env); err != nil {
				return result{}, err
			}
		}
	}
}

// evalNakedIterator mirrors lang/compiler.compileNakedIteratorStmt's
// resolution of the array/object asymmetry: a RangeExpr source drives an
// inclusive numeric loop; an ArrayLiteralExpr source binds Name to each of
// its values; any other source is iterated by key (indices for an array,
// property names for an object), with Name bound to each key in turn rather
// than the corresponding value.
func (i *Interp) evalNakedIterator(s *ast.NakedIteratorStmt, env *Environment) (result, error) {
	if rng, ok := s.Source.(*ast.RangeExpr); ok {
		return i.evalNakedIteratorRange(s, rng, env)
	}
	return i.evalNakedIteratorKeys(s, env)
}

func (i *Interp) evalNakedIteratorRange(s *ast.NakedIteratorStmt, rng *ast.RangeExpr, env *Environment) (result, error) {
	startV, err := i.evalExpr(rng.Start, env)
	if err != nil {
		return result{}, err
	}
	endV, err := i.evalExpr(rng.End, env)
	if err != nil {
		return result{}, err
	}
	start, ok := startV.(chunk.Number)
	if !ok {
		return result{}, fault(rng.Position, "range start must be a number")
	}
	end, ok := endV.(chunk.Number)
	if !ok {
		return result{}, fault(rng.Position, "range end must be a number")
	}
	for n := start; n <= end; n++ {
		env.Declare(s.Name, n, true)
		r, err := i.evalBlock(s.Body, env)
		if err != nil {
			return result{}, err
		}
		if r.ctrl == ctrlBreak {
			return result{}, nil
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
	}
	return result{}, nil
}

func (i *Interp) evalNakedIteratorKeys(s *ast.NakedIteratorStmt, env *Environment) (result, error) {
	srcV, err := i.evalExpr(s.Source, env)
	if err != nil {
		return result{}, err
	}

	var keys []chunk.Value
	switch src := srcV.(type) {
	case *chunk.Array:
		_, isArrayLit := s.Source.(*ast.ArrayLiteralExpr)
		for idx, el := range src.Elems {
			if isArrayLit {
				keys = append(keys, el)
			} else {
				keys = append(keys, chunk.Number(idx))
			}
		}
	case *chunk.Object:
		for _, k := range src.Keys() {
			keys = append(keys, chunk.String(k))
		}
	default:
		return result{}, fault(s.Position, "cannot iterate a %s", srcV.Type())
	}

	for _, k := range keys {
		env.Declare(s.Name, k, true)
		r, err := i.evalBlock(s.Body, env)
		if err != nil {
			return result{}, err
		}
		if r.ctrl == ctrlBreak {
			return result{}, nil
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
	}
	return result{}, nil
}

// evalImport mirrors lang/compiler.compileImport: a `.ember` path is read
// and recursively evaluated straight into the current environment (so its
// top-level declarations become visible to the importing module); a bare
// path names a host-provided module validated against the registry.
func (i *Interp) evalImport(s *ast.ImportStmt, env *Environment) error {
	if filepath.Ext(s.Path) != ".ember" {
		if !i.registry.Has(s.Path) {
			return fault(s.Position, "unknown module %q", s.Path)
		}
		return nil
	}

	if i.importing[s.Path] {
		return fault(s.Position, "import cycle via %q", s.Path)
	}
	src, err := i.importer.ReadFile(s.Path)
	if err != nil {
		return fault(s.Position, "cannot read import %q: %s", s.Path, err)
	}
	imported, err := parser.ParseFile(s.Path, src)
	if err != nil {
		return err
	}

	i.importing[s.Path] = true
	defer delete(i.importing, s.Path)
	_, err = i.evalBlock(imported.Block, env)
	return err
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (i *Interp) evalExpr(expr ast.Expr, env *Environment) (chunk.Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return i.evalLiteral(e)
	case *ast.VariableExpr:
		return i.evalVariable(e, env)
	case *ast.BinaryOpExpr:
		return i.evalBinaryOp(e, env)
	case *ast.UnaryOpExpr:
		return i.evalUnaryOp(e, env)
	case *ast.ArrayLiteralExpr:
		return i.evalArrayLiteral(e, env)
	case *ast.IndexAccessExpr:
		return i.evalIndexAccess(e, env)
	case *ast.ObjectLiteralExpr:
		return i.evalObjectLiteral(e, env)
	case *ast.PropertyAccessExpr:
		return i.evalPropertyAccess(e, env)
	case *ast.MethodCallExpr:
		return i.evalMethodCall(e, env)
	case *ast.FunctionDefExpr:
		return i.makeClosure(e, "<anonymous>", env), nil
	case *ast.FunctionCallExpr:
		return i.evalFunctionCall(e, env)
	case *ast.RangeExpr:
		return i.evalRangeAsObject(e, env)
	default:
		return nil, fault(expr.Pos(), "interp: unhandled expression %T", expr)
	}
}

func (i *Interp) evalLiteral(e *ast.LiteralExpr) (chunk.Value, error) {
	switch e.Kind {
	case token.NUMBER:
		n, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			return nil, fault(e.Position, "invalid number literal %q", e.Text)
		}
		return chunk.Number(n), nil
	case token.STRING:
		return chunk.String(e.Text), nil
	case token.BOOLEAN:
		return chunk.Boolean(e.Text == "true"), nil
	case token.NULL:
		return chunk.Null{}, nil
	default:
		return nil, fault(e.Position, "interp: unhandled literal kind %s", e.Kind)
	}
}

func (i *Interp) evalVariable(e *ast.VariableExpr, env *Environment) (chunk.Value, error) {
	v, ok := env.Lookup(e.Name)
	if !ok {
		return nil, fault(e.Position, "undefined variable %q", e.Name)
	}
	return v, nil
}

func (i *Interp) evalBinaryOp(e *ast.BinaryOpExpr, env *Environment) (chunk.Value, error) {
	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.PLUS:
		return evalAdd(e.Position, left, right)
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return evalArith(e.Position, e.Op, left, right)
	case token.EQ:
		return chunk.Boolean(valuesEqual(left, right)), nil
	case token.NEQ:
		return chunk.Boolean(!valuesEqual(left, right)), nil
	case token.LT, token.GT, token.LE, token.GE:
		return evalCompare(e.Position, e.Op, left, right)
	case token.ANDAND:
		return chunk.Boolean(left.Truthy() && right.Truthy()), nil
	case token.OROR:
		return chunk.Boolean(left.Truthy() || right.Truthy()), nil
	default:
		return nil, fault(e.Position, "interp: unhandled binary operator %s", e.Op)
	}
}

func evalAdd(pos token.Position, left, right chunk.Value) (chunk.Value, error) {
	ls, lIsStr := left.(chunk.String)
	rs, rIsStr := right.(chunk.String)
	if lIsStr || rIsStr {
		l, r := left.String(), right.String()
		if lIsStr {
			l = string(ls)
		}
		if rIsStr {
			r = string(rs)
		}
		return chunk.String(l + r), nil
	}
	ln, lok := left.(chunk.Number)
	rn, rok := right.(chunk.Number)
	if !lok || !rok {
		return nil, fault(pos, "operands must be numbers, got %s and %s", left.Type(), right.Type())
	}
	return ln + rn, nil
}

func evalArith(pos token.Position, op token.Kind, left, right chunk.Value) (chunk.Value, error) {
	ln, lok := left.(chunk.Number)
	rn, rok := right.(chunk.Number)
	if !lok || !rok {
		return nil, fault(pos, "operands must be numbers, got %s and %s", left.Type(), right.Type())
	}
	switch op {
	case token.MINUS:
		return ln - rn, nil
	case token.STAR:
		return ln * rn, nil
	case token.SLASH:
		if rn == 0 {
			return nil, fault(pos, "division by zero")
		}
		return ln / rn, nil
	case token.PERCENT:
		if rn == 0 {
			return nil, fault(pos, "division by zero")
		}
		return chunk.Number(int64(ln) % int64(rn)), nil
	}
	panic("unreachable")
}

func evalCompare(pos token.Position, op token.Kind, left, right chunk.Value) (chunk.Value, error) {
	var cmp int
	switch l := left.(type) {
	case chunk.String:
		r, ok := right.(chunk.String)
		if !ok {
			return nil, fault(pos, "cannot compare string with %s", right.Type())
		}
		cmp = strings.Compare(string(l), string(r))
	case chunk.Number:
		r, ok := right.(chunk.Number)
		if !ok {
			return nil, fault(pos, "cannot compare number with %s", right.Type())
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	default:
		return nil, fault(pos, "operands must both be numbers or both be strings, got %s and %s", left.Type(), right.Type())
	}
	switch op {
	case token.LT:
		return chunk.Boolean(cmp < 0), nil
	case token.GT:
		return chunk.Boolean(cmp > 0), nil
	case token.LE:
		return chunk.Boolean(cmp <= 0), nil
	case token.GE:
		return chunk.Boolean(cmp >= 0), nil
	}
	panic("unreachable")
}

func valuesEqual(a, b chunk.Value) bool {
	switch av := a.(type) {
	case chunk.Null:
		_, ok := b.(chunk.Null)
		return ok
	case chunk.Number:
		bv, ok := b.(chunk.Number)
		return ok && av == bv
	case chunk.Boolean:
		bv, ok := b.(chunk.Boolean)
		return ok && av == bv
	case chunk.String:
		bv, ok := b.(chunk.String)
		return ok && av == bv
	case *chunk.Array:
		bv, ok := b.(*chunk.Array)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for idx := range av.Elems {
			if !valuesEqual(av.Elems[idx], bv.Elems[idx]) {
				return false
			}
		}
		return true
	case *chunk.Object:
		bv, ok := b.(*chunk.Object)
		if !ok || len(av.Props) != len(bv.Props) {
			return false
		}
		for _, p := range av.Props {
			other, found := bv.Get(p.Key)
			if !found || !valuesEqual(p.Value, other) {
				return false
			}
		}
		return true
	case *chunk.Function:
		bv, ok := b.(*chunk.Function)
		return ok && av == bv
	}
	return false
}

func (i *Interp) evalUnaryOp(e *ast.UnaryOpExpr, env *Environment) (chunk.Value, error) {
	v, err := i.evalExpr(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.MINUS:
		n, ok := v.(chunk.Number)
		if !ok {
			return nil, fault(e.Position, "operand must be a number")
		}
		return -n, nil
	case token.BANG:
		return chunk.Boolean(!v.Truthy()), nil
	default:
		return nil, fault(e.Position, "interp: unhandled unary operator %s", e.Op)
	}
}

func (i *Interp) evalArrayLiteral(e *ast.ArrayLiteralExpr, env *Environment) (chunk.Value, error) {
	arr := chunk.NewArray()
	for _, elExpr := range e.Elements {
		v, err := i.evalExpr(elExpr, env)
		if err != nil {
			return nil, err
		}
		arr.Push(v)
	}
	return arr, nil
}

func (i *Interp) evalIndexAccess(e *ast.IndexAccessExpr, env *Environment) (chunk.Value, error) {
	av, err := i.evalExpr(e.Array, env)
	if err != nil {
		return nil, err
	}
	arr, ok := av.(*chunk.Array)
	if !ok {
		return nil, fault(e.Position, "cannot index a %s", av.Type())
	}
	iv, err := i.evalExpr(e.Index, env)
	if err != nil {
		return nil, err
	}
	idx, ok := iv.(chunk.Number)
	if !ok {
		return nil, fault(e.Position, "array index must be a number")
	}
	n := int(idx)
	if n < 0 || n >= len(arr.Elems) {
		return nil, fault(e.Position, "array index out of range (%d, length %d)", n, len(arr.Elems))
	}
	return arr.Elems[n], nil
}

// evalObjectLiteral mirrors lang/compiler.compileObjectLiteral's merge
// order: mixins are applied in order (later mixins win on key collision),
// then the literal's own properties are set, winning over any mixin.
func (i *Interp) evalObjectLiteral(e *ast.ObjectLiteralExpr, env *Environment) (chunk.Value, error) {
	obj := chunk.NewObject()
	for _, mixinName := range e.Mixins {
		mv, ok := env.Lookup(mixinName)
		if !ok {
			return nil, fault(e.Position, "undefined variable %q", mixinName)
		}
		mixin, ok := mv.(*chunk.Object)
		if !ok {
			return nil, fault(e.Position, "mixin %q is not an object", mixinName)
		}
		obj.CopyFrom(mixin)
	}
	for _, prop := range e.Properties {
		v, err := i.evalExpr(prop.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(prop.Key, v)
	}
	return obj, nil
}

func (i *Interp) evalPropertyAccess(e *ast.PropertyAccessExpr, env *Environment) (chunk.Value, error) {
	ov, err := i.evalExpr(e.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := ov.(*chunk.Object)
	if !ok {
		return nil, fault(e.Position, "cannot read a property of a %s", ov.Type())
	}
	v, found := obj.Get(e.Property)
	if !found {
		fmt.Fprintf(i.stderr, "warning: property %q not found, recovered to null\n", e.Property)
		return chunk.Null{}, nil
	}
	return v, nil
}

// evalMethodCall evaluates `obj.method(args...)`, binding the synthetic
// `this` receiver in the callee's own child environment per spec.md §4.6.
func (i *Interp) evalMethodCall(e *ast.MethodCallExpr, env *Environment) (chunk.Value, error) {
	ov, err := i.evalExpr(e.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := ov.(*chunk.Object)
	if !ok {
		return nil, fault(e.Position, "cannot call a method on a %s", ov.Type())
	}
	mv, found := obj.Get(e.Method)
	if !found {
		return nil, fault(e.Position, "undefined method %q", e.Method)
	}
	fn, ok := mv.(*chunk.Function)
	if !ok {
		return nil, fault(e.Position, "property %q is not callable (%s)", e.Method, mv.Type())
	}

	args, err := i.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return i.callFunction(e.Position, fn, args, obj)
}

func (i *Interp) evalFunctionCall(e *ast.FunctionCallExpr, env *Environment) (chunk.Value, error) {
	args, err := i.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}

	if e.Name == "print" {
		if len(args) != 1 {
			return nil, fault(e.Position, "print expects exactly 1 argument, got %d", len(args))
		}
		fmt.Fprintln(i.stdout, args[0].String())
		return chunk.Null{}, nil
	}

	fv, ok := env.Lookup(e.Name)
	if !ok {
		return nil, fault(e.Position, "undefined function %q", e.Name)
	}
	fn, ok := fv.(*chunk.Function)
	if !ok {
		return nil, fault(e.Position, "%q is not callable (%s)", e.Name, fv.Type())
	}
	return i.callFunction(e.Position, fn, args, nil)
}

func (i *Interp) evalArgs(argExprs []ast.Expr, env *Environment) ([]chunk.Value, error) {
	args := make([]chunk.Value, len(argExprs))
	for idx, a := range argExprs {
		v, err := i.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

// makeClosure builds a UserFunc value that closes over the defining
// environment, built eagerly at FunctionDef evaluation time per spec.md
// §4.6 ("Builds user functions eagerly").
func (i *Interp) makeClosure(fn *ast.FunctionDefExpr, name string, env *Environment) *chunk.Function {
	return &chunk.Function{
		Kind:    chunk.UserFunc,
		Name:    name,
		Params:  append([]string(nil), fn.Params...),
		Node:    fn,
		Closure: env,
	}
}

// callFunction invokes fn with args bound to its parameters in a fresh
// child of its closure environment, with receiver bound into `this` when
// this is non-nil (a method call).
func (i *Interp) callFunction(pos token.Position, fn *chunk.Function, args []chunk.Value, this *chunk.Object) (chunk.Value, error) {
	if fn.Kind == chunk.BuiltinFunc {
		return fn.Builtin(args)
	}
	closureEnv, _ := fn.Closure.(*Environment)
	if closureEnv == nil {
		closureEnv = NewEnvironment()
	}
	callEnv := closureEnv.Child()
	if this != nil {
		callEnv.Declare("this", this, false)
	} else {
		callEnv.Declare("this", chunk.Null{}, false)
	}
	for idx, p := range fn.Params {
		if idx < len(args) {
			callEnv.Declare(p, args[idx], true)
		} else {
			callEnv.Declare(p, chunk.Null{}, true)
		}
	}

	r, err := i.evalBlock(fn.Node.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if r.ctrl == ctrlReturn {
		return r.value, nil
	}
	return r.value, nil
}

// evalRangeAsObject lowers a RangeExpr appearing outside a naked iterator's
// header into a plain two-property {start, end} object, matching
// lang/compiler.compileRangeAsObject.
func (i *Interp) evalRangeAsObject(e *ast.RangeExpr, env *Environment) (chunk.Value, error) {
	start, err := i.evalExpr(e.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := i.evalExpr(e.End, env)
	if err != nil {
		return nil, err
	}
	obj := chunk.NewObject()
	obj.Set("start", start)
	obj.Set("end", end)
	return obj, nil
}
