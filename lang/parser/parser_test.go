package parser

import (
	"testing"

	"github.com/embervm/ember/lang/ast"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	chunk, err := ParseFile("test.ember", []byte(src))
	require.NoError(t, err)
	return chunk
}

func TestVarDecl(t *testing.T) {
	chunk := mustParse(t, "var a: 2\n")
	require.Len(t, chunk.Block.Stmts, 1)
	decl := chunk.Block.Stmts[0].(*ast.VarDeclStmt)
	require.Equal(t, "a", decl.Name)
	require.True(t, decl.Mutable)
}

func TestBareDeclAndPropertyAssignment(t *testing.T) {
	chunk := mustParse(t, "obj: { name: \"hi\", n: 1 }\nobj.n = obj.n + 41\nprint(obj.n)\n")
	require.Len(t, chunk.Block.Stmts, 3)

	decl := chunk.Block.Stmts[0].(*ast.VarDeclStmt)
	obj := decl.Value.(*ast.ObjectLiteralExpr)
	require.Len(t, obj.Properties, 2)

	assign := chunk.Block.Stmts[1].(*ast.PropertyAssignmentStmt)
	require.Equal(t, "n", assign.Property)

	exprStmt := chunk.Block.Stmts[2].(*ast.ExprStmt)
	call := exprStmt.X.(*ast.FunctionCallExpr)
	require.Equal(t, "print", call.Name)
}

func TestNakedIteratorOverRange(t *testing.T) {
	src := "sum: 0\ni: 1..4\n  sum = sum + i\nprint(sum)\n"
	chunk := mustParse(t, src)
	require.Len(t, chunk.Block.Stmts, 3)

	iter := chunk.Block.Stmts[1].(*ast.NakedIteratorStmt)
	require.Equal(t, "i", iter.Name)
	rng := iter.Source.(*ast.RangeExpr)
	require.IsType(t, &ast.LiteralExpr{}, rng.Start)
	require.Len(t, iter.Body.Stmts, 1)
}

func TestFunctionDefAndCall(t *testing.T) {
	chunk := mustParse(t, "add: fn(a, b) { a + b }\nprint(add(10, 32))\n")
	def := chunk.Block.Stmts[0].(*ast.FunctionDefStmt)
	require.Equal(t, "add", def.Name)
	require.Equal(t, []string{"a", "b"}, def.Fn.Params)
	require.Len(t, def.Fn.Body.Stmts, 1)
}

func TestMixinObjectAndMethodCall(t *testing.T) {
	src := "Greet: { hi: fn() { print(\"hi \" + this.name) } }\np: { :[Greet], name: \"A\" }\np.hi()\n"
	chunk := mustParse(t, src)
	require.Len(t, chunk.Block.Stmts, 3)

	pDecl := chunk.Block.Stmts[1].(*ast.VarDeclStmt)
	obj := pDecl.Value.(*ast.ObjectLiteralExpr)
	require.Equal(t, []string{"Greet"}, obj.Mixins)

	exprStmt := chunk.Block.Stmts[2].(*ast.ExprStmt)
	call := exprStmt.X.(*ast.MethodCallExpr)
	require.Equal(t, "hi", call.Method)
}

func TestDeepPropertyAssignment(t *testing.T) {
	chunk := mustParse(t, "g: { p: {} }\ng.p.q = \"x\"\nprint(g.p.q)\n")
	assign := chunk.Block.Stmts[1].(*ast.PropertyAssignmentStmt)
	require.Equal(t, "q", assign.Property)
	nested := assign.Object.(*ast.PropertyAccessExpr)
	require.Equal(t, "p", nested.Property)
}

func TestIfElse(t *testing.T) {
	chunk := mustParse(t, "if a == 1 {\n  print(1)\n} else {\n  print(2)\n}\n")
	ifStmt := chunk.Block.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifStmt.Else)
}

func TestWhileLoop(t *testing.T) {
	chunk := mustParse(t, "while a < 10 {\n  a = a + 1\n}\n")
	w := chunk.Block.Stmts[0].(*ast.WhileStmt)
	require.NotNil(t, w.Body)
}

func TestImport(t *testing.T) {
	chunk := mustParse(t, "use \"util.ember\"\n")
	imp := chunk.Block.Stmts[0].(*ast.ImportStmt)
	require.Equal(t, "util.ember", imp.Path)
}

func TestParseErrorAbortsOnFirst(t *testing.T) {
	_, err := ParseFile("test.ember", []byte("var : 1\n"))
	require.Error(t, err)
}
