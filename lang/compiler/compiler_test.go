package compiler

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/embervm/ember/internal/diagnostics/filetest"
	"github.com/embervm/ember/lang/chunk"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *chunk.Chunk {
	t.Helper()
	c, err := Compile("test.ember", []byte(src))
	require.NoError(t, err)
	return c
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	c := mustCompile(t, "print(1 + 2 * 3)\n")
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "mul")
	require.Contains(t, dis, "add")
	require.Contains(t, dis, "print")
}

func TestCompileVarDeclAndAssignment(t *testing.T) {
	c := mustCompile(t, "var n: 1\nn = n + 1\nprint(n)\n")
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "store_var")
	require.Contains(t, dis, "load_var")
}

func TestCompileImmutableAssignmentIsError(t *testing.T) {
	_, err := Compile("test.ember", []byte("let n: 1\nn = 2\n"))
	require.Error(t, err)
}

func TestCompileFunctionCallReturnsValue(t *testing.T) {
	c := mustCompile(t, "add: fn(a, b) { a + b }\nprint(add(10, 32))\n")
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "call")
	require.Contains(t, dis, "return")

	// The function's own body, including its implicit RETURN, must be
	// skipped by a JUMP on the straight-line path, never fallen into.
	require.Contains(t, dis, "jump")
}

func TestCompileIfElseAsExpressionResult(t *testing.T) {
	c := mustCompile(t, "max: fn(a, b) {\n  if a > b {\n    a\n  } else {\n    b\n  }\n}\nprint(max(1, 2))\n")
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "jump_if_false")
}

func TestCompileNakedIteratorOverRange(t *testing.T) {
	c := mustCompile(t, "sum: 0\ni: 1..4\n  sum = sum + i\nprint(sum)\n")
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "lte")
	require.Contains(t, dis, "loop")
}

func TestCompileObjectLiteralWithMixin(t *testing.T) {
	src := "Greet: { hi: fn() { print(\"hi \" + this.name) } }\n" +
		"p: { :[Greet], name: \"A\" }\np.hi()\n"
	c := mustCompile(t, src)
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "copy_properties")
	require.Contains(t, dis, "set_property")
	require.Contains(t, dis, "call_method")
}

func TestCompileDeepPropertyAssignment(t *testing.T) {
	c := mustCompile(t, "g: { p: {} }\ng.p.q = \"x\"\nprint(g.p.q)\n")
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "set_nested_property")

	found := false
	for _, v := range c.Constants {
		if s, ok := v.(chunk.String); ok && string(s) == "p.q" {
			found = true
		}
	}
	require.True(t, found, "expected a \"p.q\" constant from flattening g.p.q")
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	_, err := Compile("test.ember", []byte("break\n"))
	require.Error(t, err)
}

func TestCompileForLoopWithBreakAndContinue(t *testing.T) {
	src := "for i: 0: i < 10: i = i + 1 {\n  if i == 5 {\n    break\n  }\n  continue\n}\n"
	c := mustCompile(t, src)
	dis := chunk.Disassemble(c, "test")
	// Two forward jumps (break, continue) plus the loop condition's exit
	// jump, and the backward loop edge.
	require.True(t, strings.Count(dis, "jump ") >= 2)
	require.Contains(t, dis, "loop")
}

func TestCompileUndefinedFunctionIsError(t *testing.T) {
	_, err := Compile("test.ember", []byte("print(missing())\n"))
	require.Error(t, err)
}

func TestCompileNamedModuleImportValidatesRegistry(t *testing.T) {
	_, err := Compile("test.ember", []byte("use \"math\"\n"))
	require.NoError(t, err)

	_, err = Compile("test.ember", []byte("use \"not_a_module\"\n"))
	require.Error(t, err)
}

type memImporter map[string][]byte

func (m memImporter) ReadFile(path string) ([]byte, error) { return m[path], nil }

func TestCompileLocalFileImportInlinesDeclarations(t *testing.T) {
	imp := memImporter{"util.ember": []byte("helper: fn(x) { x + 1 }\n")}
	c, err := Compile("test.ember", []byte("use \"util.ember\"\nprint(helper(41))\n"), WithImporter(imp))
	require.NoError(t, err)
	dis := chunk.Disassemble(c, "test")
	require.Contains(t, dis, "call")
}

var updateDisasmGoldens = flag.Bool("test.update-disasm-tests", false, "update lang/compiler/testdata/*.want golden files")

// TestCompileDisassemblyGoldens compiles every fixture in testdata/ and
// diffs its disassembly listing against the matching .want golden file,
// rather than spot-checking individual opcodes the way the tests above do:
// a regression in operand width, constant-pool ordering or offset
// arithmetic shows up as a full-listing diff here even when no single
// opcode name changes.
func TestCompileDisassemblyGoldens(t *testing.T) {
	dir := "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".ember") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			c, err := Compile(fi.Name(), src)
			require.NoError(t, err)

			name := strings.TrimSuffix(fi.Name(), filepath.Ext(fi.Name()))
			dis := chunk.Disassemble(c, name)
			filetest.DiffOutput(t, fi, dis, dir, updateDisasmGoldens)
		})
	}
}
