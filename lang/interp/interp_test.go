package interp_test

import (
	"bytes"
	"testing"

	"github.com/embervm/ember/lang/interp"
	"github.com/stretchr/testify/require"
)

func runSrc(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	err := interp.Exec("test.ember", []byte(src), interp.WithStdout(&out))
	require.NoError(t, err)
	return out.String()
}

func TestExecArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "7\n", runSrc(t, "print(1 + 2 * 3)\n"))
}

func TestExecVariableReassignment(t *testing.T) {
	require.Equal(t, "3\n", runSrc(t, "var n: 1\nn = n + 2\nprint(n)\n"))
}

func TestExecImmutableAssignmentIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	err := interp.Exec("test.ember", []byte("let n: 1\nn = 2\n"), interp.WithStdout(&out))
	require.Error(t, err)
}

func TestExecFunctionCallAndReturn(t *testing.T) {
	require.Equal(t, "42\n", runSrc(t, "add: fn(a, b) { a + b }\nprint(add(10, 32))\n"))
}

func TestExecRecursiveFunctionCall(t *testing.T) {
	src := "fact: fn(n) {\n" +
		"  if n <= 1 {\n" +
		"    1\n" +
		"  } else {\n" +
		"    n * fact(n - 1)\n" +
		"  }\n" +
		"}\n" +
		"print(fact(5))\n"
	require.Equal(t, "120\n", runSrc(t, src))
}

func TestExecIfElseAsExpressionValue(t *testing.T) {
	src := "max: fn(a, b) {\n  if a > b {\n    a\n  } else {\n    b\n  }\n}\nprint(max(3, 9))\n"
	require.Equal(t, "9\n", runSrc(t, src))
}

func TestExecWhileLoop(t *testing.T) {
	src := "var i: 0\nvar sum: 0\nwhile i < 5 {\n  sum = sum + i\n  i = i + 1\n}\nprint(sum)\n"
	require.Equal(t, "10\n", runSrc(t, src))
}

func TestExecForLoopWithBreakAndContinue(t *testing.T) {
	src := "var total: 0\n" +
		"for i: 0: i < 10: i = i + 1 {\n" +
		"  if i == 5 {\n" +
		"    break\n" +
		"  }\n" +
		"  if i == 2 {\n" +
		"    continue\n" +
		"  }\n" +
		"  total = total + i\n" +
		"}\n" +
		"print(total)\n"
	require.Equal(t, "8\n", runSrc(t, src))
}

func TestExecNakedIteratorOverRange(t *testing.T) {
	require.Equal(t, "10\n", runSrc(t, "var sum: 0\ni: 1..4\n  sum = sum + i\nprint(sum)\n"))
}

func TestExecNakedIteratorOverArrayYieldsValues(t *testing.T) {
	src := "var sum: 0\nk: [10, 20, 30]\n  sum = sum + k\nprint(sum)\n"
	require.Equal(t, "60\n", runSrc(t, src))
}

func TestExecNakedIteratorOverObjectYieldsKeys(t *testing.T) {
	src := "o: { a: 1, b: 2 }\nresult: \"\"\nk: o\n  result = result + k\nprint(result)\n"
	require.Equal(t, "ab\n", runSrc(t, src))
}

func TestExecObjectLiteralAndPropertyAccess(t *testing.T) {
	require.Equal(t, "3\n", runSrc(t, "obj: { n: 1, m: 2 }\nprint(obj.n + obj.m)\n"))
}

func TestExecMixinAndMethodCallBindsThis(t *testing.T) {
	src := "Greet: { hi: fn() { print(\"hi \" + this.name) } }\n" +
		"p: { :[Greet], name: \"A\" }\n" +
		"p.hi()\n"
	require.Equal(t, "hi A\n", runSrc(t, src))
}

func TestExecDeepPropertyAssignmentWalksChainDirectly(t *testing.T) {
	require.Equal(t, "x\n", runSrc(t, "g: { p: {} }\ng.p.q = \"x\"\nprint(g.p.q)\n"))
}

func TestExecArrayLiteralIndexingAndAssignment(t *testing.T) {
	require.Equal(t, "99\n", runSrc(t, "a: [1, 2, 3]\na[1] = 99\nprint(a[1])\n"))
}

func TestExecClosureCapturesDefiningEnvironment(t *testing.T) {
	src := "var n: 10\n" +
		"addN: fn(x) { x + n }\n" +
		"n = 20\n" +
		"print(addN(5))\n"
	require.Equal(t, "25\n", runSrc(t, src))
}

func TestExecDivisionByZeroIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	err := interp.Exec("test.ember", []byte("print(1 / 0)\n"), interp.WithStdout(&out))
	require.Error(t, err)
}

func TestExecMissingPropertyRecoversToNull(t *testing.T) {
	var out, errOut bytes.Buffer
	err := interp.Exec("test.ember", []byte("obj: { n: 1 }\nprint(obj.missing)\n"),
		interp.WithStdout(&out), interp.WithStderr(&errOut))
	require.NoError(t, err)
	require.Equal(t, "null\n", out.String())
	require.Contains(t, errOut.String(), "missing")
}

func TestExecNamedModuleImportValidatesRegistry(t *testing.T) {
	err := interp.Exec("test.ember", []byte("use \"math\"\n"))
	require.NoError(t, err)

	err = interp.Exec("test.ember", []byte("use \"not_a_module\"\n"))
	require.Error(t, err)
}

type memImporter map[string][]byte

func (m memImporter) ReadFile(path string) ([]byte, error) { return m[path], nil }

func TestExecLocalFileImportInlinesDeclarations(t *testing.T) {
	imp := memImporter{"util.ember": []byte("helper: fn(x) { x + 1 }\n")}
	require.Equal(t, "42\n", runSrc2(t, imp, "use \"util.ember\"\nprint(helper(41))\n"))
}

func runSrc2(t *testing.T, imp interp.Importer, src string) string {
	t.Helper()
	var out bytes.Buffer
	err := interp.Exec("test.ember", []byte(src), interp.WithStdout(&out), interp.WithImporter(imp))
	require.NoError(t, err)
	return out.String()
}
