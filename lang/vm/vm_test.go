package vm_test

import (
	"bytes"
	"testing"

	"github.com/embervm/ember/lang/compiler"
	"github.com/embervm/ember/lang/vm"
	"github.com/stretchr/testify/require"
)

func runSrc(t *testing.T, src string) string {
	t.Helper()
	c, err := compiler.Compile("test.ember", []byte(src))
	require.NoError(t, err)

	var out bytes.Buffer
	err = vm.Run(c, vm.WithStdout(&out))
	require.NoError(t, err)
	return out.String()
}

func TestRunArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "7\n", runSrc(t, "print(1 + 2 * 3)\n"))
}

func TestRunVariableReassignment(t *testing.T) {
	require.Equal(t, "3\n", runSrc(t, "var n: 1\nn = n + 2\nprint(n)\n"))
}

func TestRunStringConcatenation(t *testing.T) {
	require.Equal(t, "hi there\n", runSrc(t, "print(\"hi\" + \" there\")\n"))
}

func TestRunFunctionCallAndReturn(t *testing.T) {
	require.Equal(t, "42\n", runSrc(t, "add: fn(a, b) { a + b }\nprint(add(10, 32))\n"))
}

func TestRunRecursiveFunctionCall(t *testing.T) {
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

func TestRunIfElseAsExpressionValue(t *testing.T) {
	src := "max: fn(a, b) {\n  if a > b {\n    a\n  } else {\n    b\n  }\n}\nprint(max(3, 9))\n"
	require.Equal(t, "9\n", runSrc(t, src))
}

func TestRunWhileLoop(t *testing.T) {
	src := "var i: 0\nvar sum: 0\nwhile i < 5 {\n  sum = sum + i\n  i = i + 1\n}\nprint(sum)\n"
	require.Equal(t, "10\n", runSrc(t, src))
}

func TestRunForLoopWithBreakAndContinue(t *testing.T) {
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
		"print(total)\n" // 0+1+3+4 = 8
	require.Equal(t, "8\n", runSrc(t, src))
}

func TestRunNakedIteratorOverRange(t *testing.T) {
	require.Equal(t, "10\n", runSrc(t, "var sum: 0\ni: 1..4\n  sum = sum + i\nprint(sum)\n"))
}

func TestRunNakedIteratorOverArrayLiteralYieldsValues(t *testing.T) {
	// Per the documented array/object asymmetry, an array literal source is
	// iterated by value, while an object is iterated by key.
	src := "var sum: 0\nk: [10, 20, 30]\n  sum = sum + k\nprint(sum)\n" // 10+20+30
	require.Equal(t, "60\n", runSrc(t, src))
}

func TestRunNakedIteratorOverObjectYieldsKeys(t *testing.T) {
	src := "o: { a: 1, b: 2 }\nresult: \"\"\nk: o\n  result = result + k\nprint(result)\n"
	require.Equal(t, "ab\n", runSrc(t, src))
}

func TestRunObjectLiteralAndPropertyAccess(t *testing.T) {
	require.Equal(t, "3\n", runSrc(t, "obj: { n: 1, m: 2 }\nprint(obj.n + obj.m)\n"))
}

func TestRunMixinAndMethodCall(t *testing.T) {
	src := "Greet: { hi: fn() { print(\"hi \" + this.name) } }\n" +
		"p: { :[Greet], name: \"A\" }\n" +
		"p.hi()\n"
	require.Equal(t, "hi A\n", runSrc(t, src))
}

func TestRunDeepPropertyAssignment(t *testing.T) {
	require.Equal(t, "x\n", runSrc(t, "g: { p: {} }\ng.p.q = \"x\"\nprint(g.p.q)\n"))
}

func TestRunArrayLiteralIndexingAndAssignment(t *testing.T) {
	require.Equal(t, "99\n", runSrc(t, "a: [1, 2, 3]\na[1] = 99\nprint(a[1])\n"))
}

func TestRunDivisionByZeroIsRuntimeError(t *testing.T) {
	c, err := compiler.Compile("test.ember", []byte("print(1 / 0)\n"))
	require.NoError(t, err)
	err = vm.Run(c, vm.WithStdout(&bytes.Buffer{}))
	require.Error(t, err)
}

func TestRunMissingPropertyRecoversToNull(t *testing.T) {
	var out, errOut bytes.Buffer
	c, err := compiler.Compile("test.ember", []byte("obj: { n: 1 }\nprint(obj.missing)\n"))
	require.NoError(t, err)
	err = vm.Run(c, vm.WithStdout(&out), vm.WithStderr(&errOut))
	require.NoError(t, err)
	require.Equal(t, "null\n", out.String())
	require.Contains(t, errOut.String(), "missing")
}
