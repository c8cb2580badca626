package ember_test

import (
	"bytes"
	"testing"

	ember "github.com/embervm/ember"
	"github.com/embervm/ember/lang/chunk"
	"github.com/embervm/ember/lang/interp"
	"github.com/embervm/ember/lang/vm"
	"github.com/stretchr/testify/require"
)

func TestRunSucceedsOnValidProgram(t *testing.T) {
	c, err := ember.Compile("test.ember", []byte("print(7)\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	status, err := ember.Run(c, vm.WithStdout(&out))
	require.NoError(t, err)
	require.Equal(t, ember.ExitSuccess, status)
	require.Equal(t, "7\n", out.String())
}

func TestRunReportsDiagnosticOnRuntimeError(t *testing.T) {
	c, err := ember.Compile("test.ember", []byte("print(1 / 0)\n"))
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	status, err := ember.Run(c, vm.WithStdout(&out), vm.WithStderr(&errOut))
	require.Error(t, err)
	require.Equal(t, ember.ExitFailure, status)
}

func TestCompileReportsFirstSyntaxError(t *testing.T) {
	_, err := ember.Compile("test.ember", []byte("var : 1\n"))
	require.Error(t, err)
}

func TestExecTreeInterpretsDirectly(t *testing.T) {
	var out bytes.Buffer
	status, err := ember.Exec("test.ember", []byte("add: fn(a, b) { a + b }\nprint(add(2, 3))\n"),
		interp.WithStdout(&out))
	require.NoError(t, err)
	require.Equal(t, ember.ExitSuccess, status)
	require.Equal(t, "5\n", out.String())
}

func TestExecReportsDiagnosticOnRuntimeError(t *testing.T) {
	var errOut bytes.Buffer
	status, err := ember.Exec("test.ember", []byte("print(1 / 0)\n"), interp.WithStderr(&errOut))
	require.Error(t, err)
	require.Equal(t, ember.ExitFailure, status)
}

func TestChunkWriteReadRoundTrip(t *testing.T) {
	c, err := ember.Compile("test.ember", []byte("print(1 + 2)\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ember.WriteChunk(c, &buf))

	reloaded, err := ember.ReadChunk(&buf)
	require.NoError(t, err)

	var out bytes.Buffer
	status, err := ember.Run(reloaded, vm.WithStdout(&out))
	require.NoError(t, err)
	require.Equal(t, ember.ExitSuccess, status)
	require.Equal(t, "3\n", out.String())
}

func TestChunkReloadedUserFunctionHasNoBody(t *testing.T) {
	c, err := ember.Compile("test.ember", []byte("o: { add: fn(a, b) { a + b } }\nprint(o.add(2, 3))\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ember.WriteChunk(c, &buf))

	reloaded, err := ember.ReadChunk(&buf)
	require.NoError(t, err)

	var fn *chunk.Function
	for _, v := range reloaded.Constants {
		if f, ok := v.(*chunk.Function); ok {
			fn = f
		}
	}
	require.NotNil(t, fn)
	require.Equal(t, 0, fn.StartIP)
}
