package diagnostics_test

import (
	"bytes"
	"testing"

	"github.com/embervm/ember/internal/diagnostics"
	"github.com/embervm/ember/lang/chunk"
	"github.com/embervm/ember/lang/token"
	"github.com/embervm/ember/lang/vm"
	"github.com/stretchr/testify/require"
)

func TestLineFormatsPositionedTokenError(t *testing.T) {
	err := &token.Error{Pos: token.Position{Filename: "f.ember", Line: 3, Column: 5}, Msg: "unexpected token"}
	require.Equal(t, "Error: unexpected token (Line 3, Column 5)", diagnostics.Line(err))
}

func TestLineFormatsFirstErrorOfList(t *testing.T) {
	var list token.ErrorList
	list.Add(token.Position{Line: 1, Column: 1}, "first")
	list.Add(token.Position{Line: 2, Column: 1}, "second")
	require.Equal(t, "Error: first (Line 1, Column 1)", diagnostics.Line(list))
}

func TestLineFormatsVMRuntimeErrorWithoutPosition(t *testing.T) {
	err := &vm.RuntimeError{IP: 4, Op: chunk.DIV, Msg: "division by zero"}
	require.Equal(t, "Error: division by zero", diagnostics.Line(err))
}

func TestReportWritesTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	diagnostics.Report(&buf, &vm.RuntimeError{Msg: "boom"})
	require.Equal(t, "Error: boom\n", buf.String())
}
