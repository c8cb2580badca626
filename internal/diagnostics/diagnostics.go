// Package diagnostics formats the single diagnostic line the top-level
// Compile/Run/Exec entry points write to stderr on failure, per spec.md §6:
// "Error ... (Line L, Column C)".
package diagnostics

import (
	"fmt"
	"io"

	"github.com/embervm/ember/lang/interp"
	"github.com/embervm/ember/lang/token"
	"github.com/embervm/ember/lang/vm"
)

// Line renders err as the single stderr diagnostic line. A positioned error
// (lexer/parser/compile-time token.Error, or an interp.RuntimeError, which
// always carries a Position since every ast node does) is rendered with its
// line/column; a vm.RuntimeError, which carries only a bytecode offset (the
// chunk format has no line-table mapping it back to source, see the
// lang/vm entry in DESIGN.md), is rendered without one.
func Line(err error) string {
	switch e := err.(type) {
	case *token.Error:
		return format(e.Pos, e.Msg)
	case token.ErrorList:
		if first := e.First(); first != nil {
			return format(first.Pos, first.Msg)
		}
		return fmt.Sprintf("Error: %s", e.Error())
	case *interp.RuntimeError:
		return format(e.Pos, e.Msg)
	case *vm.RuntimeError:
		return fmt.Sprintf("Error: %s", e.Msg)
	default:
		return fmt.Sprintf("Error: %s", err.Error())
	}
}

func format(pos token.Position, msg string) string {
	return fmt.Sprintf("Error: %s (Line %d, Column %d)", msg, pos.Line, pos.Column)
}

// Report writes the one-line diagnostic for err to w, followed by a newline.
func Report(w io.Writer, err error) {
	fmt.Fprintln(w, Line(err))
}
