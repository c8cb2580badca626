package token

import (
	"fmt"
	"sort"
	"strings"
)

// Position is a human-readable source location: a filename plus the 1-based
// line and column encoded by a Pos.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Error is a single positioned diagnostic. Every phase of the pipeline
// (lexer, parser, resolution, compiler) reports into an ErrorList of these,
// mirroring the shape of the standard library's go/scanner.Error.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string {
	if e.Pos.Filename == "" && e.Pos.Line == 0 {
		return e.Msg
	}
	return e.Pos.String() + ": " + e.Msg
}

// ErrorList is a list of *Errors. Phases accumulate diagnostics here; the
// first one reported is the one surfaced to the caller, per the "abort after
// first error" policy.
type ErrorList []*Error

// Add appends an Error to the list.
func (el *ErrorList) Add(pos Position, msg string) {
	*el = append(*el, &Error{Pos: pos, Msg: msg})
}

// Sort sorts the list by position, then by message.
func (el ErrorList) Sort() {
	sort.Slice(el, func(i, j int) bool {
		pi, pj := el[i].Pos, el[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		return el[i].Msg < el[j].Msg
	})
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	lines := make([]string, len(el))
	for i, e := range el {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", lines[0], len(lines)-1) + "\n" + strings.Join(lines[1:], "\n")
}

// Err returns nil if the list is empty, or the list itself otherwise; use
// First for the single first error. This matches the convention used throughout
// the pipeline so a (possibly empty) ErrorList can always be returned as an
// `error`.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// First returns the first reported error, or nil if the list is empty. The
// top-level Compile/Run/Exec entry points use this to format the single
// "Error ... (Line L, Column C)" diagnostic required on stderr.
func (el ErrorList) First() *Error {
	if len(el) == 0 {
		return nil
	}
	return el[0]
}
