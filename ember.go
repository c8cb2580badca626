// Package ember is the top-level facade named by the language spec's
// External Interfaces: Compile/Run/Exec and the chunk persistence pair,
// wired over lang/compiler, lang/vm, lang/interp and lang/chunk. A host
// embedding the language reaches the whole pipeline through this one
// package rather than importing the lang/* subpackages directly.
package ember

import (
	"io"
	"os"

	"github.com/embervm/ember/internal/diagnostics"
	"github.com/embervm/ember/lang/chunk"
	"github.com/embervm/ember/lang/compiler"
	"github.com/embervm/ember/lang/interp"
	"github.com/embervm/ember/lang/registry"
	"github.com/embervm/ember/lang/vm"
)

// ExitStatus is the process exit code a caller should use after Run or
// Exec: 0 on success, non-zero on compile or runtime error, per spec.md §6.
type ExitStatus int

const (
	ExitSuccess ExitStatus = 0
	ExitFailure ExitStatus = 1
)

// CompileOption configures Compile; it is an alias of compiler.Option so
// callers never need to import lang/compiler for the common case of
// supplying a custom Importer or module Registry.
type CompileOption = compiler.Option

// WithCompileImporter overrides how `use "path.ember"` resolves local
// source files during Compile (default os.ReadFile).
func WithCompileImporter(imp compiler.Importer) CompileOption {
	return compiler.WithImporter(imp)
}

// WithCompileRegistry overrides the set of named modules `use` accepts
// during Compile (default registry.Standard()).
func WithCompileRegistry(reg *registry.Registry) CompileOption {
	return compiler.WithRegistry(reg)
}

// Compile parses and compiles source into a Chunk the VM can Run, or
// returns a CompileError (a *token.Error, token.ErrorList, or the
// lang/registry/import failures the compiler reports) describing the
// first failure encountered.
func Compile(filename string, source []byte, opts ...CompileOption) (*chunk.Chunk, error) {
	return compiler.Compile(filename, source, opts...)
}

// RunOption configures Run; an alias of vm.Option.
type RunOption = vm.Option

// Run executes a previously compiled Chunk on the stack-based VM and
// reports the diagnostic line (per spec.md §6) to stderr on failure.
// The returned ExitStatus is the code a command-line host should exit
// with; the error is the underlying fault, for callers that want more
// than the diagnostic line.
func Run(c *chunk.Chunk, opts ...RunOption) (ExitStatus, error) {
	if err := vm.Run(c, opts...); err != nil {
		diagnostics.Report(os.Stderr, err)
		return ExitFailure, err
	}
	return ExitSuccess, nil
}

// ExecOption configures Exec; an alias of interp.Option.
type ExecOption = interp.Option

// Exec compiles source and tree-interprets the AST directly, bypassing
// the bytecode pipeline entirely, per spec.md §6's "exec" entry point.
func Exec(filename string, source []byte, opts ...ExecOption) (ExitStatus, error) {
	if err := interp.Exec(filename, source, opts...); err != nil {
		diagnostics.Report(os.Stderr, err)
		return ExitFailure, err
	}
	return ExitSuccess, nil
}

// WriteChunk serializes c to w in the format of spec.md §4.7.
func WriteChunk(c *chunk.Chunk, w io.Writer) error {
	return chunk.WriteChunk(c, w)
}

// ReadChunk deserializes a Chunk previously written by WriteChunk. A
// function value (a *chunk.Function constant, such as a method in an object
// literal) reloaded this way has no body (see chunk.ReadChunk) and faults
// with a vm.RuntimeError the first time the VM tries to call it. Named
// functions keep working: their start-IP is stored as a Number constant.
func ReadChunk(r io.Reader) (*chunk.Chunk, error) {
	return chunk.ReadChunk(r)
}
