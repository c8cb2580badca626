// Package interp implements the tree-walking interpreter: a direct
// evaluator over lang/ast nodes backed by a singly-linked Environment chain,
// the alternative execution path to lang/vm/lang/compiler used by `exec`
// (spec.md §4.6). It shares lang/chunk's RuntimeValue family so host code
// and builtins don't need to convert between two value representations.
package interp

import "github.com/embervm/ember/lang/chunk"

// Environment is one scope frame: an ordered set of (name, value) bindings
// with a parent link. Lookup walks the parent chain; assignment updates the
// nearest existing binding rather than shadowing it, matching the flat
// "one declaration, rebind in place" assignment semantics used by the
// compiled path's STORE_VAR.
type Environment struct {
	vars    map[string]chunk.Value
	mutable map[string]bool
	parent  *Environment
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]chunk.Value), mutable: make(map[string]bool)}
}

// Child creates a new scope whose parent is e, used when entering a
// function call (and, for CALL_METHOD's equivalent, with `this` pre-bound).
func (e *Environment) Child() *Environment {
	return &Environment{vars: make(map[string]chunk.Value), mutable: make(map[string]bool), parent: e}
}

// Declare binds name in this environment's own scope (not a parent's),
// recording whether it may later be reassigned. A redeclaration in the same
// scope overwrites the previous binding without error (the compiled path's
// symtab.Declare, by contrast, reports a redeclared name as an error).
func (e *Environment) Declare(name string, v chunk.Value, mutable bool) {
	e.vars[name] = v
	e.mutable[name] = mutable
}

// Lookup walks the parent chain for name, returning its value and true, or
// Null{} and false if unbound anywhere in the chain.
func (e *Environment) Lookup(name string) (chunk.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return chunk.Null{}, false
}

// Assign updates the nearest existing binding of name to v, reporting
// whether name was found mutable and bound. An attempt to assign to a known
// immutable binding is reported via the bool return so the caller can
// surface a RuntimeError naming the offending variable.
func (e *Environment) Assign(name string, v chunk.Value) (ok, wasMutable bool) {
	for env := e; env != nil; env = env.parent {
		if _, found := env.vars[name]; found {
			if !env.mutable[name] {
				return true, false
			}
			env.vars[name] = v
			return true, true
		}
	}
	return false, false
}
