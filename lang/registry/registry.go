// Package registry implements the named-module ("package") validity
// predicate used by the compiler when it sees an `import`/`use` path that
// does not end in ".ember": such a path names a host-provided module rather
// than a local source file, and the compiler emits no code for it beyond
// checking that the name is registered.
package registry

import "golang.org/x/exp/slices"

// Registry is an ordered, duplicate-free list of known named-module names.
type Registry struct {
	names []string
}

// Standard is the set of named modules every host embedding this package is
// expected to provide: a small standard library analogous to the teacher's
// built-in global table, covering string/array helpers and math.
func Standard() *Registry {
	r := &Registry{names: []string{"math", "strings", "arrays", "time"}}
	slices.Sort(r.names)
	return r
}

// New returns an empty Registry; callers add names with Register.
func New() *Registry {
	return &Registry{}
}

// Register adds name to the registry if not already present.
func (r *Registry) Register(name string) {
	if slices.Contains(r.names, name) {
		return
	}
	r.names = append(r.names, name)
	slices.Sort(r.names)
}

// Has reports whether name is a known named module.
func (r *Registry) Has(name string) bool {
	return slices.Contains(r.names, name)
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}
