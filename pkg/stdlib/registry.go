// Package stdlib provides the registry of native functions installed into
// the Lox global scope.
package stdlib

import (
	"sort"

	"github.com/thomasrohde/glox/pkg/evaluator"
)

// Fn represents a native function.
type Fn struct {
	Name    string
	Arity   int
	Execute evaluator.NativeFn
}

// Registry holds registered native functions.
type Registry struct {
	fns map[string]*Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a native function, replacing any with the same name.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a native function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered native functions.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install defines every registered function in env, normally the global
// frame, before execution begins.
func (r *Registry) Install(env *evaluator.Env) {
	for _, name := range r.Names() {
		fn := r.fns[name]
		env.Define(fn.Name, evaluator.NewNative(fn.Name, fn.Arity, fn.Execute))
	}
}
