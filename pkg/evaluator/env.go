package evaluator

import (
	"fmt"
	"sort"

	"github.com/thomasrohde/glox/pkg/token"
)

// Env is one frame of the lexical scope chain.
// Closures hold a pointer to the frame they were defined in; the interpreter
// shares frames and only Copy duplicates them.
type Env struct {
	values    map[string]Value
	enclosing *Env
}

// NewEnv creates a new environment with an optional enclosing scope.
func NewEnv(enclosing *Env) *Env {
	return &Env{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Child creates a new child scope whose enclosing frame is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Define binds name in this frame, replacing any existing binding.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Lookup finds name in this frame or any enclosing one.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if val, ok := env.values[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Get looks up a variable by token, failing with a RuntimeError if no frame
// in the chain binds it.
func (e *Env) Get(name token.Token) (Value, error) {
	if val, ok := e.Lookup(name.Lexeme); ok {
		return val, nil
	}
	return nil, undefinedVariable(name)
}

// Assign rebinds the innermost existing binding of name. It never creates
// a binding.
func (e *Env) Assign(name token.Token, val Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = val
			return nil
		}
	}
	return undefinedVariable(name)
}

// Names returns the names bound directly in this frame, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns an independent copy of the chain and of everything reachable
// from it: captured frames of functions and methods, classes and instances.
// Running a program against the copy never writes to the original frames.
// Native functions are shared.
func (e *Env) Copy() *Env {
	c := &copier{envs: make(map[*Env]*Env), vals: make(map[Value]Value)}
	return c.env(e)
}

// copier remaps frames and objects to their copies, preserving identity and
// sharing between them.
type copier struct {
	envs map[*Env]*Env
	vals map[Value]Value
}

func (c *copier) env(e *Env) *Env {
	if e == nil {
		return nil
	}
	if out, ok := c.envs[e]; ok {
		return out
	}
	out := &Env{values: make(map[string]Value, len(e.values))}
	c.envs[e] = out
	out.enclosing = c.env(e.enclosing)
	for k, v := range e.values {
		out.values[k] = c.value(v)
	}
	return out
}

func (c *copier) value(v Value) Value {
	switch v := v.(type) {
	case *Function:
		return c.function(v)
	case *Class:
		return c.class(v)
	case *Instance:
		return c.instance(v)
	}
	return v
}

func (c *copier) function(f *Function) *Function {
	if out, ok := c.vals[f]; ok {
		return out.(*Function)
	}
	out := &Function{Name: f.Name, Decl: f.Decl, IsInit: f.IsInit}
	c.vals[f] = out
	out.Closure = c.env(f.Closure)
	return out
}

func (c *copier) class(cls *Class) *Class {
	if cls == nil {
		return nil
	}
	if out, ok := c.vals[cls]; ok {
		return out.(*Class)
	}
	out := &Class{Name: cls.Name, Methods: make(map[string]*Function, len(cls.Methods))}
	c.vals[cls] = out
	out.Superclass = c.class(cls.Superclass)
	for name, m := range cls.Methods {
		out.Methods[name] = c.function(m)
	}
	return out
}

func (c *copier) instance(inst *Instance) *Instance {
	if out, ok := c.vals[inst]; ok {
		return out.(*Instance)
	}
	out := &Instance{fields: make(map[string]Value, len(inst.fields))}
	c.vals[inst] = out
	out.Class = c.class(inst.Class)
	for k, v := range inst.fields {
		out.fields[k] = c.value(v)
	}
	return out
}

func undefinedVariable(name token.Token) *RuntimeError {
	return NewRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}
