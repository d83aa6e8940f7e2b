package evaluator

import (
	"fmt"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/token"
)

// Callable is implemented by every value that can appear in call position:
// native functions, user functions, and classes.
type Callable interface {
	Value
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
}

// NativeFn is the host implementation behind a NativeFunction.
type NativeFn func(args []Value) (Value, error)

// NativeFunction wraps a host-provided function.
type NativeFunction struct {
	Name   string
	Params int
	Fn     NativeFn
}

func (*NativeFunction) loxValue() {}

// NewNative creates a native function with a fixed parameter count.
func NewNative(name string, params int, fn NativeFn) *NativeFunction {
	return &NativeFunction{Name: name, Params: params, Fn: fn}
}

func (n *NativeFunction) Arity() int { return n.Params }

func (n *NativeFunction) Call(_ *Interpreter, args []Value) (Value, error) {
	v, err := n.Fn(args)
	if v == nil {
		v = Nil{}
	}
	return v, err
}

// Function is a user-defined function or method closed over the frame it
// was defined in.
type Function struct {
	Name    string // empty for anonymous function literals
	Decl    *ast.Function
	Closure *Env
	IsInit  bool
}

func (*Function) loxValue() {}

func (f *Function) Arity() int { return len(f.Decl.Params) }

// Bind returns a copy of f whose closure additionally defines "this".
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnv(f.Closure)
	env.Define("this", inst)
	return &Function{Name: f.Name, Decl: f.Decl, Closure: env, IsInit: f.IsInit}
}

func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnv(f.Closure)
	for i, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	ret, err := in.executeBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if f.IsInit {
		this, _ := f.Closure.Lookup("this")
		return this, nil
	}
	if ret != nil {
		return ret.value, nil
	}
	return Nil{}, nil
}

// Class is a Lox class. Calling it constructs an Instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (*Class) loxValue() {}

// FindMethod looks name up in this class, then up the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Arity is the arity of init, wherever it is inherited from, or zero.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	inst := NewInstance(c)
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(inst).Call(in, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// Instance is an object created by calling a Class.
type Instance struct {
	Class  *Class
	fields map[string]Value
}

func (*Instance) loxValue() {}

// NewInstance creates an instance of c with no fields.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, fields: make(map[string]Value)}
}

// Get reads a property: own fields first, then methods bound to inst.
func (inst *Instance) Get(name token.Token) (Value, error) {
	if v, ok := inst.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m, ok := inst.Class.FindMethod(name.Lexeme); ok {
		return m.Bind(inst), nil
	}
	return nil, NewRuntimeError(name, fmt.Sprintf("Undefined property '%s'.", name.Lexeme))
}

// Set writes a field on the instance itself.
func (inst *Instance) Set(name token.Token, v Value) {
	inst.fields[name.Lexeme] = v
}
