package evaluator

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/token"
)

// Options configures an Interpreter.
type Options struct {
	Stdout io.Writer // print sink; os.Stdout when nil
	Limits Limits
	Trace  func(event TraceEvent)
	RunID  string
}

// Interpreter walks Lox statement lists. One Interpreter runs one program at
// a time and is not safe for concurrent use; independent interpreters share
// nothing.
type Interpreter struct {
	ctx     context.Context
	opts    Options
	out     io.Writer
	globals *Env
	tracker Tracker
}

// New creates an interpreter with an empty global frame.
func New(opts Options) *Interpreter {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{
		ctx:     context.Background(),
		opts:    opts,
		out:     out,
		globals: NewEnv(nil),
	}
}

// Globals returns the root frame. Natives are registered here before a run.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Tracker returns resource usage accumulated so far.
func (in *Interpreter) Tracker() Tracker {
	return in.tracker
}

// Interpret executes stmts in order against env (the global frame when env
// is nil) and returns the environment later input should run against. The
// first runtime error aborts the remaining statements and is returned as a
// *RuntimeError.
func (in *Interpreter) Interpret(ctx context.Context, stmts []ast.Stmt, env *Env) (*Env, error) {
	if env == nil {
		env = in.globals
	}
	in.begin(ctx)

	line := 0
	if len(stmts) > 0 {
		line = stmts[0].Line()
	}
	in.emit(TraceRunStart, line, map[string]string{"statements": strconv.Itoa(len(stmts))})

	for _, stmt := range stmts {
		ret, err := in.execute(stmt, env)
		if err != nil {
			in.traceError(err)
			in.emit(TraceRunEnd, stmt.Line(), map[string]string{"status": "error"})
			return env, err
		}
		if ret != nil {
			// The validator rejects this; guard for unvalidated input.
			err := NewRuntimeError(token.New(token.Return, "return", stmt.Line()), "Can't return from top-level code.")
			in.emit(TraceRunEnd, stmt.Line(), map[string]string{"status": "error"})
			return env, err
		}
	}

	in.emit(TraceRunEnd, 0, map[string]string{"status": "ok"})
	return env, nil
}

// Evaluate evaluates a single expression against env (the global frame when
// env is nil).
func (in *Interpreter) Evaluate(ctx context.Context, expr ast.Expr, env *Env) (Value, error) {
	if env == nil {
		env = in.globals
	}
	in.begin(ctx)
	v, err := in.evalExpr(expr, env)
	if err != nil {
		in.traceError(err)
	}
	return v, err
}

func (in *Interpreter) begin(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	in.ctx = ctx
	in.tracker.Depth = 0
}

func (in *Interpreter) traceError(err error) {
	if rt, ok := err.(*RuntimeError); ok {
		in.emit(TraceError, rt.Line(), map[string]string{"message": rt.Message})
	}
}

// checkInterrupt fails once the run's context is cancelled or past its deadline.
func (in *Interpreter) checkInterrupt(tok token.Token) error {
	select {
	case <-in.ctx.Done():
		return NewRuntimeError(tok, "Execution interrupted.")
	default:
		return nil
	}
}

// --- Statements ---

// execute runs one statement. A non-nil *returnSignal means a return
// statement is unwinding towards its call.
func (in *Interpreter) execute(stmt ast.Stmt, env *Env) (*returnSignal, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := in.evalExpr(s.Expr, env)
		return nil, err

	case *ast.PrintStmt:
		v, err := in.evalExpr(s.Expr, env)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintln(in.out, Stringify(v)); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return nil, nil

	case *ast.VarStmt:
		var v Value = Nil{}
		if s.Initializer != nil {
			var err error
			if v, err = in.evalExpr(s.Initializer, env); err != nil {
				return nil, err
			}
		}
		env.Define(s.Name.Lexeme, v)
		return nil, nil

	case *ast.BlockStmt:
		return in.executeBlock(s.Statements, env.Child())

	case *ast.IfStmt:
		cond, err := in.evalExpr(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return in.execute(s.Then, env)
		}
		if s.Else != nil {
			return in.execute(s.Else, env)
		}
		return nil, nil

	case *ast.WhileStmt:
		return in.executeWhile(s, env)

	case *ast.FunctionStmt:
		fn := &Function{Name: s.Name.Lexeme, Decl: s.Func, Closure: env}
		env.Define(s.Name.Lexeme, fn)
		return nil, nil

	case *ast.ReturnStmt:
		var v Value = Nil{}
		if s.Value != nil {
			var err error
			if v, err = in.evalExpr(s.Value, env); err != nil {
				return nil, err
			}
		}
		return &returnSignal{value: v}, nil

	case *ast.ClassStmt:
		return nil, in.executeClass(s, env)
	}
	return nil, fmt.Errorf("unsupported statement type: %T", stmt)
}

// executeBlock runs stmts in env, which the caller has already created.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) (*returnSignal, error) {
	for _, stmt := range stmts {
		ret, err := in.execute(stmt, env)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (in *Interpreter) executeWhile(s *ast.WhileStmt, env *Env) (*returnSignal, error) {
	for {
		if err := in.checkInterrupt(s.Keyword); err != nil {
			return nil, err
		}
		cond, err := in.evalExpr(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if !Truthy(cond) {
			return nil, nil
		}
		in.tracker.Loops++
		ret, err := in.execute(s.Body, env)
		if err != nil || ret != nil {
			return ret, err
		}
	}
}

func (in *Interpreter) executeClass(s *ast.ClassStmt, env *Env) error {
	var superclass *Class
	if s.Superclass != nil {
		v, err := in.evalExpr(s.Superclass, env)
		if err != nil {
			return err
		}
		cls, ok := v.(*Class)
		if !ok {
			return NewRuntimeError(s.Superclass.Name, "Superclass must be a class.").gotHint(v)
		}
		superclass = cls
	}

	// Declared first so methods can refer to the class by name.
	env.Define(s.Name.Lexeme, Nil{})

	methodEnv := env
	if superclass != nil {
		methodEnv = env.Child()
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &Function{
			Name:    m.Name.Lexeme,
			Decl:    m.Func,
			Closure: methodEnv,
			IsInit:  m.Name.Lexeme == "init",
		}
	}

	cls := &Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	return env.Assign(s.Name, cls)
}

// --- Expressions ---

func (in *Interpreter) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return FromLiteral(e.Value), nil

	case *ast.Grouping:
		return in.evalExpr(e.Inner, env)

	case *ast.Unary:
		return in.evalUnary(e, env)

	case *ast.Binary:
		return in.evalBinary(e, env)

	case *ast.Logical:
		left, err := in.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		if e.Op.Type == token.Or {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return in.evalExpr(e.Right, env)

	case *ast.Ternary:
		cond, err := in.evalExpr(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return in.evalExpr(e.Then, env)
		}
		return in.evalExpr(e.Else, env)

	case *ast.Assign:
		v, err := in.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(e.Name, v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Variable:
		return env.Get(e.Name)

	case *ast.This:
		return env.Get(e.Keyword)

	case *ast.Call:
		return in.evalCall(e, env)

	case *ast.Get:
		obj, err := in.evalExpr(e.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, NewRuntimeError(e.Name, "Only instances have properties.").gotHint(obj)
		}
		return inst.Get(e.Name)

	case *ast.Set:
		obj, err := in.evalExpr(e.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, NewRuntimeError(e.Name, "Only instances have fields.").gotHint(obj)
		}
		v, err := in.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name, v)
		return v, nil

	case *ast.Super:
		return in.evalSuper(e, env)

	case *ast.Function:
		return &Function{Decl: e, Closure: env}, nil
	}
	return nil, fmt.Errorf("unsupported expression type: %T", expr)
}

func (in *Interpreter) evalUnary(e *ast.Unary, env *Env) (Value, error) {
	right, err := in.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case token.Bang:
		return Bool(!Truthy(right)), nil
	case token.Minus:
		n, ok := right.(Number)
		if !ok {
			return nil, NewRuntimeError(e.Op, "Operand must be a number.")
		}
		return -n, nil
	}
	return nil, NewRuntimeError(e.Op, fmt.Sprintf("Unknown unary operator '%s'.", e.Op.Lexeme))
}

func (in *Interpreter) evalBinary(e *ast.Binary, env *Env) (Value, error) {
	left, err := in.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.Comma:
		return right, nil
	case token.EqualEqual:
		return Bool(Equal(left, right)), nil
	case token.BangEqual:
		return Bool(!Equal(left, right)), nil
	case token.Plus:
		switch l := left.(type) {
		case Number:
			if r, ok := right.(Number); ok {
				return l + r, nil
			}
		case String:
			if r, ok := right.(String); ok {
				return l + r, nil
			}
		}
		return nil, NewRuntimeError(e.Op, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, NewRuntimeError(e.Op, "Operands must be numbers.")
	}
	switch e.Op.Type {
	case token.Minus:
		return l - r, nil
	case token.Star:
		return l * r, nil
	case token.Slash:
		return l / r, nil
	case token.Greater:
		return Bool(l > r), nil
	case token.GreaterEqual:
		return Bool(l >= r), nil
	case token.Less:
		return Bool(l < r), nil
	case token.LessEqual:
		return Bool(l <= r), nil
	}
	return nil, NewRuntimeError(e.Op, fmt.Sprintf("Unknown binary operator '%s'.", e.Op.Lexeme))
}

func (in *Interpreter) evalCall(e *ast.Call, env *Env) (Value, error) {
	callee, err := in.evalExpr(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := in.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, NewRuntimeError(e.Paren, "Can only call functions and classes.").gotHint(callee)
	}
	if len(args) != fn.Arity() {
		return nil, NewRuntimeError(e.Paren, fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}
	return in.call(fn, args, e.Paren)
}

// call dispatches to fn with depth accounting. Host errors from natives are
// reported at the call site.
func (in *Interpreter) call(fn Callable, args []Value, paren token.Token) (Value, error) {
	if err := in.checkInterrupt(paren); err != nil {
		return nil, err
	}
	if limit := in.opts.Limits.maxCallDepth(); limit > 0 && in.tracker.Depth >= limit {
		return nil, NewRuntimeError(paren, "Stack overflow.")
	}

	in.tracker.Depth++
	in.tracker.Calls++
	if in.tracker.Depth > in.tracker.MaxDepth {
		in.tracker.MaxDepth = in.tracker.Depth
	}
	defer func() { in.tracker.Depth-- }()

	var data map[string]string
	if in.opts.Trace != nil {
		data = map[string]string{"callee": Stringify(fn)}
	}
	in.emit(TraceCallStart, paren.Line, data)
	v, err := fn.Call(in, args)
	in.emit(TraceCallEnd, paren.Line, data)

	if err != nil {
		if _, ok := err.(*RuntimeError); !ok {
			if _, native := fn.(*NativeFunction); native {
				return nil, NewRuntimeError(paren, err.Error())
			}
		}
		return nil, err
	}
	return v, nil
}

func (in *Interpreter) evalSuper(e *ast.Super, env *Env) (Value, error) {
	sv, err := env.Get(e.Keyword)
	if err != nil {
		return nil, err
	}
	superclass, ok := sv.(*Class)
	if !ok {
		return nil, NewRuntimeError(e.Keyword, "Superclass must be a class.")
	}
	tv, err := env.Get(token.New(token.This, "this", e.Keyword.Line))
	if err != nil {
		return nil, err
	}
	inst, ok := tv.(*Instance)
	if !ok {
		return nil, NewRuntimeError(e.Keyword, "Can't use 'super' outside of a method.")
	}

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, NewRuntimeError(e.Method, fmt.Sprintf("Undefined property '%s'.", e.Method.Lexeme))
	}
	return method.Bind(inst), nil
}
