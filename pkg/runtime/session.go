package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/evaluator"
)

// SessionFile is the file name attached to REPL diagnostics.
const SessionFile = "<repl>"

// Session evaluates successive inputs against one persistent global scope,
// so definitions from earlier inputs stay visible to later ones.
type Session struct {
	rt   *Runtime
	in   *evaluator.Interpreter
	env  *evaluator.Env
	out  io.Writer
	echo bool
}

// NewSession starts a session with a fresh global scope. Bare expression
// statements are echoed by default.
func (rt *Runtime) NewSession() *Session {
	in := rt.newInterpreter(rt.stdout)
	rt.log.Debug("Session started", "natives", len(rt.natives.All()))
	return &Session{
		rt:   rt,
		in:   in,
		env:  in.Globals(),
		out:  rt.stdout,
		echo: true,
	}
}

// SetEcho controls whether bare expression statements print their value.
func (s *Session) SetEcho(on bool) {
	s.echo = on
}

// Env returns the session's current environment.
func (s *Session) Env() *evaluator.Env {
	return s.env
}

// Eval runs one chunk of input. Syntax or validation errors return a
// *DiagnosticError and run nothing; a runtime error stops the chunk but keeps
// every definition made before it.
func (s *Session) Eval(ctx context.Context, source string) error {
	stmts, diags := s.rt.parse(source, SessionFile)
	if len(diags) > 0 {
		return &DiagnosticError{Diagnostics: diags}
	}

	for _, stmt := range stmts {
		if es, ok := stmt.(*ast.ExpressionStmt); ok && s.echo {
			v, err := s.in.Evaluate(ctx, es.Expr, s.env)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(s.out, evaluator.Stringify(v)); err != nil {
				return err
			}
			continue
		}

		env, err := s.in.Interpret(ctx, []ast.Stmt{stmt}, s.env)
		if err != nil {
			return err
		}
		s.env = env
	}
	return nil
}
