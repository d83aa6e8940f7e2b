package evaluator

import (
	"fmt"

	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/token"
)

// RuntimeError represents a runtime error during Lox execution. It is fatal
// to the current top-level run.
type RuntimeError struct {
	Token   token.Token
	Message string
	Hint    string
}

// NewRuntimeError creates a RuntimeError at tok.
func NewRuntimeError(tok token.Token, message string) *RuntimeError {
	return &RuntimeError{Token: tok, Message: message}
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// gotHint notes the kind of the value that caused the error.
func (e *RuntimeError) gotHint(v Value) *RuntimeError {
	e.Hint = fmt.Sprintf("got %s", TypeName(v))
	return e
}

// Line returns the source line of the offending token.
func (e *RuntimeError) Line() int {
	return e.Token.Line
}

// Diagnostic converts the error into an E_RUNTIME diagnostic for file.
func (e *RuntimeError) Diagnostic(file string) diagnostics.Diagnostic {
	d := diagnostics.MakeDiag(diagnostics.ERuntime, e.Message, file, e.Token.Line)
	d.Hint = e.Hint
	return d
}

// returnSignal carries a function's return value up to the call that owns
// it. It is a normal control transfer and deliberately does not implement
// error.
type returnSignal struct {
	value Value
}
