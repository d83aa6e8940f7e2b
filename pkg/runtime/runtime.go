// Package runtime provides the top-level Lox runtime orchestrator: it wires
// the lexer, parser, validator, and evaluator together.
package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/evaluator"
	"github.com/thomasrohde/glox/pkg/parser"
	"github.com/thomasrohde/glox/pkg/printer"
	"github.com/thomasrohde/glox/pkg/stdlib"
	"github.com/thomasrohde/glox/pkg/validator"
)

// Runtime wires together all Lox components for program execution.
type Runtime struct {
	natives *stdlib.Registry
	stdout  io.Writer
	log     log15.Logger
	cache   *lru.Cache // nil when parse caching is off
	limits  evaluator.Limits
	runID   string
	trace   func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdout sets the sink for print output.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithLogger sets the logger.
func WithLogger(l log15.Logger) Option {
	return func(rt *Runtime) {
		rt.log = l
	}
}

// WithNatives replaces the default native function registry.
func WithNatives(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.natives = r
	}
}

// WithParseCache keeps up to size parsed programs, keyed by file name and
// source. A size of zero or less disables the cache.
func WithParseCache(size int) Option {
	return func(rt *Runtime) {
		rt.cache = nil
		if size > 0 {
			// lru.New only fails for a non-positive size.
			rt.cache, _ = lru.New(size)
		}
	}
}

// WithMaxCallDepth bounds nested Lox calls.
func WithMaxCallDepth(n int) Option {
	return func(rt *Runtime) {
		rt.limits.MaxCallDepth = n
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default the default natives are registered, output goes to os.Stdout,
// logging is discarded, and parse caching is off.
func New(opts ...Option) *Runtime {
	natives := stdlib.NewRegistry()
	stdlib.RegisterDefaults(natives)

	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	rt := &Runtime{
		natives: natives,
		stdout:  os.Stdout,
		log:     logger,
		runID:   "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

type cacheKey struct {
	file   string
	source string
}

type parsed struct {
	stmts []ast.Stmt
	diags []diagnostics.Diagnostic
}

// parse tokenizes and parses source, consulting the cache first. Cached
// statement lists are shared; AST nodes are never mutated after parsing.
func (rt *Runtime) parse(source, filename string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	key := cacheKey{file: filename, source: source}
	if rt.cache != nil {
		if v, ok := rt.cache.Get(key); ok {
			rt.log.Debug("Parse cache hit", "file", filename)
			p := v.(parsed)
			return p.stmts, p.diags
		}
	}

	stmts, diags := parser.ParseSource(source, filename)
	if len(diags) == 0 {
		diags = validator.Validate(stmts, filename)
	}
	if rt.cache != nil {
		rt.log.Debug("Parse cache miss", "file", filename, "bytes", len(source))
		rt.cache.Add(key, parsed{stmts: stmts, diags: diags})
	}
	return stmts, diags
}

// Check parses and validates a Lox program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	_, diags := rt.parse(source, filename)
	return diags
}

// Print parses a Lox program and renders its AST.
func (rt *Runtime) Print(source, filename string) (string, error) {
	stmts, diags := parser.ParseSource(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return printer.Print(stmts), nil
}

// newInterpreter builds an interpreter with the registered natives installed.
func (rt *Runtime) newInterpreter(out io.Writer) *evaluator.Interpreter {
	in := evaluator.New(evaluator.Options{
		Stdout: out,
		Limits: rt.limits,
		Trace:  rt.trace,
		RunID:  rt.runID,
	})
	rt.natives.Install(in.Globals())
	return in
}

// Run parses, validates, and executes a Lox program in a fresh global scope.
// Syntax and validation failures return a *DiagnosticError and nothing is
// executed; a runtime failure returns a *evaluator.RuntimeError.
func (rt *Runtime) Run(ctx context.Context, source, filename string) error {
	return rt.RunTo(ctx, rt.stdout, source, filename)
}

// RunTo is Run with an explicit output sink.
func (rt *Runtime) RunTo(ctx context.Context, out io.Writer, source, filename string) error {
	stmts, diags := rt.parse(source, filename)
	if len(diags) > 0 {
		rt.log.Debug("Program rejected", "file", filename, "diagnostics", len(diags))
		return &DiagnosticError{Diagnostics: diags}
	}

	start := time.Now()
	in := rt.newInterpreter(out)
	_, err := in.Interpret(ctx, stmts, nil)

	tr := in.Tracker()
	rt.log.Debug("Run finished", "file", filename, "elapsed", time.Since(start),
		"calls", tr.Calls, "maxdepth", tr.MaxDepth, "loops", tr.Loops)
	if err != nil {
		rt.log.Debug("Runtime error", "file", filename, "err", err)
	}
	return err
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
