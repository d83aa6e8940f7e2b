package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/thomasrohde/glox/pkg/config"
	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/evaluator"
	"github.com/thomasrohde/glox/pkg/lexer"
	"github.com/thomasrohde/glox/pkg/parser"
	"github.com/thomasrohde/glox/pkg/runtime"
	"github.com/thomasrohde/glox/pkg/token"
)

// stdinName is the file argument that reads the program from standard input.
const stdinName = "-"

func readSource(file string, stdin io.Reader) (string, string, error) {
	if file == stdinName {
		data, err := io.ReadAll(stdin)
		return string(data), "<stdin>", err
	}
	data, err := os.ReadFile(file)
	return string(data), file, err
}

func printDiags(w io.Writer, diags []diagnostics.Diagnostic, jsonOut bool) {
	fmt.Fprintln(w, diagnostics.FormatDiagnostics(diags, !jsonOut))
}

// report prints err and converts it to an exit status. It returns nil for a
// nil err.
func report(w io.Writer, err error, file string, jsonOut bool) error {
	if err == nil {
		return nil
	}
	var (
		derr *runtime.DiagnosticError
		rerr *evaluator.RuntimeError
	)
	switch {
	case errors.As(err, &derr):
		printDiags(w, derr.Diagnostics, jsonOut)
		return &statusError{exitDataErr}
	case errors.As(err, &rerr):
		printDiags(w, []diagnostics.Diagnostic{rerr.Diagnostic(file)}, jsonOut)
		return &statusError{exitSoftware}
	default:
		printDiags(w, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EIO, err.Error(), file, 0)}, jsonOut)
		return &statusError{exitIOErr}
	}
}

// readAll reads every file argument, stopping at the first I/O failure.
func readAll(ctx *cli.Context, s streams, usage string) ([]string, []string, error) {
	args := ctx.Args()
	if len(args) == 0 {
		fmt.Fprintln(s.stderr, "usage: glox "+usage)
		return nil, nil, &statusError{exitUsage}
	}
	sources := make([]string, len(args))
	names := make([]string, len(args))
	for i, arg := range args {
		src, name, err := readSource(arg, s.stdin)
		if err != nil {
			return nil, nil, report(s.stderr, err, name, ctx.Bool(jsonFlag.Name))
		}
		sources[i], names[i] = src, name
	}
	return sources, names, nil
}

// runWithTimeout executes one program, bounded by the configured timeout.
func runWithTimeout(ctx context.Context, rt *runtime.Runtime, cfg config.Config, out io.Writer, source, file string) error {
	if d := cfg.Timeout.Std(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return rt.RunTo(ctx, out, source, file)
}

// runCommand runs each script in its own global scope. Several scripts run
// concurrently; their output is buffered and written in argument order.
func runCommand(ctx *cli.Context, s streams) error {
	cfg, logger, err := setup(ctx, s)
	if err != nil {
		return err
	}
	sources, names, err := readAll(ctx, s, "run <file> [file...]")
	if err != nil {
		return err
	}
	jsonOut := ctx.Bool(jsonFlag.Name)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt := newRuntime(ctx, cfg, logger, s.stdout)
	if len(sources) == 1 {
		err := runWithTimeout(runCtx, rt, cfg, s.stdout, sources[0], names[0])
		return report(s.stderr, err, names[0], jsonOut)
	}

	jobs := ctx.Int(jobsFlag.Name)
	if jobs <= 0 {
		jobs = jobsFlag.Value
	}
	outs := make([]bytes.Buffer, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i := range sources {
		i := i
		g.Go(func() error {
			errs[i] = runWithTimeout(runCtx, rt, cfg, &outs[i], sources[i], names[i])
			return nil
		})
	}
	g.Wait()

	var first error
	for i := range sources {
		if _, err := s.stdout.Write(outs[i].Bytes()); err != nil {
			return report(s.stderr, err, names[i], jsonOut)
		}
		if err := report(s.stderr, errs[i], names[i], jsonOut); err != nil && first == nil {
			first = err
		}
	}
	logger.Info("Ran scripts", "count", len(sources), "jobs", jobs)
	return first
}

// checkCommand parses and validates every script without running any.
func checkCommand(ctx *cli.Context, s streams) error {
	cfg, logger, err := setup(ctx, s)
	if err != nil {
		return err
	}
	sources, names, err := readAll(ctx, s, "check <file> [file...]")
	if err != nil {
		return err
	}
	jsonOut := ctx.Bool(jsonFlag.Name)
	rt := newRuntime(ctx, cfg, logger, s.stdout)

	var all []diagnostics.Diagnostic
	for i := range sources {
		all = append(all, rt.Check(sources[i], names[i])...)
	}
	if len(all) > 0 {
		printDiags(s.stderr, all, jsonOut)
		return &statusError{exitDataErr}
	}
	if jsonOut {
		fmt.Fprintln(s.stdout, "[]")
	} else {
		fmt.Fprintln(s.stdout, "No errors found.")
	}
	return nil
}

// tokensCommand prints the token stream as a table.
func tokensCommand(ctx *cli.Context, s streams) error {
	if _, _, err := setup(ctx, s); err != nil {
		return err
	}
	sources, names, err := readAll(ctx, s, "tokens <file>")
	if err != nil {
		return err
	}

	toks, diags := lexer.Tokenize(sources[0], names[0])
	table := tablewriter.NewWriter(s.stdout)
	table.SetHeader([]string{"Line", "Type", "Lexeme", "Literal"})
	for _, tok := range toks {
		table.Append([]string{strconv.Itoa(tok.Line), tok.Type.String(), tok.Lexeme, literalCell(tok.Literal)})
	}
	table.Render()

	if len(diags) > 0 {
		printDiags(s.stderr, diags, ctx.Bool(jsonFlag.Name))
		return &statusError{exitDataErr}
	}
	return nil
}

func literalCell(lit token.Literal) string {
	if lit.Kind == token.LitString {
		return strconv.Quote(lit.Str)
	}
	return lit.String()
}

var rawConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// astCommand prints the syntax tree of a script.
func astCommand(ctx *cli.Context, s streams) error {
	cfg, logger, err := setup(ctx, s)
	if err != nil {
		return err
	}
	sources, names, err := readAll(ctx, s, "ast <file>")
	if err != nil {
		return err
	}
	jsonOut := ctx.Bool(jsonFlag.Name)

	if ctx.Bool(rawFlag.Name) {
		stmts, diags := parser.ParseSource(sources[0], names[0])
		if len(diags) > 0 {
			printDiags(s.stderr, diags, jsonOut)
			return &statusError{exitDataErr}
		}
		rawConfig.Fdump(s.stdout, stmts)
		return nil
	}

	out, err := newRuntime(ctx, cfg, logger, s.stdout).Print(sources[0], names[0])
	if err != nil {
		return report(s.stderr, err, names[0], jsonOut)
	}
	_, err = io.WriteString(s.stdout, out)
	return err
}
