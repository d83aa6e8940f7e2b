// Command glox is the Lox interpreter CLI: it runs scripts, checks them, dumps
// their tokens or syntax tree, and hosts an interactive prompt.
package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/urfave/cli.v1"
)

// Exit statuses, following sysexits.h.
const (
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
)

// statusError carries a process exit status out of a command action. The
// message, if any, has already been written.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "Log level (crit, error, warn, info, debug)",
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Usage: `Colored diagnostics: "auto", "always" or "never"`,
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Abort each run after this long (0 = no limit)",
	}
	maxDepthFlag = cli.IntFlag{
		Name:  "maxdepth",
		Usage: "Maximum nested call depth",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "Log interpreter trace events at debug level",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "Report diagnostics as JSON",
	}
	rawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "Dump the Go syntax tree structures",
	}
	jobsFlag = cli.IntFlag{
		Name:  "jobs",
		Usage: "Number of scripts to run at once",
		Value: 4,
	}
	noEchoFlag = cli.BoolFlag{
		Name:  "noecho",
		Usage: "Do not print the value of expression statements",
	}
)

// streams are the process standard streams, swapped out in tests.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(s streams) *cli.App {
	app := cli.NewApp()
	app.Name = "glox"
	app.Usage = "the Lox tree-walking interpreter"
	app.Version = "0.1.0"
	app.Writer = s.stdout
	app.ErrWriter = s.stderr
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		colorFlag,
		timeoutFlag,
		maxDepthFlag,
		traceFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Run one or more Lox scripts",
			ArgsUsage: "<file> [file...]",
			Flags:     []cli.Flag{jsonFlag, jobsFlag},
			Action:    func(ctx *cli.Context) error { return runCommand(ctx, s) },
		},
		{
			Name:   "repl",
			Usage:  "Start an interactive prompt",
			Flags:  []cli.Flag{noEchoFlag},
			Action: func(ctx *cli.Context) error { return replCommand(ctx, s) },
		},
		{
			Name:      "check",
			Usage:     "Parse and validate scripts without running them",
			ArgsUsage: "<file> [file...]",
			Flags:     []cli.Flag{jsonFlag},
			Action:    func(ctx *cli.Context) error { return checkCommand(ctx, s) },
		},
		{
			Name:      "tokens",
			Usage:     "Print the token stream of a script",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{jsonFlag},
			Action:    func(ctx *cli.Context) error { return tokensCommand(ctx, s) },
		},
		{
			Name:      "ast",
			Usage:     "Print the syntax tree of a script",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{jsonFlag, rawFlag},
			Action:    func(ctx *cli.Context) error { return astCommand(ctx, s) },
		},
		{
			Name:        "dumpconfig",
			Usage:       "Show configuration values",
			ArgsUsage:   "[file]",
			Description: `The dumpconfig command shows the effective configuration as TOML.`,
			Action:      func(ctx *cli.Context) error { return dumpConfig(ctx, s) },
		},
	}
	app.Action = func(ctx *cli.Context) error {
		if ctx.NArg() > 0 {
			// glox script.lox behaves like glox run script.lox
			return runCommand(ctx, s)
		}
		return replCommand(ctx, s)
	}
	return app
}

// exitCode maps an action error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if se, ok := err.(*statusError); ok {
		return se.code
	}
	return exitUsage
}

func main() {
	s := streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := newApp(s).Run(os.Args); err != nil {
		if _, ok := err.(*statusError); !ok {
			fmt.Fprintln(s.stderr, err)
		}
		os.Exit(exitCode(err))
	}
}
