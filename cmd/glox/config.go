package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/thomasrohde/glox/pkg/config"
	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/evaluator"
	"github.com/thomasrohde/glox/pkg/runtime"
)

// loadConfig starts from the defaults, overlays the config file, then applies
// explicitly set flags.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Defaults

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.LogLevel = ctx.GlobalString(verbosityFlag.Name)
	}
	if ctx.GlobalIsSet(colorFlag.Name) {
		cfg.Color = ctx.GlobalString(colorFlag.Name)
	}
	if ctx.GlobalIsSet(timeoutFlag.Name) {
		cfg.Timeout = config.Duration(ctx.GlobalDuration(timeoutFlag.Name))
	}
	if ctx.GlobalIsSet(maxDepthFlag.Name) {
		cfg.MaxCallDepth = ctx.GlobalInt(maxDepthFlag.Name)
	}
	if ctx.GlobalBool(traceFlag.Name) {
		cfg.LogLevel = "debug"
	}
	if ctx.IsSet(noEchoFlag.Name) {
		cfg.Echo = !ctx.Bool(noEchoFlag.Name)
	}
	return cfg, cfg.Validate()
}

// setup loads the configuration and installs logging and color for a command.
// Configuration errors are reported as E_CONFIG and map to the usage status.
func setup(ctx *cli.Context, s streams) (config.Config, log15.Logger, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		d := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), ctx.GlobalString(configFileFlag.Name), 0)
		fmt.Fprintln(s.stderr, diagnostics.FormatDiagnostic(d, true))
		return cfg, nil, &statusError{exitUsage}
	}

	color.NoColor = !useColor(cfg.Color, s.stderr)

	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(cfg.Level(), log15.StreamHandler(logWriter(s.stderr), log15.TerminalFormat())))
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		logger.Debug("Loaded config file", "file", file)
	}
	return cfg, logger, nil
}

// useColor resolves the Color setting against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// logWriter wraps real terminal streams so ANSI sequences work on Windows.
func logWriter(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok {
		return colorable.NewColorable(f)
	}
	return colorable.NewNonColorable(w)
}

// newRuntime builds a Runtime from the effective configuration.
func newRuntime(ctx *cli.Context, cfg config.Config, logger log15.Logger, out io.Writer) *runtime.Runtime {
	opts := []runtime.Option{
		runtime.WithStdout(out),
		runtime.WithLogger(logger),
		runtime.WithParseCache(cfg.ParseCacheSize),
		runtime.WithMaxCallDepth(cfg.MaxCallDepth),
	}
	if ctx.GlobalBool(traceFlag.Name) {
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			kv := []interface{}{"event", ev.Event, "line", ev.Line}
			for k, v := range ev.Data {
				kv = append(kv, k, v)
			}
			logger.Debug("Trace", kv...)
		}))
	}
	return runtime.New(opts...)
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context, s streams) error {
	cfg, _, err := setup(ctx, s)
	if err != nil {
		return err
	}
	out, err := config.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := s.stdout
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintln(s.stderr, diagnostics.FormatDiagnostic(
				diagnostics.MakeDiag(diagnostics.EIO, err.Error(), ctx.Args().Get(0), 0), true))
			return &statusError{exitIOErr}
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
