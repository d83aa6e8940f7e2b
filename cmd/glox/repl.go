package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/thomasrohde/glox/pkg/config"
	"github.com/thomasrohde/glox/pkg/parser"
	"github.com/thomasrohde/glox/pkg/runtime"
)

// prompter reads one line of input. liner.State satisfies it.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// replCommand runs the interactive prompt until Ctrl+D.
func replCommand(ctx *cli.Context, s streams) error {
	cfg, logger, err := setup(ctx, s)
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	hist := cfg.HistoryPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}

	session := newRuntime(ctx, cfg, logger, s.stdout).NewSession()
	session.SetEcho(cfg.Echo)
	repl(ln, session, cfg, logger, s)

	if hist != "" {
		if f, err := os.Create(hist); err == nil {
			ln.WriteHistory(f)
			f.Close()
		} else {
			logger.Warn("Failed to write history", "file", hist, "err", err)
		}
	}
	return nil
}

// repl is the read-eval-print loop. Errors are printed and the loop goes on.
func repl(ln prompter, session *runtime.Session, cfg config.Config, logger log15.Logger, s streams) {
	for {
		src, ok := readChunk(ln, cfg.Prompt, cfg.ContinuationPrompt)
		if !ok {
			fmt.Fprintln(s.stdout)
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if h, ok := ln.(interface{ AppendHistory(string) }); ok {
			h.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		}

		report(s.stderr, evalChunk(session, cfg, src), runtime.SessionFile, false)
		logger.Debug("Evaluated input", "bytes", len(src))
	}
}

// evalChunk evaluates src, cancelled by Ctrl+C or the configured timeout.
func evalChunk(session *runtime.Session, cfg config.Config, src string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if d := cfg.Timeout.Std(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return session.Eval(ctx, src)
}

// readChunk reads lines until they form a complete program or fail to parse
// for a reason other than running out of input. Ctrl+C discards the chunk;
// Ctrl+D (EOF) reports ok=false.
func readChunk(ln prompter, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// liner.ErrPromptAborted
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		_, diags := parser.ParseSource(src, runtime.SessionFile)
		if len(diags) > 0 && parser.IsIncomplete(diags) {
			continue
		}
		return src, true
	}
}
