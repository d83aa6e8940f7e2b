package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/glox/pkg/config"
	"github.com/thomasrohde/glox/pkg/runtime"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	s := streams{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	err := newApp(s).Run(append([]string{"glox"}, args...))
	return result{code: exitCode(err), stdout: stdout.String(), stderr: stderr.String()}
}

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))
	return file
}

func TestRunScript(t *testing.T) {
	file := writeScript(t, "hello.lox", `
fun greet(name) { return "hello " + name; }
print greet("world");
`)
	res := runCLI(t, "", "run", file)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "hello world\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestBareFileArgumentRuns(t *testing.T) {
	file := writeScript(t, "bare.lox", "print 6 * 7;")
	res := runCLI(t, "", file)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "42\n", res.stdout)
}

func TestRunExitStatuses(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   int
		stdout string
		stderr string
	}{
		{"syntax", "print 1;\nprint (;", exitDataErr, "", "E_PARSE"},
		{"validate", "print this;", exitDataErr, "", "Can't use 'this' outside of a class."},
		{"runtime", "print \"ok\";\nprint 1 + nil;", exitSoftware, "ok\n", "Operands must be two numbers or two strings."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeScript(t, tt.name+".lox", tt.src)
			res := runCLI(t, "", "run", file)
			assert.Equal(t, tt.code, res.code)
			assert.Equal(t, tt.stdout, res.stdout)
			assert.Contains(t, res.stderr, tt.stderr)
		})
	}
}

func TestRunJSONDiagnostics(t *testing.T) {
	file := writeScript(t, "rt.lox", "\n-nil;")
	res := runCLI(t, "", "run", "--json", file)
	assert.Equal(t, exitSoftware, res.code)
	assert.Contains(t, res.stderr, `"code":"E_RUNTIME"`)
	assert.Contains(t, res.stderr, `"line":2`)
}

func TestRunMissingFile(t *testing.T) {
	res := runCLI(t, "", "run", filepath.Join(t.TempDir(), "absent.lox"))
	assert.Equal(t, exitIOErr, res.code)
	assert.Contains(t, res.stderr, "E_IO")
}

func TestRunWithoutFiles(t *testing.T) {
	res := runCLI(t, "", "run")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "usage: glox run")
}

func TestRunStdin(t *testing.T) {
	res := runCLI(t, "print \"piped\";", "run", "-")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "piped\n", res.stdout)
}

func TestRunManyFilesKeepsOrder(t *testing.T) {
	var files []string
	for _, word := range []string{"one", "two", "three", "four", "five"} {
		files = append(files, writeScript(t, word+".lox", `
var n = 0;
for (var i = 0; i < 1000; i = i + 1) n = n + 1;
print "`+word+`";`))
	}
	res := runCLI(t, "", append([]string{"run", "--jobs", "3"}, files...)...)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "one\ntwo\nthree\nfour\nfive\n", res.stdout)
}

func TestRunManyFilesFirstFailureWins(t *testing.T) {
	good := writeScript(t, "good.lox", `print "good";`)
	bad := writeScript(t, "bad.lox", `print "bad"; nil();`)
	broken := writeScript(t, "broken.lox", `print ;`)

	res := runCLI(t, "", "run", good, bad, broken)
	assert.Equal(t, exitSoftware, res.code)
	assert.Equal(t, "good\nbad\n", res.stdout)
	assert.Contains(t, res.stderr, "Can only call functions and classes.")
	assert.Contains(t, res.stderr, "got nil")
	assert.Contains(t, res.stderr, "Expect expression.")
}

func TestRunTimeout(t *testing.T) {
	file := writeScript(t, "spin.lox", "while (true) {}")
	res := runCLI(t, "", "--timeout", "50ms", "run", file)
	assert.Equal(t, exitSoftware, res.code)
	assert.Contains(t, res.stderr, "Execution interrupted.")
}

func TestRunMaxDepthFlag(t *testing.T) {
	file := writeScript(t, "deep.lox", "fun f() { f(); }\nf();")
	res := runCLI(t, "", "--maxdepth", "8", "run", file)
	assert.Equal(t, exitSoftware, res.code)
	assert.Contains(t, res.stderr, "Stack overflow.")
}

func TestCheck(t *testing.T) {
	ok := writeScript(t, "ok.lox", "var a = 1;")
	res := runCLI(t, "", "check", ok)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "No errors found.\n", res.stdout)

	res = runCLI(t, "", "check", "--json", ok)
	assert.Equal(t, "[]\n", res.stdout)

	bad := writeScript(t, "bad.lox", "fun f(a, a) {}")
	res = runCLI(t, "", "check", bad)
	assert.Equal(t, exitDataErr, res.code)
	assert.Contains(t, res.stderr, "Duplicate parameter 'a'.")
}

func TestTokens(t *testing.T) {
	file := writeScript(t, "toks.lox", `var s = "hi";`)
	res := runCLI(t, "", "tokens", file)
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "VAR")
	assert.Contains(t, res.stdout, `"hi"`)
	assert.Contains(t, res.stdout, "EOF")

	bad := writeScript(t, "bad.lox", `"open`)
	res = runCLI(t, "", "tokens", bad)
	assert.Equal(t, exitDataErr, res.code)
	assert.Contains(t, res.stderr, "Unterminated string.")
}

func TestAST(t *testing.T) {
	file := writeScript(t, "tree.lox", "var a = 1 + 2;")
	res := runCLI(t, "", "ast", file)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "(var a (+ 1 2))\n", res.stdout)

	res = runCLI(t, "", "ast", "--raw", file)
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "VarStmt")
}

func TestDumpConfig(t *testing.T) {
	cfgFile := writeScript(t, "glox.toml", "Prompt = \"lox> \"\n")
	res := runCLI(t, "", "--config", cfgFile, "--maxdepth", "99", "dumpconfig")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, `Prompt = "lox> "`)
	assert.Contains(t, res.stdout, "MaxCallDepth = 99")
}

func TestBadConfig(t *testing.T) {
	res := runCLI(t, "", "--color", "sometimes", "dumpconfig")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "E_CONFIG")
}

// scripted feeds canned lines to the REPL.
type scripted struct {
	lines   []string
	prompts []string
	history []string
}

func (s *scripted) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", liner.ErrPromptAborted
	}
	return line, nil
}

func (s *scripted) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func TestReadChunkContinues(t *testing.T) {
	in := &scripted{lines: []string{"fun f() {", "  return 1;", "}"}}
	src, ok := readChunk(in, "> ", "... ")
	require.True(t, ok)
	assert.Equal(t, "fun f() {\n  return 1;\n}", src)
	assert.Equal(t, []string{"> ", "... ", "... "}, in.prompts)
}

func TestReadChunkStopsOnRealError(t *testing.T) {
	in := &scripted{lines: []string{"print );", "never read"}}
	src, ok := readChunk(in, "> ", "... ")
	require.True(t, ok)
	assert.Equal(t, "print );", src)
}

func TestReadChunkAbortAndEOF(t *testing.T) {
	in := &scripted{lines: []string{"var a = (", "^C"}}
	src, ok := readChunk(in, "> ", "... ")
	assert.True(t, ok)
	assert.Empty(t, src)

	src, ok = readChunk(in, "> ", "... ")
	assert.False(t, ok)
	assert.Empty(t, src)
}

func TestREPLSession(t *testing.T) {
	var stdout, stderr bytes.Buffer
	s := streams{stdout: &stdout, stderr: &stderr}
	in := &scripted{lines: []string{
		"var a = 10;",
		"a + 1;",
		"print undefined;",
		"class C {",
		"  m() { return a; }",
		"}",
		"C().m();",
	}}

	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	session := runtime.New(runtime.WithStdout(&stdout)).NewSession()
	repl(in, session, config.Defaults, logger, s)

	assert.Equal(t, "11\n10\n\n", stdout.String())
	assert.Contains(t, stderr.String(), "Undefined variable 'undefined'.")
	assert.Len(t, in.history, 5)
	assert.Equal(t, "class C {   m() { return a; } }", in.history[3])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, exitSoftware, exitCode(&statusError{exitSoftware}))
	assert.Equal(t, exitUsage, exitCode(errors.New("flag provided but not defined")))
}
