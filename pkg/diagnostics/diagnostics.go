// Package diagnostics defines Lox diagnostic types for lex/parse/validation/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Diagnostic code constants.
const (
	ELex      = "E_LEX"
	EParse    = "E_PARSE"
	EValidate = "E_VALIDATE"
	ERuntime  = "E_RUNTIME"
	EIO       = "E_IO"
	EConfig   = "E_CONFIG"
)

// Diagnostic represents a lex, parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line"`
	Hint    string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message, file string, line int) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		File:    file,
		Line:    line,
	}
}

// Reporter is the error sink injected into the lexer, parser, and evaluator.
// It is invoked once per error with the source line and a human-readable message.
type Reporter func(line int, message string)

// Collector accumulates diagnostics reported through one or more Reporters.
type Collector struct {
	File  string
	diags []Diagnostic
}

// NewCollector creates a collector that tags diagnostics with file.
func NewCollector(file string) *Collector {
	return &Collector{File: file}
}

// Reporter returns a Reporter that records diagnostics under code.
func (c *Collector) Reporter(code string) Reporter {
	return func(line int, message string) {
		c.diags = append(c.diags, MakeDiag(code, message, c.File, line))
	}
}

// Diagnostics returns everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}

var (
	errLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	locLabel  = color.New(color.FgCyan).SprintFunc()
	hintLabel = color.New(color.FgYellow).SprintFunc()
)

func kindLabel(code string) string {
	if code == ERuntime {
		return "runtime error"
	}
	return "error"
}

// FormatDiagnostic formats a single diagnostic for display.
// Color follows color.NoColor, which is off when the output is not a terminal.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	file := d.File
	if file == "" {
		file = "<input>"
	}
	loc := fmt.Sprintf("%s:%d", file, d.Line)
	out := fmt.Sprintf("%s: %s\n  --> %s", errLabel(fmt.Sprintf("%s[%s]", kindLabel(d.Code), d.Code)), d.Message, locLabel(loc))
	if d.Hint != "" {
		out += fmt.Sprintf("\n  %s %s", hintLabel("hint:"), d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
