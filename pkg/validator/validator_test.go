package validator_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/parser"
	"github.com/thomasrohde/glox/pkg/validator"
)

// helper parses source and validates, returning diagnostics from validation only.
// It fatals on parse errors so test cases focus on validator behavior.
func mustParseAndValidate(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	stmts, parseErrs := parser.ParseSource(source, "test.lox")
	if len(parseErrs) > 0 {
		t.Fatalf("unexpected parse error: %s", parseErrs[0].Message)
	}
	return validator.Validate(stmts, "test.lox")
}

// assertNoDiags asserts zero diagnostics were produced.
func assertNoDiags(t *testing.T, diags []diagnostics.Diagnostic) {
	t.Helper()
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d:\n  %s", len(diags), joinMessages(diags))
	}
}

// assertSingleDiag asserts exactly one diagnostic with msg at line.
func assertSingleDiag(t *testing.T, diags []diagnostics.Diagnostic, msg string, line int) {
	t.Helper()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d:\n  %s", len(diags), joinMessages(diags))
	}
	d := diags[0]
	if d.Code != diagnostics.EValidate {
		t.Errorf("expected code %s, got %s", diagnostics.EValidate, d.Code)
	}
	if d.Message != msg {
		t.Errorf("expected message %q, got %q", msg, d.Message)
	}
	if d.Line != line {
		t.Errorf("expected line %d, got %d", line, d.Line)
	}
	if d.File != "test.lox" {
		t.Errorf("expected file test.lox, got %q", d.File)
	}
}

func joinMessages(diags []diagnostics.Diagnostic) string {
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.Code+": "+d.Message)
	}
	return strings.Join(msgs, "\n  ")
}

func TestValidProgram(t *testing.T) {
	src := `
var a = 1;
fun f(x, y) { return x + y; }
class A {
  init(n) { this.n = n; return; }
  get() { return fun () { return this.n; }; }
}
class B < A {
  get() { return super.get()(); }
}
print B(1).get();
`
	assertNoDiags(t, mustParseAndValidate(t, src))
}

func TestTopLevelReturn(t *testing.T) {
	diags := mustParseAndValidate(t, "print 1;\nreturn 2;")
	assertSingleDiag(t, diags, "Can't return from top-level code.", 2)
}

func TestReturnInsideBlockAtTopLevel(t *testing.T) {
	diags := mustParseAndValidate(t, "{ if (true) return; }")
	assertSingleDiag(t, diags, "Can't return from top-level code.", 1)
}

func TestReturnInsideFunctionLiteral(t *testing.T) {
	assertNoDiags(t, mustParseAndValidate(t, "var f = fun () { return 1; };"))
}

func TestInitializerMayReturnValue(t *testing.T) {
	// the constructor result is always the instance, so this is not an error
	assertNoDiags(t, mustParseAndValidate(t, "class A { init() { return 42; } }"))
}

func TestThisOutsideClass(t *testing.T) {
	diags := mustParseAndValidate(t, "print this;")
	assertSingleDiag(t, diags, "Can't use 'this' outside of a class.", 1)

	diags = mustParseAndValidate(t, "fun f() {\n  return this;\n}")
	assertSingleDiag(t, diags, "Can't use 'this' outside of a class.", 2)
}

func TestThisAfterClassBody(t *testing.T) {
	diags := mustParseAndValidate(t, "class A {}\nprint this;")
	assertSingleDiag(t, diags, "Can't use 'this' outside of a class.", 2)
}

func TestSuperOutsideClass(t *testing.T) {
	diags := mustParseAndValidate(t, "super.foo();")
	assertSingleDiag(t, diags, "Can't use 'super' outside of a class.", 1)
}

func TestSuperWithoutSuperclass(t *testing.T) {
	diags := mustParseAndValidate(t, "class A {\n  f() { super.f(); }\n}")
	assertSingleDiag(t, diags, "Can't use 'super' in a class with no superclass.", 2)
}

func TestNestedClassRestoresKind(t *testing.T) {
	src := `class A < B {
  f() {
    class C { g() { return 1; } }
    return super.f();
  }
}`
	assertNoDiags(t, mustParseAndValidate(t, src))
}

func TestClassInheritsFromItself(t *testing.T) {
	diags := mustParseAndValidate(t, "class Oops < Oops {}")
	assertSingleDiag(t, diags, "A class can't inherit from itself.", 1)
}

func TestDuplicateParameter(t *testing.T) {
	diags := mustParseAndValidate(t, "fun f(a, b, a) {}")
	assertSingleDiag(t, diags, "Duplicate parameter 'a'.", 1)

	diags = mustParseAndValidate(t, "class A { m(x, x) {} }")
	assertSingleDiag(t, diags, "Duplicate parameter 'x'.", 1)
}

func TestMultipleViolations(t *testing.T) {
	diags := mustParseAndValidate(t, "return;\nprint this;\nfun f(a, a) { return super.x; }")
	if len(diags) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d:\n  %s", len(diags), joinMessages(diags))
	}
}

func TestValidateEmpty(t *testing.T) {
	assertNoDiags(t, validator.Validate(nil, ""))
}
