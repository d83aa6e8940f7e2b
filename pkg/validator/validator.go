// Package validator implements static checks over a parsed Lox program.
//
// The checks need no scope resolution: they only track whether the walk is
// inside a function and inside a class, which is enough to reject programs
// whose errors would otherwise only surface (or silently misbehave) at run time.
package validator

import (
	"fmt"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/token"
)

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

type validator struct {
	file  string
	diags []diagnostics.Diagnostic
	fn    functionKind
	class classKind
}

// Validate walks stmts and returns one E_VALIDATE diagnostic per violation.
func Validate(stmts []ast.Stmt, file string) []diagnostics.Diagnostic {
	v := &validator{file: file}
	v.validateStmts(stmts)
	return v.diags
}

func (v *validator) addDiag(tok token.Token, msg string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(diagnostics.EValidate, msg, v.file, tok.Line))
}

func (v *validator) validateStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		v.validateStmt(s)
	}
}

func (v *validator) validateStmt(s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.ExpressionStmt:
		v.validateExpr(stmt.Expr)
	case *ast.PrintStmt:
		v.validateExpr(stmt.Expr)
	case *ast.VarStmt:
		if stmt.Initializer != nil {
			v.validateExpr(stmt.Initializer)
		}
	case *ast.BlockStmt:
		v.validateStmts(stmt.Statements)
	case *ast.IfStmt:
		v.validateExpr(stmt.Cond)
		v.validateStmt(stmt.Then)
		if stmt.Else != nil {
			v.validateStmt(stmt.Else)
		}
	case *ast.WhileStmt:
		v.validateExpr(stmt.Cond)
		v.validateStmt(stmt.Body)
	case *ast.FunctionStmt:
		v.validateFunction(stmt.Func, fnFunction)
	case *ast.ReturnStmt:
		if v.fn == fnNone {
			v.addDiag(stmt.Keyword, "Can't return from top-level code.")
		}
		if stmt.Value != nil {
			v.validateExpr(stmt.Value)
		}
	case *ast.ClassStmt:
		v.validateClass(stmt)
	}
}

func (v *validator) validateClass(stmt *ast.ClassStmt) {
	enclosing := v.class
	v.class = classPlain
	defer func() { v.class = enclosing }()

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			v.addDiag(stmt.Superclass.Name, "A class can't inherit from itself.")
		}
		v.class = classSub
	}

	for _, m := range stmt.Methods {
		v.validateFunction(m.Func, fnMethod)
	}
}

func (v *validator) validateFunction(fn *ast.Function, kind functionKind) {
	enclosing := v.fn
	v.fn = kind
	defer func() { v.fn = enclosing }()

	seen := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		if seen[p.Lexeme] {
			v.addDiag(p, fmt.Sprintf("Duplicate parameter '%s'.", p.Lexeme))
		}
		seen[p.Lexeme] = true
	}
	v.validateStmts(fn.Body)
}

func (v *validator) validateExpr(e ast.Expr) {
	switch expr := e.(type) {
	case *ast.Literal, *ast.Variable:
	case *ast.Grouping:
		v.validateExpr(expr.Inner)
	case *ast.Unary:
		v.validateExpr(expr.Right)
	case *ast.Binary:
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
	case *ast.Logical:
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
	case *ast.Ternary:
		v.validateExpr(expr.Cond)
		v.validateExpr(expr.Then)
		v.validateExpr(expr.Else)
	case *ast.Assign:
		v.validateExpr(expr.Value)
	case *ast.Call:
		v.validateExpr(expr.Callee)
		for _, arg := range expr.Args {
			v.validateExpr(arg)
		}
	case *ast.Get:
		v.validateExpr(expr.Object)
	case *ast.Set:
		v.validateExpr(expr.Object)
		v.validateExpr(expr.Value)
	case *ast.This:
		if v.class == classNone {
			v.addDiag(expr.Keyword, "Can't use 'this' outside of a class.")
		}
	case *ast.Super:
		switch v.class {
		case classNone:
			v.addDiag(expr.Keyword, "Can't use 'super' outside of a class.")
		case classPlain:
			v.addDiag(expr.Keyword, "Can't use 'super' in a class with no superclass.")
		}
	case *ast.Function:
		v.validateFunction(expr, fnFunction)
	}
}
