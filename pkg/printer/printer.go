// Package printer renders Lox ASTs in a parenthesized prefix form for
// debugging and snapshot tests.
package printer

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/token"
)

const indent = "  "

// Print renders a statement list, one top-level statement per line.
func Print(stmts []ast.Stmt) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// Expr renders a single expression, e.g. (* (- 123) (group 45.67)).
func Expr(e ast.Expr) string {
	return formatExpr(e, 0)
}

// Stmt renders a single statement at depth zero.
func Stmt(s ast.Stmt) string {
	return formatStmt(s, 0)
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.ExpressionStmt:
		return prefix + "(; " + formatExpr(stmt.Expr, depth) + ")"
	case *ast.PrintStmt:
		return prefix + "(print " + formatExpr(stmt.Expr, depth) + ")"
	case *ast.VarStmt:
		if stmt.Initializer == nil {
			return prefix + "(var " + stmt.Name.Lexeme + ")"
		}
		return prefix + "(var " + stmt.Name.Lexeme + " " + formatExpr(stmt.Initializer, depth) + ")"
	case *ast.BlockStmt:
		if len(stmt.Statements) == 0 {
			return prefix + "(block)"
		}
		return prefix + "(block\n" + formatBlock(stmt.Statements, depth) + ")"
	case *ast.IfStmt:
		out := prefix + "(if " + formatExpr(stmt.Cond, depth) + "\n" + formatStmt(stmt.Then, depth+1)
		if stmt.Else != nil {
			out += "\n" + formatStmt(stmt.Else, depth+1)
		}
		return out + ")"
	case *ast.WhileStmt:
		return prefix + "(while " + formatExpr(stmt.Cond, depth) + "\n" + formatStmt(stmt.Body, depth+1) + ")"
	case *ast.FunctionStmt:
		return prefix + "(fun " + stmt.Name.Lexeme + " " + formatFunction(stmt.Func, depth) + ")"
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "(return)"
		}
		return prefix + "(return " + formatExpr(stmt.Value, depth) + ")"
	case *ast.ClassStmt:
		out := prefix + "(class " + stmt.Name.Lexeme
		if stmt.Superclass != nil {
			out += " < " + stmt.Superclass.Name.Lexeme
		}
		for _, m := range stmt.Methods {
			out += "\n" + formatStmt(m, depth+1)
		}
		return out + ")"
	}
	return ""
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return strings.Join(lines, "\n")
}

// formatFunction renders "(params) body..." for declarations and literals.
func formatFunction(fn *ast.Function, depth int) string {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Lexeme
	}
	out := "(" + strings.Join(names, " ") + ")"
	if len(fn.Body) > 0 {
		out += "\n" + formatBlock(fn.Body, depth)
	}
	return out
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value)
	case *ast.Grouping:
		return parenthesize(depth, "group", expr.Inner)
	case *ast.Unary:
		return parenthesize(depth, expr.Op.Lexeme, expr.Right)
	case *ast.Binary:
		return parenthesize(depth, expr.Op.Lexeme, expr.Left, expr.Right)
	case *ast.Logical:
		return parenthesize(depth, expr.Op.Lexeme, expr.Left, expr.Right)
	case *ast.Ternary:
		return parenthesize(depth, "?:", expr.Cond, expr.Then, expr.Else)
	case *ast.Assign:
		return parenthesize(depth, "= "+expr.Name.Lexeme, expr.Value)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Call:
		return parenthesize(depth, "call", append([]ast.Expr{expr.Callee}, expr.Args...)...)
	case *ast.Get:
		return "(. " + formatExpr(expr.Object, depth) + " " + expr.Name.Lexeme + ")"
	case *ast.Set:
		return "(= (. " + formatExpr(expr.Object, depth) + " " + expr.Name.Lexeme + ") " + formatExpr(expr.Value, depth) + ")"
	case *ast.This:
		return "this"
	case *ast.Super:
		return "(super " + expr.Method.Lexeme + ")"
	case *ast.Function:
		return "(fun " + formatFunction(expr, depth+1) + ")"
	}
	return ""
}

func parenthesize(depth int, name string, exprs ...ast.Expr) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteString(" ")
		b.WriteString(formatExpr(e, depth))
	}
	b.WriteString(")")
	return b.String()
}

func formatLiteral(lit token.Literal) string {
	switch lit.Kind {
	case token.LitNumber:
		return token.FormatNumber(lit.Num)
	case token.LitString:
		return strconv.Quote(lit.Str)
	case token.LitBool:
		return strconv.FormatBool(lit.Bool)
	}
	return "nil"
}
