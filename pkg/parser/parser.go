// Package parser implements the Lox recursive-descent parser.
package parser

import (
	"fmt"
	"strings"

	"github.com/thomasrohde/glox/pkg/ast"
	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/lexer"
	"github.com/thomasrohde/glox/pkg/token"
)

// MaxArgs bounds both call arguments and function parameters.
const MaxArgs = 255

const atEndPrefix = "at end: "

// parseError unwinds the current declaration after a report; it is always
// recovered in declaration().
type parseError struct{}

type parser struct {
	tokens []token.Token
	pos    int
	report diagnostics.Reporter
}

// Parse builds a statement list from tokens. Every syntax error is passed to
// report; the parser resynchronizes at the next statement boundary and keeps
// going, so the returned list holds every declaration that parsed cleanly.
func Parse(tokens []token.Token, report diagnostics.Reporter) []ast.Stmt {
	if report == nil {
		report = func(int, string) {}
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Line: line})
	}

	p := &parser{tokens: tokens, report: report}
	var stmts []ast.Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// ParseSource tokenizes and parses source, collecting lexical and syntax
// errors as diagnostics tagged with filename.
func ParseSource(source, filename string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	c := diagnostics.NewCollector(filename)
	tokens := lexer.Scan(source, c.Reporter(diagnostics.ELex))
	stmts := Parse(tokens, c.Reporter(diagnostics.EParse))
	return stmts, c.Diagnostics()
}

// IsIncomplete reports whether diags describe source that ended in the middle
// of a construct, so that more input could still make it valid.
func IsIncomplete(diags []diagnostics.Diagnostic) bool {
	if len(diags) == 0 {
		return false
	}
	for _, d := range diags {
		switch {
		case d.Code == diagnostics.EParse && strings.HasPrefix(d.Message, atEndPrefix):
		case d.Code == diagnostics.ELex && (d.Message == "Unterminated string." || d.Message == "Unterminated block comment."):
		default:
			return false
		}
	}
	return true
}

// --- Token cursor ---

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *parser) check(typ token.Type) bool {
	return !p.atEnd() && p.peek().Type == typ
}

func (p *parser) checkNext(typ token.Type) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos+1].Type == typ
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) match(types ...token.Type) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(typ token.Type, msg string) token.Token {
	if p.check(typ) {
		return p.advance()
	}
	panic(p.errorAt(p.peek(), msg))
}

// errorAt reports msg at tok and returns the unwinding value. Callers that
// can continue simply drop the result.
func (p *parser) errorAt(tok token.Token, msg string) parseError {
	if tok.Type == token.EOF {
		p.report(tok.Line, atEndPrefix+msg)
	} else {
		p.report(tok.Line, fmt.Sprintf("at '%s': %s", tok.Lexeme, msg))
	}
	return parseError{}
}

// synchronize discards tokens until a likely statement boundary.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// --- Declarations ---

func (p *parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.Class):
		return p.classDeclaration()
	case p.check(token.Fun) && p.checkNext(token.Identifier):
		p.advance()
		return p.funDeclaration()
	case p.match(token.Var):
		return p.varDeclaration()
	}
	return p.statement()
}

func (p *parser) classDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.Less) {
		p.consume(token.Identifier, "Expect superclass name.")
		superclass = &ast.Variable{Name: p.previous()}
	}

	p.consume(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.FunctionStmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.function("method"))
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")

	return &ast.ClassStmt{Name: name, Superclass: superclass, Methods: methods}
}

func (p *parser) funDeclaration() ast.Stmt {
	return p.function("function")
}

// function parses `name(params) { body }` for a declaration or method.
func (p *parser) function(kind string) *ast.FunctionStmt {
	name := p.consume(token.Identifier, fmt.Sprintf("Expect %s name.", kind))
	p.consume(token.LeftParen, fmt.Sprintf("Expect '(' after %s name.", kind))
	params := p.parameters()
	p.consume(token.LeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind))
	body := p.block()
	return &ast.FunctionStmt{
		Name: name,
		Func: &ast.Function{Keyword: name, Params: params, Body: body},
	}
}

// parameters parses a parameter list after '(' through the closing ')'.
func (p *parser) parameters() []token.Token {
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= MaxArgs {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", MaxArgs))
			}
			params = append(params, p.consume(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	return params
}

func (p *parser) varDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "Expect variable name.")

	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.VarStmt{Name: name, Initializer: init}
}

// --- Statements ---

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.LeftBrace):
		line := p.previous().Line
		return &ast.BlockStmt{Statements: p.block(), LineNum: line}
	}
	return p.expressionStatement()
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
func (p *parser) forStatement() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		init = p.varDeclaration()
	default:
		init = p.expressionStatement()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if incr != nil {
		body = &ast.BlockStmt{
			Statements: []ast.Stmt{body, &ast.ExpressionStmt{Expr: incr}},
			LineNum:    keyword.Line,
		}
	}
	if cond == nil {
		cond = &ast.Literal{Value: token.BoolLiteral(true), LineNum: keyword.Line}
	}
	body = &ast.WhileStmt{Keyword: keyword, Cond: cond, Body: body}

	if init != nil {
		body = &ast.BlockStmt{Statements: []ast.Stmt{init, body}, LineNum: keyword.Line}
	}
	return body
}

func (p *parser) ifStatement() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")

	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return &ast.IfStmt{Keyword: keyword, Cond: cond, Then: then, Else: els}
}

func (p *parser) printStatement() ast.Stmt {
	keyword := p.previous()
	value := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	return &ast.PrintStmt{Keyword: keyword, Expr: value}
}

func (p *parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *parser) whileStatement() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")
	body := p.statement()
	return &ast.WhileStmt{Keyword: keyword, Cond: cond, Body: body}
}

func (p *parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.ExpressionStmt{Expr: expr}
}

// block parses declarations after '{' through the closing '}'.
func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return stmts
}

// --- Expressions (lowest to highest precedence) ---

// expression → assignment ( "," assignment )*
func (p *parser) expression() ast.Expr {
	expr := p.assignment()
	for p.match(token.Comma) {
		op := p.previous()
		right := p.assignment()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
		}
		p.errorAt(equals, "Invalid assignment target.")
	}
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.Or) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.ternary()
	for p.match(token.And) {
		op := p.previous()
		right := p.ternary()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

// ternary → equality ( "?" ternary ":" ternary )?
func (p *parser) ternary() ast.Expr {
	cond := p.equality()
	if p.match(token.Question) {
		then := p.ternary()
		p.consume(token.Colon, "Expect ':' after then branch of conditional expression.")
		els := p.ternary()
		return &ast.Ternary{Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *parser) equality() ast.Expr {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() ast.Expr {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() ast.Expr {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() ast.Expr {
	return p.binary(p.unary, token.Slash, token.Star)
}

// binary parses a left-associative level whose operands come from next.
func (p *parser) binary(next func() ast.Expr, ops ...token.Type) ast.Expr {
	expr := next()
	for p.match(ops...) {
		op := p.previous()
		right := next()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Identifier, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

// finishCall parses arguments at assignment level so commas separate them.
func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= MaxArgs {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", MaxArgs))
			}
			args = append(args, p.assignment())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) primary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case token.False, token.True, token.Nil, token.Number, token.String:
		p.advance()
		return &ast.Literal{Value: tok.Literal, LineNum: tok.Line}
	case token.This:
		p.advance()
		return &ast.This{Keyword: tok}
	case token.Super:
		p.advance()
		p.consume(token.Dot, "Expect '.' after 'super'.")
		method := p.consume(token.Identifier, "Expect superclass method name.")
		return &ast.Super{Keyword: tok, Method: method}
	case token.Identifier:
		p.advance()
		return &ast.Variable{Name: tok}
	case token.Fun:
		p.advance()
		p.consume(token.LeftParen, "Expect '(' after 'fun'.")
		params := p.parameters()
		p.consume(token.LeftBrace, "Expect '{' before function body.")
		body := p.block()
		return &ast.Function{Keyword: tok, Params: params, Body: body}
	case token.LeftParen:
		p.advance()
		inner := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Inner: inner}
	}

	// A binary operator with no left operand: report it, parse and drop the
	// right operand, and keep going.
	if isBinaryOnly(tok.Type) {
		p.advance()
		p.errorAt(tok, "Missing left-hand operand.")
		p.unary()
		return &ast.Literal{Value: token.NilLiteral(), LineNum: tok.Line}
	}

	panic(p.errorAt(tok, "Expect expression."))
}

func isBinaryOnly(t token.Type) bool {
	switch t {
	case token.Plus, token.Slash, token.Star,
		token.EqualEqual, token.BangEqual,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		return true
	}
	return false
}
