// Package token defines the Lox token kinds and the literal value model shared
// by the lexer, parser, and evaluator.
package token

import (
	"fmt"
	"math"
	"strconv"
)

// Type identifies the kind of a lexer token.
type Type int

const (
	// Single-character tokens
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star
	Question
	Colon

	// One or two character tokens
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var typeNames = [...]string{
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Question:     "QUESTION",
	Colon:        "COLON",
	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	For:          "FOR",
	Fun:          "FUN",
	If:           "IF",
	Nil:          "NIL",
	Or:           "OR",
	Print:        "PRINT",
	Return:       "RETURN",
	Super:        "SUPER",
	This:         "THIS",
	True:         "TRUE",
	Var:          "VAR",
	While:        "WHILE",
	EOF:          "EOF",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Keywords maps reserved words to their token type.
var Keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// IsKeyword reports whether t is a reserved word.
func (t Type) IsKeyword() bool {
	return t >= And && t <= While
}

// Token is a single lexeme produced by the lexer. Tokens are immutable once
// produced.
type Token struct {
	Type    Type
	Lexeme  string
	Literal Literal
	Line    int
}

func (t Token) String() string {
	if t.Literal.Kind == LitNone {
		return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
	}
	return fmt.Sprintf("%s %s %s", t.Type, t.Lexeme, t.Literal)
}

// New creates a token carrying no literal value.
func New(typ Type, lexeme string, line int) Token {
	return Token{Type: typ, Lexeme: lexeme, Line: line}
}

// LiteralKind discriminates the Literal union.
type LiteralKind int

const (
	LitNone LiteralKind = iota // token carries no literal
	LitNil
	LitBool
	LitNumber
	LitString
)

// Literal is the tagged primitive value carried by literal tokens and
// literal expressions.
type Literal struct {
	Kind LiteralKind
	Num  float64
	Str  string
	Bool bool
}

// NilLiteral returns the nil literal.
func NilLiteral() Literal { return Literal{Kind: LitNil} }

// BoolLiteral returns a boolean literal.
func BoolLiteral(b bool) Literal { return Literal{Kind: LitBool, Bool: b} }

// NumberLiteral returns a numeric literal.
func NumberLiteral(n float64) Literal { return Literal{Kind: LitNumber, Num: n} }

// StringLiteral returns a string literal.
func StringLiteral(s string) Literal { return Literal{Kind: LitString, Str: s} }

func (l Literal) String() string {
	switch l.Kind {
	case LitNil:
		return "nil"
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitNumber:
		return FormatNumber(l.Num)
	case LitString:
		return l.Str
	default:
		return ""
	}
}

// FormatNumber renders a float the way Lox prints numbers: integral values
// have no trailing ".0", negative zero prints as "0", and the IEEE specials
// print as Infinity, -Infinity and NaN.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
