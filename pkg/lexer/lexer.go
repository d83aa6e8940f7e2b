// Package lexer implements the Lox tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/thomasrohde/glox/pkg/diagnostics"
	"github.com/thomasrohde/glox/pkg/token"
)

type scanner struct {
	source string
	start  int
	pos    int
	line   int
	report diagnostics.Reporter
	tokens []token.Token
}

func newScanner(source string, report diagnostics.Reporter) *scanner {
	if report == nil {
		report = func(int, string) {}
	}
	return &scanner{
		source: source,
		line:   1,
		report: report,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
	}
	return ch
}

// match consumes the next byte only if it equals expected.
func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.pos] != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) add(typ token.Type) {
	s.addLiteral(typ, token.Literal{})
}

func (s *scanner) addLiteral(typ token.Type, lit token.Literal) {
	s.tokens = append(s.tokens, token.Token{
		Type:    typ,
		Lexeme:  s.source[s.start:s.pos],
		Literal: lit,
		Line:    s.line,
	})
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() {
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.atEnd() {
		s.report(s.line, "Unterminated string.")
		return
	}
	s.advance() // closing "

	value := s.source[s.start+1 : s.pos-1]
	// A multi-line string is tagged with the line it ends on.
	s.addLiteral(token.String, token.StringLiteral(value))
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}

	// A fractional part needs digits on both sides of the dot.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[s.start:s.pos]
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.report(s.line, fmt.Sprintf("Invalid number '%s'.", text))
		return
	}
	s.addLiteral(token.Number, token.NumberLiteral(val))
}

func (s *scanner) scanIdentOrKeyword() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[s.start:s.pos]
	if typ, ok := token.Keywords[text]; ok {
		switch typ {
		case token.True:
			s.addLiteral(typ, token.BoolLiteral(true))
		case token.False:
			s.addLiteral(typ, token.BoolLiteral(false))
		case token.Nil:
			s.addLiteral(typ, token.NilLiteral())
		default:
			s.add(typ)
		}
		return
	}
	s.add(token.Identifier)
}

func (s *scanner) skipBlockComment() {
	for !s.atEnd() && !(s.peek() == '*' && s.peekAt(1) == '/') {
		s.advance()
	}
	if s.atEnd() {
		s.report(s.line, "Unterminated block comment.")
		return
	}
	s.pos += 2 // */
}

func (s *scanner) scanToken() {
	ch := s.advance()

	switch ch {
	case '(':
		s.add(token.LeftParen)
	case ')':
		s.add(token.RightParen)
	case '{':
		s.add(token.LeftBrace)
	case '}':
		s.add(token.RightBrace)
	case ',':
		s.add(token.Comma)
	case '.':
		s.add(token.Dot)
	case '-':
		s.add(token.Minus)
	case '+':
		s.add(token.Plus)
	case ';':
		s.add(token.Semicolon)
	case '*':
		s.add(token.Star)
	case '?':
		s.add(token.Question)
	case ':':
		s.add(token.Colon)

	case '!':
		if s.match('=') {
			s.add(token.BangEqual)
		} else {
			s.add(token.Bang)
		}
	case '=':
		if s.match('=') {
			s.add(token.EqualEqual)
		} else {
			s.add(token.Equal)
		}
	case '<':
		if s.match('=') {
			s.add(token.LessEqual)
		} else {
			s.add(token.Less)
		}
	case '>':
		if s.match('=') {
			s.add(token.GreaterEqual)
		} else {
			s.add(token.Greater)
		}

	case '/':
		switch {
		case s.match('/'):
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case s.match('*'):
			s.skipBlockComment()
		default:
			s.add(token.Slash)
		}

	case ' ', '\r', '\t', '\n':
		// advance already counted the newline

	case '"':
		s.scanString()

	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		default:
			// Skip the whole UTF-8 sequence so one bad rune is one error.
			r, size := utf8.DecodeRuneInString(s.source[s.start:])
			if size > 1 {
				s.pos = s.start + size
			}
			s.report(s.line, fmt.Sprintf("Unexpected character '%c'.", r))
		}
	}
}

// Scan breaks source into tokens. Errors are passed to report and never stop
// the scan: the result is always a complete token stream terminated by EOF.
func Scan(source string, report diagnostics.Reporter) []token.Token {
	s := newScanner(source, report)
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.Token{Type: token.EOF, Line: s.line})
	return s.tokens
}

// Tokenize scans source and collects lexical errors as diagnostics tagged with filename.
func Tokenize(source, filename string) ([]token.Token, []diagnostics.Diagnostic) {
	c := diagnostics.NewCollector(filename)
	tokens := Scan(source, c.Reporter(diagnostics.ELex))
	return tokens, c.Diagnostics()
}
