package lexer

import (
	"testing"

	"github.com/thomasrohde/glox/pkg/token"
)

// FuzzScan feeds random inputs to the lexer to catch panics.
// The lexer must never panic and must always end the stream with EOF.
func FuzzScan(f *testing.F) {
	seeds := []string{
		// Keywords
		`and class else false for fun if nil or print return super this true var while`,
		// Literals
		`42 3.14 0 007 1. .5`,
		`"hello" "multi
line"`,
		// Operators
		`+ - * / ! != = == < <= > >= ? :`,
		// Delimiters
		`( ) { } , . ;`,
		// Comments
		`// line comment`,
		`/* block */ /* unterminated`,
		`/*/`,
		// Mixed
		`var x = 42;`,
		`class A < B { init(a) { this.a = a; } }`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`"""`,
		`@#$^&`,
		"\x00",
		"\xff\xfe",
		`é`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens := Scan(input, nil)
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
			t.Fatalf("Scan(%q) did not end with EOF", input)
		}
	})
}
