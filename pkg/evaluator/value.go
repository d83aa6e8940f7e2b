// Package evaluator implements the Lox tree-walking interpreter.
package evaluator

import (
	"github.com/thomasrohde/glox/pkg/token"
)

// Value is the interface for all Lox runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	loxValue() // sealed marker
}

// Nil represents the nil value.
type Nil struct{}

func (Nil) loxValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) loxValue() {}

// Number represents a numeric value. All Lox numbers are float64.
type Number float64

func (Number) loxValue() {}

// String represents a string value.
type String string

func (String) loxValue() {}

// FromLiteral converts a token literal into its runtime value.
func FromLiteral(lit token.Literal) Value {
	switch lit.Kind {
	case token.LitBool:
		return Bool(lit.Bool)
	case token.LitNumber:
		return Number(lit.Num)
	case token.LitString:
		return String(lit.Str)
	default:
		return Nil{}
	}
}

// Truthy returns the boolean interpretation of a Lox value.
// nil and false are falsy; everything else, including 0 and "", is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return bool(val)
	default:
		return true
	}
}

// Equal reports whether a and b are equal. Values of different kinds are
// never equal; objects compare by identity.
func Equal(a, b Value) bool {
	if a == nil {
		a = Nil{}
	}
	if b == nil {
		b = Nil{}
	}
	// Every Value implementation is comparable: scalars compare by value and
	// objects are pointers.
	return a == b
}

// Stringify renders v the way print displays it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Number:
		return token.FormatNumber(float64(val))
	case String:
		return string(val)
	case *NativeFunction:
		return "<native fn>"
	case *Function:
		if val.Name == "" {
			return "<fn>"
		}
		return "<fn " + val.Name + ">"
	case *Class:
		return val.Name
	case *Instance:
		return val.Class.Name + " instance"
	}
	return "<unknown>"
}

// TypeName returns a short name for v's runtime kind.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *NativeFunction, *Function:
		return "function"
	case *Class:
		return "class"
	case *Instance:
		return "instance"
	}
	return "unknown"
}
