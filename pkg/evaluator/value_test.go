package evaluator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/glox/pkg/evaluator"
	"github.com/thomasrohde/glox/pkg/token"
)

func TestFromLiteral(t *testing.T) {
	assert.Equal(t, evaluator.Value(evaluator.Nil{}), evaluator.FromLiteral(token.NilLiteral()))
	assert.Equal(t, evaluator.Value(evaluator.Bool(true)), evaluator.FromLiteral(token.BoolLiteral(true)))
	assert.Equal(t, evaluator.Value(evaluator.Number(144)), evaluator.FromLiteral(token.NumberLiteral(144)))
	assert.Equal(t, evaluator.Value(evaluator.String("s")), evaluator.FromLiteral(token.StringLiteral("s")))
	assert.Equal(t, evaluator.Value(evaluator.Nil{}), evaluator.FromLiteral(token.Literal{}))
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{nil, false},
		{evaluator.Nil{}, false},
		{evaluator.Bool(false), false},
		{evaluator.Bool(true), true},
		{evaluator.Number(0), true},
		{evaluator.Number(-1), true},
		{evaluator.String(""), true},
		{evaluator.String("x"), true},
		{evaluator.NewInstance(&evaluator.Class{Name: "A"}), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, evaluator.Truthy(tt.value), "Truthy(%#v)", tt.value)
	}
}

func TestEqual(t *testing.T) {
	a := evaluator.NewInstance(&evaluator.Class{Name: "A"})
	b := evaluator.NewInstance(&evaluator.Class{Name: "A"})

	assert.True(t, evaluator.Equal(evaluator.Nil{}, nil))
	assert.True(t, evaluator.Equal(evaluator.Number(1), evaluator.Number(1)))
	assert.True(t, evaluator.Equal(evaluator.String("x"), evaluator.String("x")))
	assert.True(t, evaluator.Equal(a, a))
	assert.False(t, evaluator.Equal(a, b))
	assert.False(t, evaluator.Equal(evaluator.Number(1), evaluator.String("1")))
	assert.False(t, evaluator.Equal(evaluator.Bool(false), evaluator.Nil{}))
	assert.False(t, evaluator.Equal(evaluator.Number(math.NaN()), evaluator.Number(math.NaN())))
}

func TestStringify(t *testing.T) {
	class := &evaluator.Class{Name: "Point"}
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.Nil{}, "nil"},
		{evaluator.Bool(true), "true"},
		{evaluator.Number(3), "3"},
		{evaluator.Number(2.5), "2.5"},
		{evaluator.Number(-0.125), "-0.125"},
		{evaluator.String("raw \"text\""), "raw \"text\""},
		{evaluator.NewNative("clock", 0, nil), "<native fn>"},
		{&evaluator.Function{Name: "f"}, "<fn f>"},
		{&evaluator.Function{}, "<fn>"},
		{class, "Point"},
		{evaluator.NewInstance(class), "Point instance"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evaluator.Stringify(tt.value))
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "nil", evaluator.TypeName(evaluator.Nil{}))
	assert.Equal(t, "number", evaluator.TypeName(evaluator.Number(1)))
	assert.Equal(t, "string", evaluator.TypeName(evaluator.String("")))
	assert.Equal(t, "boolean", evaluator.TypeName(evaluator.Bool(false)))
	assert.Equal(t, "function", evaluator.TypeName(&evaluator.Function{}))
	assert.Equal(t, "class", evaluator.TypeName(&evaluator.Class{}))
}

func TestEnvDefineGetAssign(t *testing.T) {
	global := evaluator.NewEnv(nil)
	global.Define("a", evaluator.Number(1))
	inner := global.Child()
	inner.Define("b", evaluator.Number(2))

	v, err := inner.Get(token.New(token.Identifier, "a", 1))
	require.NoError(t, err)
	assert.Equal(t, evaluator.Value(evaluator.Number(1)), v)

	// assign walks outward and mutates the frame that holds the binding
	require.NoError(t, inner.Assign(token.New(token.Identifier, "a", 1), evaluator.Number(10)))
	v, _ = global.Lookup("a")
	assert.Equal(t, evaluator.Value(evaluator.Number(10)), v)

	_, ok := global.Lookup("b")
	assert.False(t, ok, "child bindings are invisible to the parent")

	err = inner.Assign(token.New(token.Identifier, "zzz", 7), evaluator.Nil{})
	var rt *evaluator.RuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, "Undefined variable 'zzz'.", rt.Message)
	assert.Equal(t, 7, rt.Line())
	_, ok = inner.Lookup("zzz")
	assert.False(t, ok, "assign never creates a binding")
}

func TestEnvShadowing(t *testing.T) {
	global := evaluator.NewEnv(nil)
	global.Define("x", evaluator.String("outer"))
	inner := global.Child()
	inner.Define("x", evaluator.String("inner"))

	v, _ := inner.Lookup("x")
	assert.Equal(t, evaluator.Value(evaluator.String("inner")), v)
	v, _ = global.Lookup("x")
	assert.Equal(t, evaluator.Value(evaluator.String("outer")), v)
}

func TestEnvCopyIsIndependent(t *testing.T) {
	global := evaluator.NewEnv(nil)
	global.Define("n", evaluator.Number(1))
	inner := global.Child()
	inner.Define("m", evaluator.Number(2))

	cp := inner.Copy()
	cp.Define("m", evaluator.Number(20))
	require.NoError(t, cp.Assign(token.New(token.Identifier, "n", 1), evaluator.Number(10)))

	v, _ := inner.Lookup("m")
	assert.Equal(t, evaluator.Value(evaluator.Number(2)), v)
	v, _ = global.Lookup("n")
	assert.Equal(t, evaluator.Value(evaluator.Number(1)), v)
	v, _ = cp.Lookup("n")
	assert.Equal(t, evaluator.Value(evaluator.Number(10)), v)
	assert.Equal(t, []string{"m"}, cp.Names())
}
