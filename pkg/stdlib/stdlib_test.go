package stdlib

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/glox/pkg/evaluator"
)

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.Equal(t, []string{"clock"}, r.Names())
	require.NotNil(t, r.Get("clock"))
	assert.Equal(t, 0, r.Get("clock").Arity)
	assert.Nil(t, r.Get("missing"))
}

func TestClock(t *testing.T) {
	saved := now
	defer func() { now = saved }()
	now = func() time.Time { return time.Unix(1700000000, 500000000) }

	v, err := stdlibClock(nil)
	require.NoError(t, err)
	assert.Equal(t, evaluator.Value(evaluator.Number(1700000000.5)), v)
}

func TestInstall(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	r.Register(Fn{Name: "boom", Arity: 2, Execute: func([]evaluator.Value) (evaluator.Value, error) {
		return nil, errors.New("boom")
	}})

	env := evaluator.NewEnv(nil)
	r.Install(env)
	assert.Equal(t, []string{"boom", "clock"}, env.Names())

	v, ok := env.Lookup("boom")
	require.True(t, ok)
	native, ok := v.(*evaluator.NativeFunction)
	require.True(t, ok)
	assert.Equal(t, 2, native.Arity())
	assert.Equal(t, "<native fn>", evaluator.Stringify(native))
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(Fn{Name: "f", Arity: 1})
	r.Register(Fn{Name: "f", Arity: 3})
	assert.Len(t, r.All(), 1)
	assert.Equal(t, 3, r.Get("f").Arity)
}
