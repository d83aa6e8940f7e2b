package stdlib

import (
	"time"

	"github.com/thomasrohde/glox/pkg/evaluator"
)

// now is swapped out by tests.
var now = time.Now

// RegisterDefaults adds the default natives.
func RegisterDefaults(r *Registry) {
	r.Register(Fn{Name: "clock", Arity: 0, Execute: stdlibClock})
}

// stdlibClock returns the wall-clock time in seconds since the Unix epoch.
func stdlibClock(_ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.Number(float64(now().UnixNano()) / float64(time.Second)), nil
}
