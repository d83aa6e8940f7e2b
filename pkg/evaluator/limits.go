package evaluator

// DefaultMaxCallDepth bounds nested calls when no limit is configured.
const DefaultMaxCallDepth = 1024

// Limits holds the resource limits for one interpreter.
type Limits struct {
	// MaxCallDepth is the deepest allowed nesting of Lox calls. Zero means
	// DefaultMaxCallDepth; a negative value disables the check.
	MaxCallDepth int
}

func (l Limits) maxCallDepth() int {
	if l.MaxCallDepth == 0 {
		return DefaultMaxCallDepth
	}
	return l.MaxCallDepth
}

// Tracker tracks resource consumption during execution.
type Tracker struct {
	Depth    int   // current call nesting
	MaxDepth int   // deepest nesting reached
	Calls    int64 // total calls dispatched
	Loops    int64 // total while-loop iterations
}
