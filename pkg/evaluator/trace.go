package evaluator

import "time"

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceCallStart TraceEventType = "call_start"
	TraceCallEnd   TraceEventType = "call_end"
	TraceError     TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId,omitempty"`
	Event     TraceEventType    `json:"event"`
	Line      int               `json:"line,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func (in *Interpreter) emit(event TraceEventType, line int, data map[string]string) {
	if in.opts.Trace == nil {
		return
	}
	in.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     in.opts.RunID,
		Event:     event,
		Line:      line,
		Data:      data,
	})
}
