package audit

import (
	"time"

	"go.uber.org/zap"
)

// Writer is the interface for recording tool invocation events.
// Write() must NEVER block the caller.
type Writer interface {
	Write(event *InvocationEvent)
	Close()
}

// Stage marks where in the invocation lifecycle an event was emitted.
const (
	StageReceived  = "received"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// InvocationEvent is a single audit record for one tool invocation stage.
// ArgumentsJSON is redacted before the event is constructed.
type InvocationEvent struct {
	InvocationID  string
	Timestamp     time.Time
	Stage         string
	Tool          string
	Action        string
	Domain        string
	Mode          string
	PrincipalID   string // "anonymous" when no principal
	Outcome       string // empty at received stage
	Error         string
	ArgumentsJSON string
	DurationMs    float32
}

// LogWriter is a fallback Writer for local development.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter that outputs events to the given logger.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *InvocationEvent) {
	w.logger.Info("tool_invocation_event",
		zap.String("invocation_id", event.InvocationID),
		zap.String("stage", event.Stage),
		zap.String("tool", event.Tool),
		zap.String("action", event.Action),
		zap.String("domain", event.Domain),
		zap.String("mode", event.Mode),
		zap.String("principal_id", event.PrincipalID),
		zap.String("outcome", event.Outcome),
		zap.String("error", event.Error),
		zap.String("arguments", event.ArgumentsJSON),
		zap.Float32("duration_ms", event.DurationMs),
	)
}

func (w *LogWriter) Close() {}

// NopWriter discards events; used when audit logging is switched off.
type NopWriter struct{}

func (NopWriter) Write(*InvocationEvent) {}
func (NopWriter) Close()                 {}
