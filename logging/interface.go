package logging

// Logger is the surface components depend on. *Service and every child
// logger derived from it implement it.
type Logger interface {
	// Log writes msg at level with fields merged over the logger's context.
	Log(level Level, msg string, fields Fields)

	ErrorWith() LogEvent
	WarnWith() LogEvent
	InfoWith() LogEvent
	HTTPWith() LogEvent
	DebugWith() LogEvent

	// Child returns a logger whose records carry fields in addition to this
	// logger's own context. On key collision the innermost value wins.
	Child(fields Fields) Logger
	// With for context logger creation
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext

	Enabled(level Level) bool
}
