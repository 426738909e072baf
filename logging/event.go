package logging

import (
	"fmt"
	"time"
)

// LogContext provides a fluent interface for building a context logger with pre-populated fields.
// Fields added through LogContext will be included in all subsequent log messages.
type LogContext interface {
	Str(key, val string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Bool(key string, val bool) LogContext
	Interface(key string, val interface{}) LogContext
	Fields(fields Fields) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent provides a fluent interface for structured logging. Fields are
// collected on the event and written when Msg, Msgf or Send is called.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	Interface(key string, val interface{}) LogEvent
	Fields(fields Fields) LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent. An event without a service is a no-op.
type logEvent struct {
	service *Service
	level   Level
	context Fields
	fields  Fields
	err     error
	tracked bool
}

// newEvent creates an event that is counted as outstanding until it is sent,
// so Close can wait for it. Disabled levels return a no-op event.
func (s *Service) newEvent(level Level, context Fields) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return &logEvent{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	// Double-check after acquiring lock
	if !s.isInitialized.Load() || level > s.level {
		return &logEvent{}
	}

	s.activeOps.Add(1)
	s.wg.Add(1)
	return &logEvent{
		service: s,
		level:   level,
		context: context,
		fields:  Fields{},
		tracked: true,
	}
}

func (e *logEvent) set(key string, val any) LogEvent {
	if e.service != nil {
		e.fields[key] = val
	}
	return e
}

func (e *logEvent) Str(key, val string) LogEvent             { return e.set(key, val) }
func (e *logEvent) Strs(key string, vals []string) LogEvent  { return e.set(key, vals) }
func (e *logEvent) Int(key string, val int) LogEvent         { return e.set(key, val) }
func (e *logEvent) Int64(key string, val int64) LogEvent     { return e.set(key, val) }
func (e *logEvent) Float64(key string, val float64) LogEvent { return e.set(key, val) }
func (e *logEvent) Bool(key string, val bool) LogEvent       { return e.set(key, val) }
func (e *logEvent) Time(key string, val time.Time) LogEvent  { return e.set(key, val) }

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	return e.set(key, val.Milliseconds())
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	return e.set(key, val)
}

func (e *logEvent) Fields(fields Fields) LogEvent {
	if e.service != nil {
		for k, v := range fields {
			e.fields[k] = v
		}
	}
	return e
}

// Err attaches err and its cause chain (error_chain, error_root,
// error_history, error_ops, error_root_op).
func (e *logEvent) Err(err error) LogEvent {
	if e.service != nil {
		e.err = err
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	if e.service == nil {
		return
	}
	if e.tracked {
		defer e.done()
	}
	e.service.emit(entry{
		level:   e.level,
		msg:     msg,
		context: e.context,
		fields:  e.fields,
		err:     e.err,
		tracked: e.tracked,
	})
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.service == nil {
		return
	}
	e.Msg(fmt.Sprintf(format, v...))
}

func (e *logEvent) Send() {
	e.Msg(emptyString)
}

// done releases the event; a second send of the same event writes nothing.
func (e *logEvent) done() {
	e.tracked = false
	e.service.activeOps.Add(-1)
	e.service.wg.Done()
	e.service = nil
}

// contextLogger is a child logger. It delegates to the parent Service for
// destinations and lifecycle and only adds its own fields.
type contextLogger struct {
	parent *Service
	fields Fields
}

func (cl *contextLogger) Log(level Level, msg string, fields Fields) {
	cl.parent.emit(entry{level: level, msg: msg, context: cl.fields, fields: fields})
}

func (cl *contextLogger) ErrorWith() LogEvent { return cl.parent.newEvent(ErrorLevel, cl.fields) }
func (cl *contextLogger) WarnWith() LogEvent  { return cl.parent.newEvent(WarnLevel, cl.fields) }
func (cl *contextLogger) InfoWith() LogEvent  { return cl.parent.newEvent(InfoLevel, cl.fields) }
func (cl *contextLogger) HTTPWith() LogEvent  { return cl.parent.newEvent(HTTPLevel, cl.fields) }
func (cl *contextLogger) DebugWith() LogEvent { return cl.parent.newEvent(DebugLevel, cl.fields) }

func (cl *contextLogger) Enabled(level Level) bool { return cl.parent.Enabled(level) }

func (cl *contextLogger) Child(fields Fields) Logger {
	return &contextLogger{parent: cl.parent, fields: mergeFields(cl.fields, fields)}
}

func (cl *contextLogger) With() LogContext {
	return &logContext{parent: cl.parent, base: cl.fields, fields: Fields{}}
}

// logContext collects fields for a child logger.
type logContext struct {
	parent *Service
	base   Fields
	fields Fields
}

func (c *logContext) Str(key, val string) LogContext         { c.fields[key] = val; return c }
func (c *logContext) Int(key string, val int) LogContext     { c.fields[key] = val; return c }
func (c *logContext) Int64(key string, val int64) LogContext { c.fields[key] = val; return c }
func (c *logContext) Bool(key string, val bool) LogContext   { c.fields[key] = val; return c }

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.fields[key] = val
	return c
}

func (c *logContext) Fields(fields Fields) LogContext {
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (c *logContext) Logger() Logger {
	return &contextLogger{parent: c.parent, fields: mergeFields(c.base, c.fields)}
}
