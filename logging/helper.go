package logging

import (
	stderrs "errors"
	"runtime/debug"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// Fields is the structured metadata of a record. Values must be JSON
// serializable; anything else is rendered as its marshalling error.
type Fields map[string]any

// entry is a record as submitted by a caller, before context merging.
type entry struct {
	level   Level
	kind    captureKind
	msg     string
	context Fields
	fields  Fields
	err     error
	stack   string
	// tracked entries come from events Close is waiting for and may still be
	// written while it drains.
	tracked bool
}

// record is what destinations encode. It is immutable once built.
type record struct {
	level  Level
	kind   captureKind
	at     string
	msg    string
	fields Fields
	stack  string
}

// mergeFields layers over on top of base into a new map; base is not modified.
func mergeFields(base, over Fields) Fields {
	merged := make(Fields, len(base)+len(over))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// protectReserved moves metadata keys that collide with the keys every
// record carries to metaPrefix+key.
func protectReserved(fields Fields, keys ...string) {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			delete(fields, key)
			fields[metaPrefix+key] = v
		}
	}
}

// faultOf returns the error attached to a record, either through Err() or as
// a metadata value.
func faultOf(e *entry) error {
	if e.err != nil {
		return e.err
	}
	for _, v := range e.fields {
		if err, ok := v.(error); ok && err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) buildRecord(e *entry) *record {
	fields := mergeFields(e.context, e.fields)
	protectReserved(fields, timestampKey, levelKey, messageKey, stackKey)

	if e.err != nil {
		protectReserved(fields, errorKeys[:]...)
		fields[errorKey] = e.err.Error()
		chain, ops, root, rootOp := buildErrorChain(e.err)
		if len(chain) > 0 {
			fields[errorChainKey] = chain
			fields[errorRootKey] = root
			fields[errorHistoryKey] = joinChain(chain)
			fields[errorOpsKey] = ops
			if rootOp != emptyString {
				fields[errorRootOpKey] = rootOp
			}
		}
	}

	stack := e.stack
	if stack == emptyString && e.level == ErrorLevel && faultOf(e) != nil {
		stack = string(debug.Stack())
	}

	return &record{
		level:  e.level,
		kind:   e.kind,
		at:     s.timestamp(),
		msg:    e.msg,
		fields: fields,
		stack:  stack,
	}
}

// emit routes one entry to every destination that accepts it. Emission never
// panics into the caller.
func (s *Service) emit(e entry) {
	if s == nil || (!e.tracked && !s.isInitialized.Load()) {
		return
	}
	defer func() {
		_ = recover()
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !e.tracked && !s.isInitialized.Load() {
		return
	}
	if e.kind == captureNone && e.level > s.level {
		return
	}

	s.dispatch(s.buildRecord(&e))
}

func (s *Service) dispatch(rec *record) {
	sinks := s.sinks.Load()
	if sinks == nil {
		return
	}
	for _, k := range *sinks {
		if k.accepts(rec.level, rec.kind) {
			k.write(rec)
		}
	}
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// The traversal prefers Station-Manager DetailedError.Cause() and then
// falls back to stdlib errors.Unwrap. It guards against excessive depth
// and repeated messages to avoid cycles.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, emptyString)
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}
