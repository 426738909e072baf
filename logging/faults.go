package logging

import (
	"fmt"
	"runtime/debug"
	"time"
)

// CaptureException records an uncaught fault (a recovered panic value) to the
// exceptions file, regardless of the configured level.
func (s *Service) CaptureException(v any, stack []byte) {
	e := entry{
		level:  ErrorLevel,
		kind:   captureException,
		msg:    fmt.Sprint(v),
		fields: Fields{"fault": "uncaughtException"},
		stack:  string(stack),
	}
	if err, ok := v.(error); ok {
		e.err = err
	}
	s.emitCapture(e)
}

// CaptureRejection records an error that a background task returned and
// nobody handled to the rejections file, regardless of the configured level.
func (s *Service) CaptureRejection(err error) {
	if err == nil {
		return
	}
	s.emitCapture(entry{
		level:  ErrorLevel,
		kind:   captureRejection,
		msg:    err.Error(),
		fields: Fields{"fault": "unhandledRejection"},
		err:    err,
		stack:  string(debug.Stack()),
	})
}

func (s *Service) emitCapture(e entry) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	s.emit(e)
}

// HandleException captures v, flushes and exits with status 1.
func (s *Service) HandleException(v any, stack []byte) {
	s.CaptureException(v, stack)
	s.exitAfterFlush(1)
}

// HandleRejection captures err, flushes and exits with status 1.
func (s *Service) HandleRejection(err error) {
	s.CaptureRejection(err)
	s.exitAfterFlush(1)
}

// RecoverAndExit must be deferred directly:
//
//	defer svc.RecoverAndExit()
//
// A panic reaching it is captured as an exception and the process exits.
func (s *Service) RecoverAndExit() {
	if r := recover(); r != nil {
		s.HandleException(r, debug.Stack())
	}
}

// Go runs fn on a new goroutine. A returned error is handled as a rejection, a
// panic as an exception.
func (s *Service) Go(fn func() error) {
	go func() {
		defer s.RecoverAndExit()
		if err := fn(); err != nil {
			s.HandleRejection(err)
		}
	}()
}

// exitAfterFlush gives queued writes up to FaultExitDelayMS to reach disk
// before exiting.
func (s *Service) exitAfterFlush(code int) {
	delay := time.Second
	if s.LoggingConfig != nil {
		delay = s.LoggingConfig.faultExitDelay()
	}

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(delay):
	}
	s.exitFunc()(code)
}

func (s *Service) exitFunc() func(int) {
	if s.exit == nil {
		return defaultExit
	}
	return s.exit
}
