package logging

import (
	stderrs "errors"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"go.uber.org/atomic"
)

// Service is the process-wide log sink. Construct it once at startup, call
// Initialize, and pass it (or children derived from it) to every component
// that logs.
type Service struct {
	// WorkingDir anchors a relative LoggingConfig.Directory. Empty means the
	// process working directory.
	WorkingDir    string
	LoggingConfig *Config
	// Production disables the console destination unless ForceConsole is set.
	Production bool
	// Console receives console output; nil means os.Stdout.
	Console io.Writer

	sinks         atomic.Pointer[[]*sink]
	closers       []io.Closer
	files         map[string]*dailyFile
	level         Level
	loc           *time.Location
	clock         func() time.Time
	exit          func(int)
	isInitialized atomic.Bool
	initOnce      sync.Once
	initErr       error
	mu            sync.RWMutex
	wg            sync.WaitGroup
	activeOps     atomic.Int64
}

func NewLogger(cfg *Config) *Service {
	return &Service{LoggingConfig: cfg}
}

// Initialize validates the configuration and opens every destination. A
// destination that cannot be opened is returned as an error: the process must
// not run without its log files. Calling Initialize again returns the first
// result.
func (s *Service) Initialize() error {
	const op errors.Op = "logging.Service.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}

	s.initOnce.Do(func() {
		s.initErr = s.initialize()
	})
	return s.initErr
}

func (s *Service) initialize() error {
	const op errors.Op = "logging.Service.initialize"

	if s.LoggingConfig == nil {
		cfg := DefaultConfig()
		s.LoggingConfig = &cfg
	}
	if err := validateConfig(s.LoggingConfig); err != nil {
		return err
	}

	level, err := ParseLevel(s.LoggingConfig.Level)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}
	s.level = level

	s.loc = time.Local
	if tz := s.LoggingConfig.TimeZone; tz != emptyString {
		if s.loc, err = time.LoadLocation(tz); err != nil {
			return errors.New(op).Err(err).Msg(errMsgBadTimeZone)
		}
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	dir, err := s.resolveDirectory()
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgBadDirectory)
	}

	s.files = make(map[string]*dailyFile)
	sinks, closers, err := s.initializeSinks(dir, level)
	if err != nil {
		return err
	}

	s.closers = closers
	s.sinks.Store(&sinks)
	s.isInitialized.Store(true)
	return nil
}

// resolveDirectory returns the absolute destination directory. It does not
// create it; the rotating writer does so on first write.
func (s *Service) resolveDirectory() (string, error) {
	dir := s.LoggingConfig.Directory
	if !filepath.IsAbs(dir) && s.WorkingDir != emptyString {
		dir = filepath.Join(s.WorkingDir, dir)
	}
	return filepath.Abs(dir)
}

// Close stops accepting records, waits for outstanding events (bounded by
// ShutdownTimeoutMS), drains queued writes and closes every file. It is safe
// to call Close more than once.
func (s *Service) Close() error {
	if s == nil || !s.isInitialized.Load() {
		return nil
	}

	s.mu.Lock()
	if !s.isInitialized.Load() {
		s.mu.Unlock()
		return nil
	}
	s.isInitialized.Store(false)
	s.mu.Unlock()

	if !s.waitForActive(s.LoggingConfig.shutdownTimeout()) {
		s.dispatch(&record{
			level:  WarnLevel,
			at:     s.timestamp(),
			msg:    errMsgShutdownTimeout,
			fields: Fields{"active_operations": s.activeOps.Load()},
		})
	}

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.sinks.Store(nil)
	return stderrs.Join(errs...)
}

// waitForActive reports whether all outstanding events finished in time.
func (s *Service) waitForActive(timeout time.Duration) bool {
	if s.activeOps.Load() == 0 {
		return true
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Service) timestamp() string {
	return s.clock().In(s.loc).Format(timestampLayout)
}

// Enabled reports whether any destination accepts records at level.
func (s *Service) Enabled(level Level) bool {
	return s != nil && s.isInitialized.Load() && level <= s.level
}

// Log writes one record. It never fails from the caller's point of view.
func (s *Service) Log(level Level, msg string, fields Fields) {
	s.emit(entry{level: level, msg: msg, fields: fields})
}

func (s *Service) ErrorWith() LogEvent { return s.newEvent(ErrorLevel, nil) }
func (s *Service) WarnWith() LogEvent  { return s.newEvent(WarnLevel, nil) }
func (s *Service) InfoWith() LogEvent  { return s.newEvent(InfoLevel, nil) }
func (s *Service) HTTPWith() LogEvent  { return s.newEvent(HTTPLevel, nil) }
func (s *Service) DebugWith() LogEvent { return s.newEvent(DebugLevel, nil) }

// Child returns a logger that adds fields to every record it writes.
func (s *Service) Child(fields Fields) Logger {
	return &contextLogger{parent: s, fields: mergeFields(nil, fields)}
}

// With returns a LogContext for building a child logger field by field.
// Example: reqLogger := logger.With().Str("request_id", id).Logger()
func (s *Service) With() LogContext {
	return &logContext{parent: s, fields: Fields{}}
}
