package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// captureKind marks records produced by the process fault hooks. Capture
// destinations accept only their own kind and ignore the level filter.
type captureKind uint8

const (
	captureNone captureKind = iota
	captureException
	captureRejection
)

// sink is one destination: a zerolog logger over its own writer plus the
// filter deciding which records reach it.
type sink struct {
	name     string
	min      Level
	capture  captureKind
	mirrored bool // receives capture records as well as normal ones
	logger   zerolog.Logger
}

func (k *sink) accepts(level Level, kind captureKind) bool {
	if k.capture != captureNone {
		return k.capture == kind
	}
	if kind != captureNone {
		return k.mirrored
	}
	return level <= k.min
}

func (k *sink) write(rec *record) {
	e := k.logger.Log().
		Str(timestampKey, rec.at).
		Str(levelKey, rec.level.String())
	if len(rec.fields) > 0 {
		e = e.Fields(map[string]interface{}(rec.fields))
	}
	if rec.stack != emptyString {
		e = e.Str(stackKey, rec.stack)
	}
	e.Msg(rec.msg)
}

func (s *Service) initializeConsoleSink(level Level) *sink {
	var out io.Writer = s.Console
	if out == nil {
		out = os.Stdout
	}
	if s.LoggingConfig.Format == FormatPretty {
		out = newPrettyWriter(out)
	}
	return &sink{
		name:     consoleSink,
		min:      level,
		mirrored: true,
		logger:   zerolog.New(zerolog.SyncWriter(out)),
	}
}

func (s *Service) initializeRollingFileSink(dir, name string, min Level, kind captureKind) (*sink, io.Closer, error) {
	const op errors.Op = "logging.Service.initializeRollingFileSink"
	cfg := s.LoggingConfig

	// Both were validated in validateConfig.
	maxSizeMB, _ := parseSize(cfg.MaxSize)
	keep, _ := parseRetention(cfg.MaxFiles)

	file := newDailyFile(dir, name, maxSizeMB, keep, cfg.Compress, s.clock, s.loc)
	if err := file.open(); err != nil {
		_ = file.Close()
		return nil, nil, errors.New(op).Err(err).Msg(errMsgOpenDest)
	}
	s.files[name] = file

	w := diode.NewWriter(file, cfg.bufferSize(), 10*time.Millisecond, func(missed int) {
		_, _ = fmt.Fprintf(os.Stderr, "logging: %s destination dropped %d lines\n", name, missed)
	})

	return &sink{
		name:    name,
		min:     min,
		capture: kind,
		logger:  zerolog.New(w),
	}, w, nil
}

// initializeSinks builds every destination. On failure the destinations opened
// so far are closed again.
func (s *Service) initializeSinks(dir string, level Level) ([]*sink, []io.Closer, error) {
	var sinks []*sink
	var closers []io.Closer

	if !s.Production || s.LoggingConfig.ForceConsole {
		sinks = append(sinks, s.initializeConsoleSink(level))
	}

	files := []struct {
		name string
		min  Level
		kind captureKind
	}{
		{combinedSink, level, captureNone},
		{errorSink, ErrorLevel, captureNone},
		{exceptionsSink, ErrorLevel, captureException},
		{rejectionsSink, ErrorLevel, captureRejection},
	}
	for _, f := range files {
		k, closer, err := s.initializeRollingFileSink(dir, f.name, f.min, f.kind)
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return nil, nil, err
		}
		sinks = append(sinks, k)
		closers = append(closers, closer)
	}

	return sinks, closers, nil
}
