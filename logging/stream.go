package logging

import (
	"io"
	"strings"
	"unicode"
)

// streamWriter adapts a Logger to io.Writer for components that only produce
// formatted lines, such as the HTTP access logger.
type streamWriter struct {
	logger Logger
}

// Stream returns an io.Writer that logs each written line, with trailing
// whitespace trimmed, at HTTPLevel.
func (s *Service) Stream() io.Writer {
	return NewStream(s)
}

// NewStream is Stream for any Logger, typically a child.
func NewStream(l Logger) io.Writer {
	return &streamWriter{logger: l}
}

func (w *streamWriter) Write(p []byte) (int, error) {
	line := strings.TrimRightFunc(string(p), unicode.IsSpace)
	if line != emptyString {
		w.logger.Log(HTTPLevel, line, nil)
	}
	return len(p), nil
}
