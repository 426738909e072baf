package httplog

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Station-Manager/webservice/logging"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// lines splits everything written so far into non-empty lines.
func (b *syncBuffer) lines() []string {
	var out []string
	for _, l := range strings.Split(b.String(), "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// records decodes every line as a JSON object.
func (b *syncBuffer) records(t testing.TB) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range b.lines() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &rec), "line: %s", l)
		out = append(out, rec)
	}
	return out
}

// newTestLogger returns an initialized logging service whose JSON console
// output lands in the returned buffer.
func newTestLogger(t testing.TB, level string) (*logging.Service, *syncBuffer) {
	t.Helper()
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.TimeZone = "UTC"
	cfg.ShutdownTimeoutMS = 100

	buf := &syncBuffer{}
	svc := &logging.Service{
		WorkingDir:    t.TempDir(),
		LoggingConfig: &cfg,
		Console:       buf,
	}
	require.NoError(t, svc.Initialize())
	t.Cleanup(func() { _ = svc.Close() })
	return svc, buf
}

// steppingClock returns start on the first call and start+step on every
// later call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	calls := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(step)
	}
}
