package httplog

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/Station-Manager/webservice/logging"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultMaxBody = 64 << 10

const redacted = "[REDACTED]"

var sensitiveHeaders = map[string]struct{}{
	"Authorization":       {},
	"Cookie":              {},
	"Set-Cookie":          {},
	"Proxy-Authorization": {},
	"X-Api-Key":           {},
}

type DumpOptions struct {
	// MaxBody bounds how many body bytes are logged per direction. Zero
	// means 64 KiB.
	MaxBody int64
}

func (o DumpOptions) maxBody() int64 {
	if o.MaxBody <= 0 {
		return defaultMaxBody
	}
	return o.MaxBody
}

// Dump logs every request and its response at debug level. It is a no-op
// unless log has debug enabled.
func Dump(log logging.Logger, opts DumpOptions) func(http.Handler) http.Handler {
	limit := opts.maxBody()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !log.Enabled(logging.DebugLevel) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			r = captureRequestBody(r, limit)
			reqLog := log.Child(logging.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"url":        requestURL(r),
			})

			reqLog.Log(logging.DebugLevel, "Incoming request", logging.Fields{
				"headers": redactHeaders(r.Header),
				"query":   r.URL.Query(),
				"body":    capturedBody(r),
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			body := &cappedBuffer{max: int(limit)}
			ww.Tee(body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.DebugWith().
				Int("status", status).
				Interface("headers", redactHeaders(ww.Header())).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("body", body.String()).
				Msg("Outgoing response")
		})
	}
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if _, ok := sensitiveHeaders[http.CanonicalHeaderKey(k)]; ok {
			out[k] = redacted
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// cappedBuffer keeps the first max bytes written and reports every write as
// complete so the tee never fails the response.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.max - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) String() string { return c.buf.String() }
