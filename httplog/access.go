package httplog

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// DefaultSkipPrefixes are paths never access-logged. Health checks are handled
// separately: they are only suppressed while they succeed.
var DefaultSkipPrefixes = []string{"/favicon.ico", "/metrics"}

const (
	placeholder = "-"
	unknownAddr = "unknown"
	isoLayout   = "2006-01-02T15:04:05.000Z07:00"
)

type AccessOptions struct {
	// Production selects the JSON line format.
	Production bool
	// SkipPrefixes replaces DefaultSkipPrefixes when non-nil.
	SkipPrefixes []string
	// ClientIP resolves the client address, typically from proxy headers.
	// When it is nil or returns "", the socket peer address is used.
	ClientIP func(r *http.Request) string
	Now      func() time.Time
}

// AccessLog writes one line to out for every completed request that is not
// suppressed. Out is usually logging.Service.Stream().
func AccessLog(out io.Writer, opts AccessOptions) func(http.Handler) http.Handler {
	skip := opts.SkipPrefixes
	if skip == nil {
		skip = DefaultSkipPrefixes
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if suppressed(r.URL.Path, status, skip) {
				return
			}

			end := now()
			e := accessEntry{
				method:        r.Method,
				url:           requestURL(r),
				status:        status,
				responseTime:  formatMillis(end.Sub(start)),
				contentLength: contentLength(ww),
				ip:            clientAddr(r, opts.ClientIP),
			}
			if opts.Production {
				e.userAgent = orPlaceholder(r.UserAgent())
				e.requestID = orPlaceholder(middleware.GetReqID(r.Context()))
				userID, _ := UserIDFromContext(r.Context())
				e.userID = orPlaceholder(userID)
				_, _ = out.Write(e.json(end))
				return
			}
			_, _ = out.Write(e.text())
		})
	}
}

// suppressed reports whether a request is left out of the access log: any
// path under a skip prefix, and health-like paths while they return 200.
func suppressed(path string, status int, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return strings.Contains(path, "health") && status == http.StatusOK
}

type accessEntry struct {
	method        string
	url           string
	status        int
	responseTime  string
	contentLength string
	ip            string
	userAgent     string
	requestID     string
	userID        string
}

// text renders ":method :url :status :response-time ms - :content-length :ip".
func (e *accessEntry) text() []byte {
	var b bytes.Buffer
	b.WriteString(e.method)
	b.WriteByte(' ')
	b.WriteString(e.url)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(e.status))
	b.WriteByte(' ')
	b.WriteString(e.responseTime)
	b.WriteString(" ms - ")
	b.WriteString(e.contentLength)
	b.WriteByte(' ')
	b.WriteString(e.ip)
	b.WriteByte('\n')
	return b.Bytes()
}

func (e *accessEntry) json(at time.Time) []byte {
	var b bytes.Buffer
	zl := zerolog.New(&b)
	zl.Log().
		Str("method", e.method).
		Str("url", e.url).
		Int("status", e.status).
		Str("responseTime", e.responseTime+"ms").
		Str("contentLength", e.contentLength).
		Str("ip", e.ip).
		Str("userAgent", e.userAgent).
		Str("requestId", e.requestID).
		Str("userId", e.userID).
		Str("timestamp", at.UTC().Format(isoLayout)).
		Send()
	return b.Bytes()
}

func requestURL(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// formatMillis renders d in milliseconds with up to three decimals.
func formatMillis(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	s := strconv.FormatFloat(ms, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func contentLength(ww middleware.WrapResponseWriter) string {
	if cl := ww.Header().Get("Content-Length"); cl != "" {
		return cl
	}
	if n := ww.BytesWritten(); n > 0 {
		return strconv.Itoa(n)
	}
	return placeholder
}

// clientAddr returns the resolver's answer, else the socket peer host, else
// unknownAddr.
func clientAddr(r *http.Request, resolve func(*http.Request) string) string {
	if resolve != nil {
		if ip := resolve(r); ip != "" {
			return ip
		}
	}
	if r.RemoteAddr == "" {
		return unknownAddr
	}
	// chi's RealIP stores a bare address without a port.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
