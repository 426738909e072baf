package httplog

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	bodyKey
)

// WithUserID attaches the authenticated user's id. Authentication middleware
// calls it; the access and error loggers read it back.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id set by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// CaptureBody keeps the first max bytes of each request body in the request
// context so the error logger can report it after the handler consumed it.
// The handler still sees the full body.
func CaptureBody(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, captureRequestBody(r, max))
		})
	}
}

func captureRequestBody(r *http.Request, max int64) *http.Request {
	if _, ok := r.Context().Value(bodyKey).(string); ok {
		return r
	}
	if r.Body == nil || r.Body == http.NoBody || max <= 0 {
		return r
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, max))
	if err != nil {
		return r
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	return r.WithContext(context.WithValue(r.Context(), bodyKey, string(head)))
}

func capturedBody(r *http.Request) string {
	body, _ := r.Context().Value(bodyKey).(string)
	return body
}
