package httplog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Station-Manager/webservice/logging"
	"github.com/go-chi/chi/v5/middleware"
)

// HandlerFunc is an http handler that reports failure by returning an error
// instead of writing the response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler is one stage of the error channel.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Handle adapts fn to http.Handler, sending any returned error to onErr.
func Handle(fn HandlerFunc, onErr ErrorHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			onErr(w, r, err)
		}
	})
}

// LogErrors records err together with the request that produced it and then
// passes the same error to next.
func LogErrors(log logging.Logger, next ErrorHandler) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		request := logging.Fields{
			"method":  r.Method,
			"url":     requestURL(r),
			"headers": redactHeaders(r.Header),
			"query":   r.URL.Query(),
			"body":    capturedBody(r),
		}

		ev := log.ErrorWith().
			Err(err).
			Str("name", errorName(err)).
			Interface("request", request)
		if id := middleware.GetReqID(r.Context()); id != "" {
			ev = ev.Str("request_id", id)
		}
		if id, ok := UserIDFromContext(r.Context()); ok {
			ev = ev.Str("user_id", id)
		}
		var pe *PanicError
		if errors.As(err, &pe) {
			ev = ev.Str("panic_stack", string(pe.Stack))
		}
		ev.Msg(err.Error())

		if next != nil {
			next(w, r, err)
		}
	}
}

// RespondError is the terminal stage of the error channel. In production the
// body is the generic status text so internals never reach clients.
func RespondError(production bool) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status := http.StatusInternalServerError
		var sc StatusCoder
		if errors.As(err, &sc) {
			status = sc.StatusCode()
		}

		body := http.StatusText(status)
		if !production {
			body = err.Error()
		}
		http.Error(w, body, status)
	}
}

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string   { return e.Err.Error() }
func (e *StatusError) Unwrap() error   { return e.Err }
func (e *StatusError) StatusCode() int { return e.Status }

func errorName(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return "PanicError"
	}
	return fmt.Sprintf("%T", err)
}
