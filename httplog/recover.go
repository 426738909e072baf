package httplog

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// PanicError wraps a value recovered from a handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recover converts handler panics into PanicErrors and hands them to onErr.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recover(onErr ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				onErr(w, r, &PanicError{Value: rec, Stack: debug.Stack()})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
