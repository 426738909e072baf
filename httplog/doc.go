// Package httplog holds the HTTP middlewares that feed the logging package:
// the access logger, a verbose request/response dumper, the error channel
// with its logging stage, panic recovery and request metrics.
//
// All middlewares have the func(http.Handler) http.Handler shape used by chi.
package httplog
