// Package httpmiddleware provides the HTTP middleware chain used by the API
// server: panic recovery, CORS, rate limiting, request ids, logger injection,
// request logging, and OpenTelemetry instrumentation.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h so that the first listed middleware is the
// outermost one at request time.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
