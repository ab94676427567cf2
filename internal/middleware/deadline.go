package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds the request context. Unlike chi's Timeout it never writes
// to the response itself; handlers report the expired context as their error.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
