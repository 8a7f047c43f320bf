package middleware

import "net/http"

// Readiness reports whether the chat platform session can serve requests.
type Readiness interface {
	Ready() bool
}

// RequireReady answers 503 until r reports ready.
func RequireReady(r Readiness) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !r.Ready() {
				writeJSONError(w, http.StatusServiceUnavailable, "Bot is not ready yet. Please try again in a moment.", "not_ready")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
