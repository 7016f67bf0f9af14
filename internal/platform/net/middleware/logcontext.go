package middleware

import (
	"net/http"

	"bluerail/internal/platform/logger"
	pnet "bluerail/internal/platform/net"
)

// LogContext seeds the logger context with the request id so every
// request-scoped log line carries it. Must run after RequestID.
// The wallet field is added later by WalletAuth on authenticated routes
func LogContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()), "")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
