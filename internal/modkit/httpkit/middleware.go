package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "bluerail/internal/platform/net/http"
	"bluerail/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// compose with your auth middleware as needed in main
// corsOrigins narrows cross-origin access, empty allows any origin
func CommonStack(corsOrigins ...string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.LogContext(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   corsOrigins,
			AllowCredentials: len(corsOrigins) > 0,
		}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),

		// no request timeout here: file uploads and url fetches can run
		// for minutes, modules that want one add middleware.Timeout themselves
	}
}

// WalletAuth wires the wallet signature middleware to the platform JSON writer
func WalletAuth(v middleware.WalletVerifier) func(http.Handler) http.Handler {
	// middleware expects write func(w http.ResponseWriter, status int, body any)
	// use phttp.JSON which matches that signature
	return middleware.WalletAuth(v, phttp.JSON)
}
