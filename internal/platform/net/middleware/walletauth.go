package middleware

import (
	"net/http"
	"strconv"

	perr "bluerail/internal/platform/errors"
	"bluerail/internal/platform/logger"
	pnet "bluerail/internal/platform/net"
)

// Signature headers expected on every authenticated request
const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
)

// WalletVerifier is the seam the wallet auth service implements
type WalletVerifier interface {
	// Verify recovers the signing wallet from signature over the canonical
	// message for timestampMs and checks it against the allowlist
	Verify(signatureHex string, timestampMs int64) (wallet string, err error)
}

// WalletAuth rejects requests without a valid wallet signature.
// On success the recovered wallet address is stored on the request context
func WalletAuth(v WalletVerifier, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := pnet.RequestID(r.Context())

			sig := r.Header.Get(HeaderSignature)
			tsRaw := r.Header.Get(HeaderTimestamp)
			if sig == "" || tsRaw == "" {
				status, body := pnet.Error(
					perr.Unauthorizedf("missing %s or %s header", HeaderSignature, HeaderTimestamp), reqID)
				write(w, status, body)
				return
			}
			ts, err := strconv.ParseInt(tsRaw, 10, 64)
			if err != nil {
				status, body := pnet.Error(perr.Unauthorizedf("invalid %s header", HeaderTimestamp), reqID)
				write(w, status, body)
				return
			}

			wallet, err := verify(r, v, sig, ts)
			if err != nil {
				status, body := pnet.Error(err, reqID)
				write(w, status, body)
				return
			}

			ctx := pnet.WithWallet(r.Context(), wallet)
			// downstream log lines pick up the wallet via logger.C
			ctx = logger.WithRequest(ctx, reqID, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verify isolates the panic boundary around signature recovery
func verify(r *http.Request, v WalletVerifier, sig string, ts int64) (wallet string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.C(r.Context()).Error().Interface("panic", rec).Msg("wallet verification panicked")
			err = perr.PanicErrf("authentication failed")
		}
	}()
	return v.Verify(sig, ts)
}
