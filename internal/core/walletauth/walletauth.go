// Package walletauth verifies Ethereum wallet signatures over a
// timestamped challenge message
package walletauth

import (
	"fmt"
	"strings"
	"time"

	perr "bluerail/internal/platform/errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// MaxDrift bounds how far a signed timestamp may sit from server time
const MaxDrift = 5 * time.Minute

const messageHeader = "Authorize Blue Railroad pinning"

// Message returns the canonical challenge a client must sign for
// the given millisecond timestamp
func Message(timestampMs int64) string {
	return fmt.Sprintf("%s\nTimestamp: %d", messageHeader, timestampMs)
}

// Verifier checks signatures against a wallet allowlist
type Verifier struct {
	allow map[string]struct{}

	now func() time.Time // seam
}

// New builds a Verifier. Allowlist entries are trimmed and lowercased,
// blanks are dropped
func New(wallets []string) *Verifier {
	allow := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			allow[w] = struct{}{}
		}
	}
	return &Verifier{allow: allow, now: time.Now}
}

// Allowed returns the number of allowlisted wallets
func (v *Verifier) Allowed() int { return len(v.allow) }

// Verify recovers the wallet that signed the challenge for timestampMs and
// checks it against the allowlist. The recovered address is returned even on
// membership failures so callers can log who knocked
func (v *Verifier) Verify(signatureHex string, timestampMs int64) (string, error) {
	nowMs := v.now().UnixMilli()
	drift := nowMs - timestampMs
	if drift < 0 {
		drift = -drift
	}
	if drift > MaxDrift.Milliseconds() {
		return "", perr.Unauthorizedf(
			"timestamp too old or too far in future (drift: %ds, max: %ds)",
			drift/1000, int64(MaxDrift/time.Second))
	}

	addr, err := Recover(signatureHex, timestampMs)
	if err != nil {
		return "", perr.Unauthorizedf("invalid signature: %v", err)
	}

	if len(v.allow) == 0 {
		return addr, perr.Unauthorizedf("no authorized wallets configured")
	}
	if _, ok := v.allow[strings.ToLower(addr)]; !ok {
		return addr, perr.Unauthorizedf("wallet %s is not authorized", addr)
	}
	return addr, nil
}

// Recover returns the EIP-55 address that produced signatureHex over the
// canonical challenge for timestampMs
func Recover(signatureHex string, timestampMs int64) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", err
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	// wallets emit v as 27/28, secp256k1 wants 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	msg := Message(timestampMs)
	hash := crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))

	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
