// Package cidx normalizes and computes IPFS content identifiers
package cidx

import (
	"crypto/sha256"
	"io"
	"os"

	perr "bluerail/internal/platform/errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Valid reports whether s parses as a CID at all
func Valid(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}

// ToV1 normalizes a CID string to its v1 form
// v0 CIDs convert to v1 with the same codec and multihash, v1 CIDs pass
// through unchanged. Unparsable input is returned as-is with ok=false so
// callers can log and keep going
func ToV1(s string) (string, bool) {
	c, err := cid.Decode(s)
	if err != nil {
		return s, false
	}
	if c.Version() == 0 {
		return cid.NewCidV1(c.Type(), c.Hash()).String(), true
	}
	return c.String(), true
}

// SameContent reports whether two CID strings identify the same content
// after both sides are normalized to v1. Either side failing to parse
// falls back to a plain string compare
func SameContent(a, b string) bool {
	na, _ := ToV1(a)
	nb, _ := ToV1(b)
	return na == nb
}

// FromBytes computes a CIDv1 (raw codec, sha2-256) over data
func FromBytes(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "multihash")
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// FromFile computes a CIDv1 (raw codec, sha2-256) over a file's contents
// streaming, large uploads never land in memory whole
func FromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %s", path)
	}
	sum, err := multihash.Encode(h.Sum(nil), multihash.SHA2_256)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "multihash")
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
