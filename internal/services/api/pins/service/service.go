// Package service contains the pin orchestration workflows
package service

import (
	"context"
	"os"
	"strings"
	"unicode"

	"bluerail/internal/core/cidx"
	perr "bluerail/internal/platform/errors"
	"bluerail/internal/platform/logger"
	"bluerail/internal/services/api/pins/domain"

	"golang.org/x/text/unicode/norm"
)

// Service defines the service contract for pins
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	remote  domain.RemotePort
	local   domain.LocalPort
	fetcher domain.FetcherPort

	stagingDir string
	log        logger.Logger

	// spawn runs background work, swapped for a synchronous runner in tests
	spawn func(func())
}

// New creates a new pins service
func New(remote domain.RemotePort, local domain.LocalPort, fetcher domain.FetcherPort, stagingDir string) *Svc {
	if remote == nil {
		panic("pins.Service requires a non nil RemotePort")
	}
	if local == nil {
		panic("pins.Service requires a non nil LocalPort")
	}
	return &Svc{
		remote:     remote,
		local:      local,
		fetcher:    fetcher,
		stagingDir: stagingDir,
		log:        *logger.Named("pins"),
		spawn:      func(fn func()) { go fn() },
	}
}

// PinFile uploads the file at path to the remote provider, deduplicating by
// content, and replicates the pin to the local node in the background.
// Dedup is per request, two concurrent uploads of identical bytes may both
// reach the provider
func (s *Svc) PinFile(ctx context.Context, path, displayName string) (domain.PinResult, error) {
	var zero domain.PinResult

	// fail before touching the file, not after hashing 500MB
	if !s.remote.Configured() {
		return zero, perr.NotConfiguredf("remote pinning credentials missing")
	}

	name := cleanName(displayName)

	st, err := os.Stat(path)
	if err != nil {
		return zero, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "stat %s", path)
	}

	computed, err := cidx.FromFile(path)
	if err != nil {
		return zero, err
	}

	already, err := s.remote.HasCID(ctx, computed)
	if err != nil {
		// dedup is an optimization, a broken query must not block the pin
		s.log.Warn().Err(err).Str("cid", computed).Msg("dedup query failed, uploading anyway")
		already = false
	}

	if already {
		locally, lerr := s.local.IsPinned(ctx, computed)
		if lerr != nil {
			s.log.Warn().Err(lerr).Str("cid", computed).Msg("local pin check failed")
		}
		if !locally {
			s.replicate(ctx, computed)
		}
		s.log.Info().Str("cid", computed).Str("name", name).Msg("content already pinned remotely")
		return domain.PinResult{
			CID:           computed,
			IpfsURI:       "ipfs://" + computed,
			GatewayURL:    s.remote.GatewayURL(computed),
			Filename:      name,
			Size:          st.Size(),
			AlreadyPinned: true,
		}, nil
	}

	remoteCID, err := s.remote.Upload(ctx, path, name)
	if err != nil {
		return zero, err
	}

	// the provider may chunk into a DAG and report a different CID; theirs wins
	if !cidx.SameContent(computed, remoteCID) {
		s.log.Warn().
			Str("computed", computed).
			Str("remote", remoteCID).
			Msg("remote CID differs from computed CID, remote is authoritative")
	}

	s.replicate(ctx, remoteCID)

	s.log.Info().Str("cid", remoteCID).Str("name", name).Int64("size", st.Size()).Msg("pinned")
	return domain.PinResult{
		CID:           remoteCID,
		IpfsURI:       "ipfs://" + remoteCID,
		GatewayURL:    s.remote.GatewayURL(remoteCID),
		Filename:      name,
		Size:          st.Size(),
		AlreadyPinned: false,
	}, nil
}

// PinExisting pins content already on the IPFS network to the local node,
// synchronously
func (s *Svc) PinExisting(ctx context.Context, cid string) (domain.PinCIDResult, error) {
	v1, ok := cidx.ToV1(cid)
	if !ok {
		return domain.PinCIDResult{}, perr.Validationf("cid is not a valid content identifier")
	}
	if err := s.local.Pin(ctx, v1); err != nil {
		return domain.PinCIDResult{}, err
	}
	s.log.Info().Str("cid", v1).Msg("pinned existing content locally")
	return domain.PinCIDResult{Success: true, CID: v1, LocallyPinned: true}, nil
}

// PinFromURL downloads media into staging, pins it, and cleans up the
// staging file regardless of outcome
func (s *Svc) PinFromURL(ctx context.Context, rawURL string) (domain.PinResult, error) {
	if s.fetcher == nil {
		return domain.PinResult{}, perr.NotConfiguredf("fetcher not configured")
	}
	path, filename, err := s.fetcher.Fetch(ctx, rawURL, s.stagingDir)
	if err != nil {
		return domain.PinResult{}, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", path).Msg("staging cleanup failed")
		}
	}()
	return s.PinFile(ctx, path, filename)
}

// replicate pins cid on the local node without holding up the response.
// The context is detached so the pin survives the request ending
func (s *Svc) replicate(ctx context.Context, cid string) {
	bg := context.WithoutCancel(ctx)
	s.spawn(func() {
		if err := s.local.Pin(bg, cid); err != nil {
			s.log.Error().Err(err).Str("cid", cid).Msg("local replication failed")
			return
		}
		s.log.Info().Str("cid", cid).Msg("local replication complete")
	})
}

// cleanName normalizes a display name to NFC and strips control characters
func cleanName(name string) string {
	name = norm.NFC.String(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
}
