// Package fetch downloads remote media into a staging directory via yt-dlp
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	perr "bluerail/internal/platform/errors"
	"bluerail/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultBin     = "yt-dlp"
	defaultTimeout = 5 * time.Minute
)

// Fetcher shells out to yt-dlp
type Fetcher struct {
	bin     string
	timeout time.Duration
	log     logger.Logger
}

// New builds a Fetcher. Empty bin falls back to yt-dlp on PATH
func New(bin string, timeout time.Duration) *Fetcher {
	if bin == "" {
		bin = defaultBin
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{bin: bin, timeout: timeout, log: *logger.Named("fetch")}
}

// Fetch downloads rawURL into stagingDir and returns the produced file's
// path and base name. yt-dlp picks the extension, so the output template
// leaves it a wildcard and we glob for the result
func (f *Fetcher) Fetch(ctx context.Context, rawURL, stagingDir string) (path, filename string, err error) {
	stem := "download-" + uuid.NewString()
	template := filepath.Join(stagingDir, stem+".%(ext)s")

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.bin, "-o", template, "--no-playlist", rawURL)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	matches, _ := filepath.Glob(filepath.Join(stagingDir, stem+".*"))

	if runErr != nil {
		// partial downloads are junk, sweep them
		for _, m := range matches {
			_ = os.Remove(m)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", "", perr.Upstreamf("fetch timed out after %s: %s", f.timeout, detail)
		}
		return "", "", perr.Upstreamf("fetch failed: %s", detail)
	}

	if len(matches) == 0 {
		return "", "", perr.Upstreamf("fetch produced no file for %s", rawURL)
	}
	if len(matches) > 1 {
		f.log.Warn().Strs("files", matches).Msg("fetch produced multiple files, using first")
	}

	path = matches[0]
	f.log.Info().
		Str("url", rawURL).
		Str("file", filepath.Base(path)).
		Dur("elapsed", time.Since(start)).
		Msg("fetch complete")
	return path, filepath.Base(path), nil
}

// String describes the fetcher configuration for startup logs
func (f *Fetcher) String() string {
	return fmt.Sprintf("%s (timeout %s)", f.bin, f.timeout)
}
