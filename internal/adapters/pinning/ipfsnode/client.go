// Package ipfsnode provides a client for a local Kubo node's HTTP API
package ipfsnode

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "bluerail/internal/platform/errors"
	"bluerail/internal/platform/logger"
)

const baseURLDefault = "http://ipfs:5001"

// Options configures the Client
type Options struct {
	BaseURL string

	// PinTimeout bounds a single Pin call, zero means no client timeout.
	// Pins of large DAGs routinely outlive request deadlines
	PinTimeout time.Duration
}

// Client issues Kubo RPC calls. All Kubo endpoints are POST
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	return &Client{
		http: &http.Client{Timeout: o.PinTimeout},
		opts: o,
		log:  *logger.Named("ipfsnode"),
		now:  time.Now,
	}
}

// BaseURL returns the configured node address, for startup logs
func (c *Client) BaseURL() string { return c.opts.BaseURL }

func (c *Client) post(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "ipfs new request failed")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "ipfs request failed")
	}
	return resp, nil
}

// IsPinned reports whether cid is pinned recursively on the node.
// Kubo answers pin/ls with a 500 for unpinned CIDs, so any non-2xx
// means "not pinned" rather than an error
func (c *Client) IsPinned(ctx context.Context, cid string) (bool, error) {
	q := url.Values{}
	q.Set("arg", cid)
	q.Set("type", "recursive")

	resp, err := c.post(ctx, "/api/v0/pin/ls", q)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, nil
	}

	var out struct {
		Keys map[string]struct {
			Type string `json:"Type"`
		} `json:"Keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUpstream, "ipfs pin ls decode failed")
	}
	return len(out.Keys) > 0, nil
}

// Pin pins cid recursively, streaming progress records as they arrive.
// Kubo emits newline-delimited JSON while it fetches blocks
func (c *Client) Pin(ctx context.Context, cid string) error {
	q := url.Values{}
	q.Set("arg", cid)
	q.Set("progress", "true")

	start := c.now()
	resp, err := c.post(ctx, "/api/v0/pin/add", q)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Upstreamf("ipfs pin add status %s body %s", resp.Status, strings.TrimSpace(string(body)))
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec struct {
			Pins     []string `json:"Pins"`
			Progress int      `json:"Progress"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			c.log.Debug().Str("line", line).Msg("ipfs pin progress unparsable")
			continue
		}
		if len(rec.Pins) > 0 {
			c.log.Info().
				Str("cid", cid).
				Dur("elapsed", c.now().Sub(start)).
				Msg("ipfs pin complete")
			continue
		}
		c.log.Debug().Str("cid", cid).Int("blocks", rec.Progress).Msg("ipfs pin progress")
	}
	if err := sc.Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "ipfs pin stream failed")
	}
	return nil
}

// Ping checks the node is reachable, for readiness probes
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.post(ctx, "/api/v0/version", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Upstreamf("ipfs version status %s", resp.Status)
	}
	return nil
}
