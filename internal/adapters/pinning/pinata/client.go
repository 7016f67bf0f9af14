// Package pinata provides a client for the Pinata pinning service
package pinata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	perr "bluerail/internal/platform/errors"
	"bluerail/internal/platform/logger"
)

const (
	baseURLDefault   = "https://api.pinata.cloud"
	uploadURLDefault = "https://uploads.pinata.cloud"
	gatewayDefault   = "https://gateway.pinata.cloud"
	defaultTimeout   = 120 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UploadURL string
	Gateway   string
	Timeout   time.Duration

	// JWT enables the v3 API including content-addressed dedup queries
	JWT string

	// Legacy key pair falls back to the v2 pin endpoint, no dedup
	APIKey    string
	APISecret string
}

// Client talks to Pinata with whichever credential scheme is configured
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UploadURL == "" {
		o.UploadURL = uploadURLDefault
	}
	if o.Gateway == "" {
		o.Gateway = gatewayDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("pinata"),
		now:  time.Now,
	}
}

// Configured reports whether any credential scheme is available
func (c *Client) Configured() bool {
	return c.opts.JWT != "" || (c.opts.APIKey != "" && c.opts.APISecret != "")
}

// Mode names the active credential scheme for startup logs
func (c *Client) Mode() string {
	switch {
	case c.opts.JWT != "":
		return "jwt"
	case c.opts.APIKey != "" && c.opts.APISecret != "":
		return "legacy-keys"
	default:
		return "none"
	}
}

// GatewayURL returns the public gateway URL for a CID
func (c *Client) GatewayURL(cid string) string {
	return strings.TrimRight(c.opts.Gateway, "/") + "/ipfs/" + cid
}

// HasCID reports whether Pinata already holds content for the given CID.
// Only the v3 API can answer this, so legacy credentials always report false
func (c *Client) HasCID(ctx context.Context, cid string) (bool, error) {
	if c.opts.JWT == "" {
		return false, nil
	}

	u := c.opts.BaseURL + "/v3/files/public?cid=" + url.QueryEscape(cid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.JWT)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata dedup query failed")
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("cid", cid).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("pinata dedup response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, perr.Upstreamf("pinata dedup query status %s", resp.Status)
	}

	var out struct {
		Data struct {
			Files []json.RawMessage `json:"files"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata dedup decode failed")
	}
	return len(out.Data.Files) > 0, nil
}

// Upload pins the file at path under name and returns the CID Pinata assigned.
// The remote CID is authoritative even when it differs from a locally computed one
func (c *Client) Upload(ctx context.Context, path, name string) (string, error) {
	if !c.Configured() {
		return "", perr.NotConfiguredf("pinata credentials missing")
	}
	if c.opts.JWT != "" {
		return c.uploadV3(ctx, path, name)
	}
	return c.uploadLegacy(ctx, path, name)
}

func (c *Client) uploadV3(ctx context.Context, path, name string) (string, error) {
	fields := map[string]string{
		"network": "public",
		"name":    name,
		"keyvalues": fmt.Sprintf(`{"source":"bluerail-pinning","uploaded_at":%q}`,
			c.now().UTC().Format(time.RFC3339)),
	}
	req, err := c.multipartRequest(ctx, c.opts.UploadURL+"/v3/files", path, name, fields)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.JWT)

	body, err := c.doUpload(req)
	if err != nil {
		return "", err
	}

	var out struct {
		Data struct {
			CID string `json:"cid"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata upload decode failed")
	}
	if out.Data.CID == "" {
		return "", perr.Upstreamf("pinata upload response missing cid")
	}
	return out.Data.CID, nil
}

func (c *Client) uploadLegacy(ctx context.Context, path, name string) (string, error) {
	fields := map[string]string{
		"pinataMetadata": fmt.Sprintf(`{"name":%q}`, name),
	}
	req, err := c.multipartRequest(ctx, c.opts.BaseURL+"/pinning/pinFileToIPFS", path, name, fields)
	if err != nil {
		return "", err
	}
	req.Header.Set("pinata_api_key", c.opts.APIKey)
	req.Header.Set("pinata_secret_api_key", c.opts.APISecret)

	body, err := c.doUpload(req)
	if err != nil {
		return "", err
	}

	var out struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata upload decode failed")
	}
	if out.IpfsHash == "" {
		return "", perr.Upstreamf("pinata upload response missing IpfsHash")
	}
	return out.IpfsHash, nil
}

// multipartRequest streams the file through an io.Pipe so large uploads
// never sit in memory whole
func (c *Client) multipartRequest(
	ctx context.Context, u, path, name string, fields map[string]string,
) (*http.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open %s", path)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer func() { _ = f.Close() }()
		var werr error
		defer func() { _ = pw.CloseWithError(werr) }()

		for k, v := range fields {
			if werr = mw.WriteField(k, v); werr != nil {
				return
			}
		}
		part, err := mw.CreateFormFile("file", filepath.Base(name))
		if err != nil {
			werr = err
			return
		}
		if _, werr = io.Copy(part, f); werr != nil {
			return
		}
		werr = mw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		_ = pr.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

func (c *Client) doUpload(req *http.Request) ([]byte, error) {
	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata upload failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("pinata upload response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, perr.Upstreamf("pinata upload status %s body %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Ping exercises the credential check endpoint, for readiness probes
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return perr.NotConfiguredf("pinata credentials missing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/data/testAuthentication", nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	if c.opts.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.JWT)
	} else {
		req.Header.Set("pinata_api_key", c.opts.APIKey)
		req.Header.Set("pinata_secret_api_key", c.opts.APISecret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata ping failed")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Upstreamf("pinata auth check status %s", resp.Status)
	}
	return nil
}
