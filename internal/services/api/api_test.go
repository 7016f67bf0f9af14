package api_test

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-chi/chi/v5"

	"bluerail/internal/core/walletauth"
	"bluerail/internal/platform/config"
	"bluerail/internal/platform/logger"
	phttp "bluerail/internal/platform/net/http"

	"bluerail/internal/services/api"
)

// fakeKubo answers the pin/add calls the mounted API makes
type fakeKubo struct {
	srv  *httptest.Server
	pins []string
}

func newFakeKubo(t *testing.T) *fakeKubo {
	t.Helper()
	k := &fakeKubo{}
	k.srv = httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v0/pin/add"):
			cid := r.URL.Query().Get("arg")
			k.pins = append(k.pins, cid)
			fmt.Fprintf(w, `{"Pins":[%q]}`+"\n", cid)
		case strings.HasPrefix(r.URL.Path, "/api/v0/version"):
			fmt.Fprint(w, `{"Version":"0.29.0"}`)
		default:
			w.WriteHeader(stdhttp.StatusInternalServerError)
		}
	}))
	t.Cleanup(k.srv.Close)
	return k
}

func signHeaders(t *testing.T, req *stdhttp.Request) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	ts := time.Now().UnixMilli()
	msg := walletauth.Message(ts)
	hash := crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req.Header.Set("X-Signature", hexutil.Encode(sig))
	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", ts))
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// Mount reads the pinning and auth keys from the root env namespace, the
// service-prefixed view only carries the HTTP surface knobs
func TestMount_RootScopedBackendKeys(t *testing.T) {
	kubo := newFakeKubo(t)

	t.Setenv("PINATA_JWT", "test-jwt")
	t.Setenv("IPFS_API_URL", kubo.srv.URL)
	t.Setenv("STAGING_DIR", t.TempDir())

	// the wallet is allowlisted before mounting, so sign first
	probe := httptest.NewRequest(stdhttp.MethodPost, "/api/v1/pins/cid", nil)
	wallet := signHeaders(t, probe)
	t.Setenv("AUTHORIZED_WALLETS", wallet)

	root := config.New()
	apiCfg := root.Prefix("BLUERAIL_API_")

	mux := chi.NewRouter()
	api.Mount(phttp.AdaptChi(mux), api.Options{
		Config:   apiCfg,
		Backends: root,
		Logger:   logger.Get(),
	})

	// meta is open
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/meta/health", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("health status %d body %s", rec.Code, rec.Body.String())
	}

	// pins require the signature headers
	rec = httptest.NewRecorder()
	noAuth := httptest.NewRequest(stdhttp.MethodPost, "/api/v1/pins/cid", strings.NewReader(`{"cid":"x"}`))
	noAuth.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, noAuth)
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d body %s", rec.Code, rec.Body.String())
	}

	// with a signature from the AUTHORIZED_WALLETS wallet the pin goes
	// through to the node configured by IPFS_API_URL
	body := `{"cid":"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"}`
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/v1/pins/cid", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", probe.Header.Get("X-Signature"))
	req.Header.Set("X-Timestamp", probe.Header.Get("X-Timestamp"))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("pin status %d body %s", rec.Code, rec.Body.String())
	}
	if len(kubo.pins) != 1 || !strings.HasPrefix(kubo.pins[0], "bafy") {
		t.Fatalf("expected one v1 pin on the configured node, got %v", kubo.pins)
	}

	var env struct {
		Data struct {
			Success       bool   `json:"success"`
			CID           string `json:"cid"`
			LocallyPinned bool   `json:"locally_pinned"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Data.Success || !env.Data.LocallyPinned {
		t.Fatalf("pin result = %+v", env.Data)
	}
}
