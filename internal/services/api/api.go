// Package api provides the HTTP API for the application
package api

import (
	"time"

	"bluerail/internal/platform/config"
	"bluerail/internal/platform/logger"
	phttp "bluerail/internal/platform/net/http"

	"bluerail/internal/modkit"
	"bluerail/internal/modkit/httpkit"
	"bluerail/internal/modkit/module"
	"bluerail/internal/modkit/swaggerkit"

	"bluerail/internal/adapters/fetch"
	"bluerail/internal/adapters/pinning/ipfsnode"
	"bluerail/internal/adapters/pinning/pinata"
	"bluerail/internal/core/walletauth"

	metamod "bluerail/internal/services/api/meta/module"
	pinsmod "bluerail/internal/services/api/pins/module"
)

// Options are the API options
type Options struct {
	// Config is the service-scoped view (PORT, CORS_ORIGINS, SWAGGER, PROFILER)
	Config config.Conf
	// Backends is the root-scoped view carrying the pinning and auth keys:
	// PINATA_*, IPFS_*, STAGING_DIR, AUTHORIZED_WALLETS, FETCH_*
	Backends       config.Conf
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	cfg := opt.Config
	bk := opt.Backends
	log := opt.Logger

	// shared deps for modules
	deps := modkit.Deps{
		Cfg: cfg,
		Log: *log,
	}

	// pinning backends
	remote := pinata.NewClient(pinata.Options{
		JWT:       bk.MayString("PINATA_JWT", ""),
		APIKey:    bk.MayString("PINATA_API_KEY", ""),
		APISecret: bk.MayString("PINATA_SECRET_KEY", ""),
		Gateway:   bk.MayString("PINATA_GATEWAY", ""),
		Timeout:   bk.MayDuration("PINATA_TIMEOUT", 2*time.Minute),
	})
	local := ipfsnode.NewClient(ipfsnode.Options{
		BaseURL:    bk.MayString("IPFS_API_URL", "http://ipfs:5001"),
		PinTimeout: bk.MayDuration("IPFS_PIN_TIMEOUT", 0),
	})

	// url fetcher and upload staging
	fetcher := fetch.New(
		bk.MayString("FETCH_BIN", ""),
		bk.MayDuration("FETCH_TIMEOUT", 0),
	)
	staging := bk.MayString("STAGING_DIR", "/staging")

	// wallet signature auth over the pinning surface
	verifier := walletauth.New(bk.MayCSV("AUTHORIZED_WALLETS", nil))

	// log the backend wiring once at mount, never wallet values
	log.Info().
		Str("pinata_mode", remote.Mode()).
		Str("ipfs_api", local.BaseURL()).
		Str("staging_dir", staging).
		Str("fetcher", fetcher.String()).
		Int("authorized_wallets", verifier.Allowed()).
		Msg("api backends configured")
	if verifier.Allowed() == 0 {
		log.Warn().Msg("no authorized wallets configured, all pinning requests will be rejected")
	}

	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{
		Remote: remote,
		Local:  local,
	}))
	pins := pinsmod.New(deps, modkit.WithPorts(pinsmod.Ports{
		Remote:     remote,
		Local:      local,
		Fetcher:    fetcher,
		StagingDir: staging,
	}))

	// browser callers come from the cryptograss sites, wildcards per go-chi/cors
	corsOrigins := cfg.MayCSV("CORS_ORIGINS", []string{
		"https://cryptograss.live",
		"https://www.cryptograss.live",
		"https://*.hunter.cryptograss.live",
		"http://localhost:*",
	})

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(corsOrigins...), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		// register each module's ports under its own name (for cross-module lookups)
		module.Register(meta.Name(), meta.Ports())
		module.Register(pins.Name(), pins.Ports())

		// meta stays open for probes, every pin endpoint sits behind the
		// wallet signature gate
		meta.MountRoutes(api)
		httpkit.Protected(api, verifier, func(sec httpkit.Router) {
			pins.MountRoutes(sec)
		})
	})
}
