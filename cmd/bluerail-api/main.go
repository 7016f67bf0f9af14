// @title         Blue Railroad Pinning API
// @version       0.1.0
// @description   Wallet-gated IPFS pinning endpoints backed by Pinata

package main

import (
	"context"

	"bluerail/internal/platform/config"
	"bluerail/internal/platform/logger"
	phttp "bluerail/internal/platform/net/http"

	"bluerail/internal/services/api"
)

func main() {
	// http config lives under BLUERAIL_API_*, backend and auth keys
	// (PINATA_*, IPFS_*, STAGING_DIR, AUTHORIZED_WALLETS, FETCH_*) at root
	root := config.New()
	apiCfg := root.Prefix("BLUERAIL_API_")

	// bring up logging early
	l := logger.Get()

	// http server (reads BLUERAIL_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Backends:       root,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
