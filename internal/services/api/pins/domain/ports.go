package domain

import "context"

// RemotePort is the pinning provider the service uploads to
type RemotePort interface {
	Configured() bool
	HasCID(ctx context.Context, cid string) (bool, error)
	Upload(ctx context.Context, path, name string) (string, error)
	GatewayURL(cid string) string
}

// LocalPort is the colocated IPFS node used for best-effort replication
type LocalPort interface {
	IsPinned(ctx context.Context, cid string) (bool, error)
	Pin(ctx context.Context, cid string) error
}

// FetcherPort downloads remote media into staging
type FetcherPort interface {
	Fetch(ctx context.Context, rawURL, stagingDir string) (path, filename string, err error)
}

// ServicePort defines the service contract for pins
type ServicePort interface {
	PinFile(ctx context.Context, path, displayName string) (PinResult, error)
	PinExisting(ctx context.Context, cid string) (PinCIDResult, error)
	PinFromURL(ctx context.Context, rawURL string) (PinResult, error)
}
