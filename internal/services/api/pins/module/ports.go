package module

import (
	"context"

	pinsdom "bluerail/internal/services/api/pins/domain"
	pinssvc "bluerail/internal/services/api/pins/service"
)

// adaptPinsPort adapts the pins service to the domain port interface
type adaptPinsPort struct{ svc pinssvc.Service }

// PinFile implements the domain ServicePort interface
func (a adaptPinsPort) PinFile(ctx context.Context, path, name string) (pinsdom.PinResult, error) {
	return a.svc.PinFile(ctx, path, name)
}

// PinExisting implements the domain ServicePort interface
func (a adaptPinsPort) PinExisting(ctx context.Context, cid string) (pinsdom.PinCIDResult, error) {
	return a.svc.PinExisting(ctx, cid)
}

// PinFromURL implements the domain ServicePort interface
func (a adaptPinsPort) PinFromURL(ctx context.Context, rawURL string) (pinsdom.PinResult, error) {
	return a.svc.PinFromURL(ctx, rawURL)
}
