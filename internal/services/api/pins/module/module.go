// Package module wires pins into the API using modkit
package module

import (
	"net/http"

	modkit "bluerail/internal/modkit"
	"bluerail/internal/modkit/httpkit"
	str "bluerail/internal/platform/strings"
	"bluerail/internal/services/api/pins/domain"
	pinshttp "bluerail/internal/services/api/pins/http"
	pinssvc "bluerail/internal/services/api/pins/service"
)

// Ports are the adapters the pins module depends on, injected by the caller
type Ports struct {
	Remote  domain.RemotePort
	Local   domain.LocalPort
	Fetcher domain.FetcherPort

	StagingDir string
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc pinssvc.Service
}

// New constructs a pins module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("pins"), modkit.WithPrefix("/pins")}, opts...)...)

	p, ok := b.Ports.(Ports)
	if !ok {
		panic("pins module requires Ports{Remote, Local, Fetcher, StagingDir}")
	}
	svc := pinssvc.New(p.Remote, p.Local, p.Fetcher, p.StagingDir)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		pinshttp.Register(r, m.svc, p.StagingDir)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return adaptPinsPort{svc: m.svc} }
