package gitcgi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/gitcgi/gitcgi/pkg/gitcgi/adapters/cgi"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/options"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// Backend bundles the tuning options with the CGI transport.
// This facade is the primary constructor surface for library users.
type Backend struct {
	options   *options.BackendOptions
	transport ports.Transport
	log       logr.Logger
}

// New creates a Backend with the given options. A nil options struct yields
// the default tuning.
func New(opts *options.BackendOptions, log logr.Logger) *Backend {
	return &Backend{
		options:   opts,
		transport: cgi.NewAdapter(opts, log),
		log:       log,
	}
}

// Run executes one CGI request against the backend. Most callers should use
// Handler instead; Run is the low-level entry point for gateways that are
// not built on net/http.
func (b *Backend) Run(ctx context.Context, env ports.Environ, body io.Reader) (*ports.Response, error) {
	return b.transport.Run(ctx, env, body)
}

// Handler returns an http.Handler serving git smart HTTP requests for the
// repositories under projectRoot. userFn may be nil for anonymous access.
func (b *Backend) Handler(projectRoot string, userFn UserFunc) http.Handler {
	return NewHandler(b.transport, projectRoot, userFn, b.log)
}
