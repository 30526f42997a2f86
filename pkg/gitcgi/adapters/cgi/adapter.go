// Package cgi provides the CGI transport adapter for the git gateway.
// The adapter manages the lifecycle of a git http-backend subprocess,
// pumping the request body into its stdin while incrementally scanning its
// stdout for the CGI header/body boundary.
package cgi

import (
	"context"
	"io"

	"github.com/go-logr/logr"

	"github.com/gitcgi/gitcgi/pkg/gitcgi/options"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// Adapter implements ports.Transport using a git http-backend subprocess.
type Adapter struct {
	opts *options.BackendOptions
	log  logr.Logger
}

// Verify interface compliance at compile time.
var _ ports.Transport = (*Adapter)(nil)

// NewAdapter creates a new CGI transport adapter. A zero-value options
// struct (or nil) yields the default tuning.
func NewAdapter(opts *options.BackendOptions, log logr.Logger) *Adapter {
	if opts == nil {
		opts = &options.BackendOptions{}
	}

	return &Adapter{
		opts: opts,
		log:  log.WithName("cgi-transport"),
	}
}

// Run launches the backend, feeds it the request body, and returns the
// parsed response head plus the streaming body.
//
// The input pump runs concurrently with the header scan: OS pipes have
// bounded buffers, so writing the full request body before reading any
// stdout can deadlock against a backend that starts emitting output before
// it has consumed all of its input.
func (a *Adapter) Run(ctx context.Context, env ports.Environ, body io.Reader) (*ports.Response, error) {
	proc, err := a.spawn(ctx, env)
	if err != nil {
		return nil, err
	}

	go a.pumpInput(proc.stdin, body, declaredLength(env))

	chunkSize := a.opts.EffectiveChunkSize()

	header, remainder, err := scanHeader(proc.stdout, chunkSize, a.opts.EffectiveMaxHeaderSize())
	if err != nil {
		proc.kill()
		_ = proc.wait()

		return nil, err
	}

	head, err := parseHead(header)
	if err != nil {
		proc.kill()
		_ = proc.wait()

		return nil, err
	}

	return &ports.Response{
		Head: head,
		Body: newBodyStream(proc, remainder, chunkSize, a.log),
	}, nil
}
