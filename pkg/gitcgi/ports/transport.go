// Package ports defines interfaces that the domain needs from infrastructure.
// These are "ports" in hexagonal architecture - contracts defined by
// domain needs, not by external systems.
package ports

import (
	"context"
	"io"
)

// Transport defines what the domain needs from a CGI backend transport.
// This abstracts the subprocess that speaks the CGI protocol over
// stdin/stdout.
type Transport interface {
	// Run launches the backend with the given environment, feeds it the
	// request body, and returns the parsed response head together with the
	// still-streaming body. The caller owns the returned body stream and
	// must drain it or close it.
	Run(ctx context.Context, env Environ, body io.Reader) (*Response, error)
}

// Response is what the backend hands back to the gateway: the parsed head
// plus the lazily-produced body.
type Response struct {
	Head ResponseHead
	Body BodyStream
}

// BodyStream is a finite, non-restartable sequence of body chunks.
//
// Next returns the next chunk, io.EOF once the backend has closed stdout and
// been reaped, or any other error as a terminal element when a mid-stream
// read fails. A returned chunk may be empty; an empty chunk is a valid,
// skippable element, not a termination signal. The consumer owns each chunk
// once yielded.
type BodyStream interface {
	Next() ([]byte, error)

	// Close releases the stream. If the backend has not exited yet it is
	// killed and reaped. Close is idempotent and safe after Next returned
	// io.EOF.
	Close() error
}
