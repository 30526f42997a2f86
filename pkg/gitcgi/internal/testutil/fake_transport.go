// Package testutil provides fakes for hermetic gateway testing.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// FakeTransport simulates the CGI backend transport without spawning
// processes. It records the environment and request body of the last run and
// serves a scripted response.
type FakeTransport struct {
	mu sync.Mutex

	// Head is the response head returned by Run.
	Head ports.ResponseHead
	// Chunks are the body elements yielded by the response stream.
	Chunks [][]byte
	// RunErr, when set, fails Run outright.
	RunErr error
	// StreamErr, when set, terminates the body stream instead of io.EOF.
	StreamErr error

	// LastEnv and LastBody capture the most recent run.
	LastEnv  ports.Environ
	LastBody []byte
}

// Run implements ports.Transport.
func (f *FakeTransport) Run(_ context.Context, env ports.Environ, body io.Reader) (*ports.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RunErr != nil {
		return nil, f.RunErr
	}

	f.LastEnv = env
	if body != nil {
		data, _ := io.ReadAll(body)
		f.LastBody = data
	}

	return &ports.Response{
		Head: f.Head,
		Body: &fakeStream{chunks: f.Chunks, terminalErr: f.StreamErr},
	}, nil
}

// Verify interface compliance at compile time.
var _ ports.Transport = (*FakeTransport)(nil)

type fakeStream struct {
	chunks      [][]byte
	terminalErr error
	pos         int
	closed      bool
}

func (s *fakeStream) Next() ([]byte, error) {
	if s.closed || s.pos >= len(s.chunks) {
		if s.terminalErr != nil && !s.closed {
			return nil, s.terminalErr
		}

		return nil, io.EOF
	}

	chunk := s.chunks[s.pos]
	s.pos++

	return chunk, nil
}

func (s *fakeStream) Close() error {
	s.closed = true

	return nil
}
