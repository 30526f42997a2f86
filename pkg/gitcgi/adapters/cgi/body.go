package cgi

import (
	"io"
	"sync"

	"github.com/go-logr/logr"

	"github.com/gitcgi/gitcgi/pkg/cgierrs"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// bodyStream is the lazy, non-restartable response body sequence. The first
// element is the remainder left over from the header scan; subsequent
// elements are fixed-size stdout reads. Once stdout is exhausted the backend
// is reaped exactly once, then Next reports io.EOF.
type bodyStream struct {
	mu sync.Mutex

	proc      *process
	chunkSize int
	log       logr.Logger

	remainder        []byte
	yieldedRemainder bool
	done             bool
	closed           bool
}

// Verify interface compliance at compile time.
var _ ports.BodyStream = (*bodyStream)(nil)

func newBodyStream(proc *process, remainder []byte, chunkSize int, log logr.Logger) *bodyStream {
	return &bodyStream{
		proc:      proc,
		chunkSize: chunkSize,
		log:       log,
		remainder: remainder,
	}
}

// Next returns the next body chunk, io.EOF at end of stream, or a transport
// error as the terminal element when a mid-stream read fails. The remainder
// is yielded first even when empty; an empty chunk is a valid element.
func (s *bodyStream) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.done {
		return nil, io.EOF
	}

	if !s.yieldedRemainder {
		s.yieldedRemainder = true
		chunk := s.remainder
		s.remainder = nil

		return chunk, nil
	}

	chunk, err := readChunk(s.proc.stdout, s.chunkSize)
	if len(chunk) > 0 {
		return chunk, nil
	}

	s.done = true

	if err != nil && err != io.EOF {
		// The backend is in an unknown state after a failed read; kill it so
		// the reap below cannot block forever.
		s.proc.kill()
		_ = s.proc.wait()

		return nil, cgierrs.NewTransportError(
			cgierrs.ErrCodeReadFailed,
			"backend stdout read failed mid-stream",
			err,
		)
	}

	if waitErr := s.proc.wait(); waitErr != nil {
		s.log.V(1).Info("backend exited with error after body", "error", waitErr.Error())
	}

	return nil, io.EOF
}

// Close releases the stream. A backend that has not exited yet is killed,
// then reaped. Close is idempotent and safe after Next returned io.EOF.
func (s *bodyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if !s.done {
		s.proc.kill()
	}
	_ = s.proc.wait()

	return nil
}
