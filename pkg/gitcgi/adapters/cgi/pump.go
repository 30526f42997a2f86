package cgi

import (
	"io"
	"strconv"

	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// declaredLength parses CONTENT_LENGTH from the CGI environment.
// Absent or unparseable values are treated as zero.
func declaredLength(env ports.Environ) int64 {
	raw, ok := env[ports.EnvContentLength]
	if !ok {
		return 0
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}

	return n
}

// pumpInput copies exactly remaining bytes from the request body into the
// backend's stdin, then closes stdin so the backend finishes the request.
//
// It never reads past the declared length even when the underlying stream
// offers more; over-reading a streaming body can hang the connection.
// Write failures are swallowed: a backend that exits early breaks the stdin
// pipe, and the response path reports the real failure as a missing or
// malformed header instead.
func (a *Adapter) pumpInput(stdin io.WriteCloser, body io.Reader, remaining int64) {
	defer func() { _ = stdin.Close() }()

	if body == nil || remaining <= 0 {
		return
	}

	chunkSize := int64(a.opts.EffectiveChunkSize())
	buf := make([]byte, chunkSize)

	for remaining > 0 {
		limit := chunkSize
		if remaining < limit {
			limit = remaining
		}

		n, rerr := body.Read(buf[:limit])
		if n > 0 {
			remaining -= int64(n)
			if _, werr := stdin.Write(buf[:n]); werr != nil {
				a.log.V(1).Info("backend stdin write failed", "error", werr.Error())

				return
			}
		}
		if rerr != nil {
			return
		}
	}
}
