package cgi

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gitcgi/gitcgi/pkg/cgierrs"
)

// headerTerminator separates the CGI header section from the body.
var headerTerminator = []byte("\r\n\r\n")

// scanHeader reads stdout in chunkSize pieces until the header terminator is
// found, then splits the accumulated bytes into the raw header and the first
// fragment of the body. Total buffering is bounded by maxHeaderSize plus one
// chunk.
func scanHeader(stdout io.Reader, chunkSize, maxHeaderSize int) (header, remainder []byte, err error) {
	// Seeded with an empty placeholder so the straddle check is uniform from
	// the very first read.
	chunks := [][]byte{nil}
	scanned := 0

	for {
		if scanned > maxHeaderSize {
			return nil, nil, cgierrs.NewProtocolError(
				cgierrs.ErrCodeHeaderTooLarge,
				fmt.Sprintf("read %d bytes from backend without finding header boundary", scanned),
				nil,
				scanned,
			)
		}

		chunk, rerr := readChunk(stdout, chunkSize)
		if len(chunk) == 0 {
			var cause error
			if rerr != io.EOF {
				cause = rerr
			}

			return nil, nil, cgierrs.NewProtocolError(
				cgierrs.ErrCodeHeaderNotFound,
				"backend closed stdout before emitting a header boundary",
				cause,
				scanned,
			)
		}

		// Any terminator ending in an earlier chunk would have been found on
		// the iteration that read it, so only the junction with the newest
		// chunk and the newest chunk itself need searching.
		tail := tailBytes(chunks, len(headerTerminator)-1)
		chunks = append(chunks, chunk)

		if offset, found := findBoundary(tail, chunk); found {
			header, remainder = splitChunks(chunks, scanned+offset)

			return header, remainder, nil
		}

		scanned += len(chunk)
	}
}

// readChunk performs a single read of up to size bytes, retrying the
// degenerate (0, nil) case. Returns an empty chunk only at end of stream or
// on error.
func readChunk(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return buf[:n], err
		}
		if err != nil {
			return nil, err
		}
	}
}

// tailBytes collects the last n bytes of the accumulated chunks. The tail
// may span several chunks when reads were smaller than the terminator.
func tailBytes(chunks [][]byte, n int) []byte {
	out := make([]byte, 0, n)
	for i := len(chunks) - 1; i >= 0 && len(out) < n; i-- {
		c := chunks[i]
		take := n - len(out)
		if take > len(c) {
			take = len(c)
		}
		out = append(append(make([]byte, 0, n), c[len(c)-take:]...), out...)
	}

	return out
}

// findBoundary searches for the header terminator, first across the junction
// of the accumulated tail and the new chunk, then within the new chunk
// alone. The junction window concatenates the last up-to-3 scanned bytes
// with the first up-to-3 new bytes: six bytes cover every way the 4-byte
// terminator can straddle a read edge (1-3 bytes before it, the complement
// after).
//
// The returned offset is relative to the start of the new chunk; a negative
// offset means the terminator straddles the edge and starts within
// previously scanned bytes.
func findBoundary(tail, next []byte) (offset int, found bool) {
	if len(tail) > len(headerTerminator)-1 {
		tail = tail[len(tail)-(len(headerTerminator)-1):]
	}
	head := next
	if len(head) > len(headerTerminator)-1 {
		head = head[:len(headerTerminator)-1]
	}

	window := make([]byte, 0, len(tail)+len(head))
	window = append(window, tail...)
	window = append(window, head...)

	if idx := bytes.Index(window, headerTerminator); idx >= 0 {
		return idx - len(tail), true
	}

	if idx := bytes.Index(next, headerTerminator); idx >= 0 {
		return idx, true
	}

	return 0, false
}

// splitChunks partitions the accumulated chunks around the terminator
// starting at the given offset into the scanned stream. The raw header gets
// a synthetic trailing CRLF so line parsing can assume every line is
// CRLF-terminated even when the terminator was split across reads. The
// remainder always begins within the final chunk: the terminator's last byte
// is by construction part of the newest read.
func splitChunks(chunks [][]byte, headerEnd int) (header, remainder []byte) {
	var buf bytes.Buffer
	written := 0
	for _, c := range chunks {
		if written+len(c) <= headerEnd {
			buf.Write(c)
			written += len(c)

			continue
		}

		buf.Write(c[:headerEnd-written])

		break
	}
	buf.WriteString("\r\n")

	final := chunks[len(chunks)-1]
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	bodyStart := headerEnd + len(headerTerminator) - (total - len(final))

	return buf.Bytes(), final[bodyStart:]
}
