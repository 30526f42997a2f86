package testutil

import "io"

// ChunkReader serves data in a scripted sequence of piece sizes, simulating
// a pipe that delivers reads in arbitrary fragments. Once the script is
// exhausted the remaining data is served in single reads capped by the
// caller's buffer.
type ChunkReader struct {
	data  []byte
	sizes []int
	step  int
}

// NewChunkReader creates a reader over data that returns at most sizes[i]
// bytes from the i-th Read call.
func NewChunkReader(data []byte, sizes ...int) *ChunkReader {
	return &ChunkReader{data: data, sizes: sizes}
}

// Read implements io.Reader.
func (r *ChunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}

	n := len(r.data)
	if r.step < len(r.sizes) && r.sizes[r.step] < n {
		n = r.sizes[r.step]
	}
	if len(p) < n {
		n = len(p)
	}
	r.step++

	copy(p, r.data[:n])
	r.data = r.data[n:]

	return n, nil
}
