// Package options holds the configuration surface for the git CGI gateway.
// Tuning that was ambient process-wide state in earlier designs (chunk size,
// maximum header size) is explicit here so concurrent requests can run with
// independent settings.
package options

// Default tuning values. No well-formed CGI header section comes anywhere
// near DefaultMaxHeaderSize.
const (
	DefaultChunkSize     = 0x8000  // 32 KiB per pipe read/write
	DefaultMaxHeaderSize = 0x20000 // 128 KiB accumulated before giving up
)

// BackendOptions configures the CGI backend transport.
type BackendOptions struct {
	// GitPath overrides the git executable path (optional).
	// When nil the binary is resolved from PATH.
	GitPath *string

	// ChunkSize sets the pipe read/write granularity (optional).
	ChunkSize *int

	// MaxHeaderSize bounds the bytes accumulated while searching for the
	// header terminator (optional).
	MaxHeaderSize *int

	// Env adds extra environment entries to every request's CGI environment.
	Env map[string]string

	// StderrCallback is called with each stderr line from the backend.
	// When nil and InheritStderr is false, lines go to the adapter logger.
	StderrCallback func(string)

	// InheritStderr passes the backend's stderr through to the parent
	// process instead of draining it.
	InheritStderr bool
}

// EffectiveChunkSize returns the configured chunk size or the default.
func (o *BackendOptions) EffectiveChunkSize() int {
	if o != nil && o.ChunkSize != nil && *o.ChunkSize > 0 {
		return *o.ChunkSize
	}

	return DefaultChunkSize
}

// EffectiveMaxHeaderSize returns the configured header bound or the default.
func (o *BackendOptions) EffectiveMaxHeaderSize() int {
	if o != nil && o.MaxHeaderSize != nil && *o.MaxHeaderSize > 0 {
		return *o.MaxHeaderSize
	}

	return DefaultMaxHeaderSize
}
