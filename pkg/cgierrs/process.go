package cgierrs

// ProcessError represents subprocess lifecycle errors.
type ProcessError struct {
	*BaseError
	path string
}

// NewProcessError creates a new process error.
func NewProcessError(
	code ErrorCode,
	message string,
	cause error,
	path string,
) *ProcessError {
	err := &ProcessError{
		BaseError: NewBaseError(CategoryProcess, code, message, cause),
		path:      path,
	}

	_ = err.WithMetadata("path", path)

	return err
}

// Path returns the executable path of the subprocess.
func (e *ProcessError) Path() string {
	return e.path
}

// ProtocolError represents CGI wire-protocol violations: a backend that
// produced an oversized header, closed stdout before the header terminator,
// or emitted header lines that do not parse.
type ProtocolError struct {
	*BaseError
	bytesRead int
}

// NewProtocolError creates a new protocol error.
func NewProtocolError(
	code ErrorCode,
	message string,
	cause error,
	bytesRead int,
) *ProtocolError {
	err := &ProtocolError{
		BaseError: NewBaseError(CategoryProtocol, code, message, cause),
		bytesRead: bytesRead,
	}

	_ = err.WithMetadata("bytes_read", bytesRead)

	return err
}

// BytesRead returns the number of backend output bytes consumed before the
// violation was detected.
func (e *ProtocolError) BytesRead() int {
	return e.bytesRead
}

// TransportError represents pipe I/O errors.
type TransportError struct {
	*BaseError
}

// NewTransportError creates a new transport error.
func NewTransportError(code ErrorCode, message string, cause error) *TransportError {
	return &TransportError{
		BaseError: NewBaseError(CategoryTransport, code, message, cause),
	}
}
