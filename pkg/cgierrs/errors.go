// Package cgierrs provides the error handling framework for the git CGI
// gateway. It defines error categories, codes, and typed errors so callers
// can map failures from the backend subprocess onto distinct outer-protocol
// responses instead of returning truncated or empty output.
package cgierrs

// ErrorCategory represents different categories of errors that can occur
// while talking to the CGI backend.
type ErrorCategory string

const (
	// CategoryProcess represents subprocess lifecycle errors.
	CategoryProcess ErrorCategory = "process"
	// CategoryProtocol represents CGI wire-protocol errors.
	CategoryProtocol ErrorCategory = "protocol"
	// CategoryTransport represents pipe I/O errors.
	CategoryTransport ErrorCategory = "transport"
)

// ErrorCode represents specific error codes within each category.
type ErrorCode string

// Process error codes.
const (
	ErrCodeProcessSpawnFailed ErrorCode = "process_spawn_failed"
	ErrCodeProcessExited      ErrorCode = "process_exited"
)

// Protocol error codes.
const (
	ErrCodeHeaderTooLarge    ErrorCode = "header_too_large"
	ErrCodeHeaderNotFound    ErrorCode = "header_not_found"
	ErrCodeHeaderParseFailed ErrorCode = "header_parse_failed"
)

// Transport error codes.
const (
	ErrCodeReadFailed  ErrorCode = "read_failed"
	ErrCodeWriteFailed ErrorCode = "write_failed"
)

// GatewayError represents the base interface for all gateway errors.
type GatewayError interface {
	error
	// Code returns the error code.
	Code() ErrorCode
	// Category returns the error category.
	Category() ErrorCategory
	// Unwrap returns the underlying error.
	Unwrap() error
	// Metadata returns additional error metadata.
	Metadata() map[string]any
}
