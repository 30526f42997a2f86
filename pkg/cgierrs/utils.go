package cgierrs

import "errors"

// CodeOf returns the gateway error code of err, or the empty string when err
// is not a gateway error.
func CodeOf(err error) ErrorCode {
	var ge GatewayError
	if errors.As(err, &ge) {
		return ge.Code()
	}

	return ""
}

// IsSpawnFailure reports whether err indicates the backend executable could
// not be started.
func IsSpawnFailure(err error) bool {
	return CodeOf(err) == ErrCodeProcessSpawnFailed
}

// IsHeaderTooLarge reports whether err indicates the backend exceeded the
// configured maximum header size before emitting a header terminator.
func IsHeaderTooLarge(err error) bool {
	return CodeOf(err) == ErrCodeHeaderTooLarge
}

// IsHeaderNotFound reports whether err indicates the backend closed stdout
// before emitting a header terminator.
func IsHeaderNotFound(err error) bool {
	return CodeOf(err) == ErrCodeHeaderNotFound
}

// IsHeaderParseFailure reports whether err indicates malformed header lines.
func IsHeaderParseFailure(err error) bool {
	return CodeOf(err) == ErrCodeHeaderParseFailed
}

// IsProtocolViolation reports whether err belongs to the protocol category.
func IsProtocolViolation(err error) bool {
	var ge GatewayError
	if errors.As(err, &ge) {
		return ge.Category() == CategoryProtocol
	}

	return false
}
