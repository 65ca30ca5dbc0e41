package media

import "errors"

// Errors reported by the buffer-geometry functions and by send-side
// validation. Both are detected before any engine call is made: an unknown
// format is never sized by guesswork, and a mismatched payload is never
// handed to the transport.
var (
	ErrUnsupportedFormat  = errors.New("unsupported pixel format")
	ErrBufferSizeMismatch = errors.New("payload length does not match frame geometry")
)
