package recv

import "errors"

// Connect failures. Both are recoverable: the caller may retry once the
// source is expected to be announcing again.
var (
	// ErrSourceNotFound means discovery saw sources, but none matched the
	// requested name exactly.
	ErrSourceNotFound = errors.New("source not found")

	// ErrDiscoveryTimeout means the scan produced no announcements at all
	// before the connect window elapsed.
	ErrDiscoveryTimeout = errors.New("discovery produced no sources before timeout")
)
