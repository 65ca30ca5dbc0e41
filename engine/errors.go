package engine

import "errors"

var (
	// ErrInitFailed means the transport runtime could not start (missing
	// SDK, unsupported CPU). Fatal to the whole session tree; never
	// retried automatically.
	ErrInitFailed = errors.New("transport engine initialization failed")

	// ErrNotInitialized means an operation was attempted on a closed or
	// never-opened handle. This is a programmer error, not a transport
	// condition.
	ErrNotInitialized = errors.New("handle is closed or not initialized")
)
