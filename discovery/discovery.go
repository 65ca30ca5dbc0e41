// Package discovery performs time-bounded scans for advertised sources on
// the network. Results are point-in-time snapshots: callers re-run Find on
// every poll and never cache sources by identity.
package discovery

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kvasirlabs/ndikit/engine"
)

// Source is the discoverable endpoint value handed to receive sessions.
type Source = engine.Source

// DefaultTimeout bounds a Find call when the caller passes no timeout.
const DefaultTimeout = time.Second

// Registry owns one native scanning handle for its lifetime. Like the
// sessions, it is single-owner: concurrent callers must serialize.
type Registry struct {
	log    *slog.Logger
	finder engine.Finder
	closed bool
}

// New establishes the network-scanning subsystem on the given engine. It
// fails when the transport runtime cannot start (engine.ErrInitFailed).
// If log is nil, slog.Default() is used.
func New(eng engine.Engine, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	finder, err := eng.NewFinder()
	if err != nil {
		return nil, fmt.Errorf("create finder: %w", err)
	}
	return &Registry{
		log:    log.With("component", "discovery"),
		finder: finder,
	}, nil
}

// Find blocks up to timeout waiting for an announcement batch, then
// returns the current known-source snapshot. A timeout with zero sources
// found is not an error: it returns an empty slice. timeout <= 0 selects
// DefaultTimeout.
func (r *Registry) Find(timeout time.Duration) ([]Source, error) {
	if r.closed {
		return nil, engine.ErrNotInitialized
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	changed := r.finder.WaitForSources(timeout)
	sources := r.finder.Sources()
	r.log.Debug("scan complete", "changed", changed, "sources", len(sources))
	return sources, nil
}

// Close releases the scanning handle. Idempotent; Find calls after Close
// fail with engine.ErrNotInitialized.
func (r *Registry) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.finder.Close()
}
