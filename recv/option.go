package recv

import (
	"log/slog"
	"time"
)

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger sets the session logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithScanTimeout bounds the discovery pass that Connect runs when
// resolving a source name. Defaults to DefaultScanTimeout.
func WithScanTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.scanTimeout = d
		}
	}
}

// WithSource binds the session to the named source during New instead of
// leaving it unconnected. Construction fails with the Connect error when
// the source cannot be resolved within the scan timeout.
func WithSource(name string) Option {
	return func(s *Session) {
		s.initialSource = name
	}
}
