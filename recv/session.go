// Package recv owns the receive side: a Session binds to at most one
// discovered source and turns the engine's native captures into owned,
// validated media units.
package recv

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kvasirlabs/ndikit/discovery"
	"github.com/kvasirlabs/ndikit/engine"
)

// Timeouts. DefaultScanTimeout bounds the discovery pass inside Connect;
// DefaultCaptureTimeout bounds a Capture call when the caller passes none.
const (
	DefaultScanTimeout    = 2 * time.Second
	DefaultCaptureTimeout = time.Second

	// scanSlice is the per-iteration wait inside the Connect discovery
	// loop, so a source announcing mid-window is matched promptly.
	scanSlice = 500 * time.Millisecond
)

// State is the session lifecycle phase.
type State int

// Session states. Closed is terminal.
const (
	StateCreated State = iota
	StateConnected
	StateClosed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Stats is a snapshot of session counters.
type Stats struct {
	VideoFrames    int64 `json:"videoFrames"`
	AudioFrames    int64 `json:"audioFrames"`
	MetadataFrames int64 `json:"metadataFrames"`
	BytesReceived  int64 `json:"bytesReceived"`
}

// Session owns one native receive handle for its lifetime and releases it
// exactly once. It is single-owner: at most one in-flight Connect, Capture
// or Close at a time; callers needing parallel streams create independent
// sessions.
type Session struct {
	log           *slog.Logger
	eng           engine.Engine
	rx            engine.Receiver
	state         State
	sourceName    string
	initialSource string
	scanTimeout   time.Duration

	videoFrames    atomic.Int64
	audioFrames    atomic.Int64
	metadataFrames atomic.Int64
	bytesReceived  atomic.Int64
}

// New allocates a receive session on the given engine. The session starts
// unconnected unless WithSource was given, in which case New also runs
// Connect and fails (releasing the handle) when the source does not
// resolve.
func New(eng engine.Engine, opts ...Option) (*Session, error) {
	s := &Session{
		log:         slog.Default(),
		eng:         eng,
		scanTimeout: DefaultScanTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "recv")

	rx, err := eng.NewReceiver()
	if err != nil {
		return nil, fmt.Errorf("create receiver: %w", err)
	}
	s.rx = rx

	if s.initialSource != "" {
		if err := s.Connect(s.initialSource); err != nil {
			s.rx.Close()
			return nil, err
		}
	}
	return s, nil
}

// Connect resolves target by re-running discovery with the session's scan
// timeout, matching by exact name equality, then binds the native handle
// to the matched source. Connecting while already connected replaces the
// existing binding. Fails with ErrDiscoveryTimeout when the scan yields
// nothing at all, ErrSourceNotFound when sources appear but none match.
func (s *Session) Connect(target string) error {
	if s.state == StateClosed {
		return engine.ErrNotInitialized
	}

	reg, err := discovery.New(s.eng, s.log)
	if err != nil {
		return fmt.Errorf("connect %q: %w", target, err)
	}
	defer reg.Close()

	deadline := time.Now().Add(s.scanTimeout)
	sawSources := false
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		sources, err := reg.Find(min(remaining, scanSlice))
		if err != nil {
			return fmt.Errorf("connect %q: %w", target, err)
		}
		if len(sources) > 0 {
			sawSources = true
		}
		for _, src := range sources {
			if src.Name != target {
				continue
			}
			if err := s.rx.Connect(src); err != nil {
				return fmt.Errorf("connect %q: %w", target, err)
			}
			s.state = StateConnected
			s.sourceName = src.Name
			s.log.Info("connected", "source", src.Name, "address", src.Address)
			return nil
		}
	}

	if !sawSources {
		return fmt.Errorf("connect %q: %w", target, ErrDiscoveryTimeout)
	}
	return fmt.Errorf("connect %q: %w", target, ErrSourceNotFound)
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// SourceName returns the name of the connected source, or "" before the
// first successful Connect.
func (s *Session) SourceName() string {
	return s.sourceName
}

// Stats returns a snapshot of the session counters. Safe to call from any
// goroutine.
func (s *Session) Stats() Stats {
	return Stats{
		VideoFrames:    s.videoFrames.Load(),
		AudioFrames:    s.audioFrames.Load(),
		MetadataFrames: s.metadataFrames.Load(),
		BytesReceived:  s.bytesReceived.Load(),
	}
}

// Close releases the native handle. Idempotent; subsequent Connect and
// Capture calls fail with engine.ErrNotInitialized.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.log.Info("closed", "source", s.sourceName,
		"video", s.videoFrames.Load(), "audio", s.audioFrames.Load())
	return s.rx.Close()
}
