// Package engine declares the contract with the external media-transport
// engine. The engine owns the wire protocol end to end (discovery
// announcements, handshake, compression, clock recovery); this module only
// ever sees the native structures declared here. Implementations live in
// the subpackages: loopback (in-process, pure Go) and ndi (cgo binding to
// the native SDK, build tag "ndi").
package engine

import "time"

// Source identifies a discoverable, named network endpoint offering a
// media stream. Sources are transient snapshot values: they are re-fetched
// on every discovery pass and never cached by identity.
type Source struct {
	Name    string
	Address string // optional, empty when the engine does not report one
}

// Engine creates the per-connection native handles. Constructing any
// handle performs the process-wide engine initialization, which happens at
// most once per process and is safe to trigger concurrently.
type Engine interface {
	// NewFinder allocates a network-scanning handle. Fails with
	// ErrInitFailed when the underlying transport runtime cannot start.
	NewFinder() (Finder, error)

	// NewReceiver allocates an unconnected receive handle.
	NewReceiver() (Receiver, error)

	// NewSender allocates an outbound handle advertised under name.
	NewSender(name string) (Sender, error)
}

// Finder is a native discovery handle. Not safe for concurrent use.
type Finder interface {
	// WaitForSources blocks until the known-source set changes or the
	// timeout elapses, reporting whether a change was observed.
	WaitForSources(timeout time.Duration) bool

	// Sources returns the current known-source snapshot.
	Sources() []Source

	Close() error
}

// Receiver is a native receive handle. Not safe for concurrent use; the
// Data slices inside a Capture result are only valid until the next
// Capture call on the same handle.
type Receiver interface {
	// Connect binds the handle to src, replacing any previous binding.
	Connect(src Source) error

	// Capture blocks up to timeout for the next unit of any kind. A
	// timeout is reported as FrameNone, not as an error.
	Capture(timeout time.Duration) (Capture, error)

	Close() error
}

// Sender is a native send handle. Not safe for concurrent use. Payload
// validation is the caller's responsibility; the engine trusts the
// declared geometry.
type Sender interface {
	SendVideo(p *VideoPacket) error
	SendAudio(p *AudioPacket) error
	SendMetadata(p *MetadataPacket) error
	Close() error
}

// FrameType tags a native capture result.
type FrameType int

// Native capture tags. FrameStatusChange signals a connection property
// change (format, tally) with no payload; receive sessions treat it as
// FrameNone.
const (
	FrameNone FrameType = iota
	FrameVideo
	FrameAudio
	FrameMetadata
	FrameStatusChange
	FrameError
)

// Capture is the tagged native result of one receive poll. At most one
// packet pointer is non-nil, matching Type.
type Capture struct {
	Type     FrameType
	Video    *VideoPacket
	Audio    *AudioPacket
	Metadata *MetadataPacket
}
