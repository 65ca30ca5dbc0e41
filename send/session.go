// Package send owns the outbound side: a Session advertises one name on
// the network and validates every payload against its declared geometry
// before the engine ever sees it. Fan-out to subscribers is the engine's
// concern; a session has no connect step.
package send

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kvasirlabs/ndikit/engine"
	"github.com/kvasirlabs/ndikit/media"
)

// Default frame rate applied when a video send leaves the rate unset.
const (
	DefaultFrameRateN = 30
	DefaultFrameRateD = 1
)

// VideoOptions declares the geometry of a video payload. Width, Height and
// PixelFormat are mandatory; zero FrameRateN/FrameRateD select the
// defaults, zero AspectRatio lets the engine derive it from the geometry.
type VideoOptions struct {
	Width       int
	Height      int
	FrameRateN  int
	FrameRateD  int
	PixelFormat media.PixelFormat
	AspectRatio float32
	Timecode    int64
}

// Stats is a snapshot of session counters.
type Stats struct {
	VideoFrames    int64 `json:"videoFrames"`
	AudioFrames    int64 `json:"audioFrames"`
	MetadataFrames int64 `json:"metadataFrames"`
	BytesSent      int64 `json:"bytesSent"`
}

// Session owns one native send handle for its lifetime and releases it
// exactly once. Single-owner, like the receive session.
type Session struct {
	log    *slog.Logger
	tx     engine.Sender
	name   string
	closed bool

	videoFrames    atomic.Int64
	audioFrames    atomic.Int64
	metadataFrames atomic.Int64
	bytesSent      atomic.Int64
}

// New advertises name on the given engine and returns the session bound
// to it. If log is nil, slog.Default() is used.
func New(eng engine.Engine, name string, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	tx, err := eng.NewSender(name)
	if err != nil {
		return nil, fmt.Errorf("create sender %q: %w", name, err)
	}
	return &Session{
		log:  log.With("component", "send", "source", name),
		tx:   tx,
		name: name,
	}, nil
}

// Name returns the advertised source name.
func (s *Session) Name() string {
	return s.name
}

// SendVideo validates payload against the declared geometry and hands it
// to the engine. A payload whose length does not match the format tables
// exactly fails with media.ErrBufferSizeMismatch before any engine call —
// a malformed frame is never sent.
func (s *Session) SendVideo(payload []byte, opt VideoOptions) error {
	if s.closed {
		return engine.ErrNotInitialized
	}

	want, err := media.VideoBufferSize(opt.Width, opt.Height, opt.PixelFormat)
	if err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	if len(payload) != want {
		return fmt.Errorf("send video %dx%d %s: payload %d bytes, want %d: %w",
			opt.Width, opt.Height, opt.PixelFormat, len(payload), want,
			media.ErrBufferSizeMismatch)
	}
	stride, err := media.Stride(opt.Width, opt.PixelFormat)
	if err != nil {
		return fmt.Errorf("send video: %w", err)
	}

	rateN, rateD := opt.FrameRateN, opt.FrameRateD
	if rateN <= 0 || rateD <= 0 {
		rateN, rateD = DefaultFrameRateN, DefaultFrameRateD
	}

	err = s.tx.SendVideo(&engine.VideoPacket{
		Width:       opt.Width,
		Height:      opt.Height,
		FrameRateN:  rateN,
		FrameRateD:  rateD,
		FourCC:      uint32(opt.PixelFormat),
		Stride:      stride,
		Timecode:    opt.Timecode,
		AspectRatio: opt.AspectRatio,
		DataSize:    len(payload),
		Data:        payload,
	})
	if err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	s.videoFrames.Add(1)
	s.bytesSent.Add(int64(len(payload)))
	return nil
}

// SendAudio validates payload as exactly channels*samples*4 bytes of
// 32-bit float samples and hands it to the engine. The length check is a
// hard precondition, never auto-corrected.
func (s *Session) SendAudio(payload []byte, sampleRate, channels, samples int, timecode int64) error {
	if s.closed {
		return engine.ErrNotInitialized
	}

	want := media.AudioBufferSize(channels, samples)
	if len(payload) != want || channels <= 0 || samples <= 0 {
		return fmt.Errorf("send audio %dch x %d samples: payload %d bytes, want %d: %w",
			channels, samples, len(payload), want, media.ErrBufferSizeMismatch)
	}

	err := s.tx.SendAudio(&engine.AudioPacket{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
		Timecode:   timecode,
		Data:       payload,
	})
	if err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	s.audioFrames.Add(1)
	s.bytesSent.Add(int64(len(payload)))
	return nil
}

// SendMetadata sends a UTF-8 text unit. No size constraint applies.
func (s *Session) SendMetadata(text string, timecode int64) error {
	if s.closed {
		return engine.ErrNotInitialized
	}
	err := s.tx.SendMetadata(&engine.MetadataPacket{Timecode: timecode, Data: text})
	if err != nil {
		return fmt.Errorf("send metadata: %w", err)
	}
	s.metadataFrames.Add(1)
	s.bytesSent.Add(int64(len(text)))
	return nil
}

// SendTestPattern renders the packed-4:2:2 gradient test card and sends
// it. Zero dimensions select 1280x720.
func (s *Session) SendTestPattern(width, height, frameRateN, frameRateD int) error {
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	return s.SendVideo(media.TestPatternUYVY(width, height), VideoOptions{
		Width:       width,
		Height:      height,
		FrameRateN:  frameRateN,
		FrameRateD:  frameRateD,
		PixelFormat: media.FormatUYVY,
	})
}

// Stats returns a snapshot of the session counters. Safe to call from any
// goroutine.
func (s *Session) Stats() Stats {
	return Stats{
		VideoFrames:    s.videoFrames.Load(),
		AudioFrames:    s.audioFrames.Load(),
		MetadataFrames: s.metadataFrames.Load(),
		BytesSent:      s.bytesSent.Load(),
	}
}

// Close withdraws the advertisement and releases the native handle.
// Idempotent; subsequent sends fail with engine.ErrNotInitialized.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Info("closed",
		"video", s.videoFrames.Load(), "audio", s.audioFrames.Load(),
		"bytes", s.bytesSent.Load())
	return s.tx.Close()
}
