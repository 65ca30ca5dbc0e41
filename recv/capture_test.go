package recv

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kvasirlabs/ndikit/engine"
	"github.com/kvasirlabs/ndikit/media"
)

// scriptedEngine hands out a receiver that replays a fixed capture script,
// exercising the sizing and error paths the loopback engine never takes.
type scriptedEngine struct {
	rx *scriptedReceiver
}

func (e *scriptedEngine) NewFinder() (engine.Finder, error) { return nil, engine.ErrInitFailed }
func (e *scriptedEngine) NewReceiver() (engine.Receiver, error) {
	return e.rx, nil
}
func (e *scriptedEngine) NewSender(string) (engine.Sender, error) {
	return nil, engine.ErrInitFailed
}

type scriptedReceiver struct {
	script []func() (engine.Capture, error)
}

func (r *scriptedReceiver) Connect(engine.Source) error { return nil }
func (r *scriptedReceiver) Close() error                { return nil }
func (r *scriptedReceiver) Capture(time.Duration) (engine.Capture, error) {
	if len(r.script) == 0 {
		return engine.Capture{Type: engine.FrameNone}, nil
	}
	next := r.script[0]
	r.script = r.script[1:]
	return next()
}

func video(c engine.Capture) func() (engine.Capture, error) {
	return func() (engine.Capture, error) { return c, nil }
}

func newScripted(t *testing.T, script ...func() (engine.Capture, error)) *Session {
	t.Helper()
	s, err := New(&scriptedEngine{rx: &scriptedReceiver{script: script}})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCaptureVideoSizedFromFormatTable(t *testing.T) {
	t.Parallel()

	// No explicit size, known format, no stride: the format table decides.
	data := make([]byte, 12) // I420 4x2
	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameVideo,
		Video: &engine.VideoPacket{
			Width: 4, Height: 2, FourCC: uint32(media.FormatI420), Data: data,
		},
	}))

	unit, err := s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitVideo, unit.Type)
	require.Len(t, unit.Video.Data, 12)
	require.Equal(t, 4, unit.Video.Stride) // populated from the format minimum
}

func TestCaptureVideoHonorsPaddedStride(t *testing.T) {
	t.Parallel()

	// UYVY 4x2 padded to 16-byte rows: 32 bytes, not the minimal 16.
	data := make([]byte, 32)
	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameVideo,
		Video: &engine.VideoPacket{
			Width: 4, Height: 2, FourCC: uint32(media.FormatUYVY),
			Stride: 16, Data: data,
		},
	}))

	unit, err := s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitVideo, unit.Type)
	require.Len(t, unit.Video.Data, 32)
	require.Equal(t, 16, unit.Video.Stride)
}

func TestCaptureVideoFallbackForUnknownPacked422(t *testing.T) {
	t.Parallel()

	// Unknown FourCC, no explicit size, but the stride says two bytes per
	// pixel: the documented packed-4:2:2 estimate applies.
	data := make([]byte, 16)
	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameVideo,
		Video: &engine.VideoPacket{
			Width: 4, Height: 2, FourCC: 0xDEADBEEF, Stride: 8, Data: data,
		},
	}))

	unit, err := s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitVideo, unit.Type)
	require.Len(t, unit.Video.Data, 16)
}

func TestCaptureVideoUnknownFormatFailsLoudly(t *testing.T) {
	t.Parallel()

	// Unknown FourCC and a stride inconsistent with packed 4:2:2: sizing
	// must fail rather than guess.
	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameVideo,
		Video: &engine.VideoPacket{
			Width: 4, Height: 2, FourCC: 0xDEADBEEF, Stride: 12,
			Data: make([]byte, 64),
		},
	}))

	unit, err := s.Capture(time.Second)
	require.ErrorIs(t, err, media.ErrUnsupportedFormat)
	require.Equal(t, media.UnitError, unit.Type)

	// The failure must not close the session.
	unit, err = s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitNone, unit.Type)
}

func TestCaptureVideoShortPayloadRejected(t *testing.T) {
	t.Parallel()

	// UYVY 4x2 declares 16 bytes but the engine delivers only 10. A frame
	// shorter than stride*height must not be surfaced as video.
	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameVideo,
		Video: &engine.VideoPacket{
			Width: 4, Height: 2, FourCC: uint32(media.FormatUYVY),
			Stride: 8, DataSize: 16, Data: make([]byte, 10),
		},
	}))

	unit, err := s.Capture(time.Second)
	require.ErrorIs(t, err, media.ErrBufferSizeMismatch)
	require.Equal(t, media.UnitError, unit.Type)
	require.Nil(t, unit.Video)

	// The failure must not close the session.
	unit, err = s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitNone, unit.Type)
	require.Equal(t, int64(0), s.Stats().VideoFrames)
}

func TestCaptureVideoCopiesOutOfNativeBuffer(t *testing.T) {
	t.Parallel()

	native := make([]byte, 16)
	for i := range native {
		native[i] = byte(i)
	}
	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameVideo,
		Video: &engine.VideoPacket{
			Width: 4, Height: 2, FourCC: uint32(media.FormatUYVY),
			Stride: 8, DataSize: 16, Data: native,
		},
	}))

	unit, err := s.Capture(time.Second)
	require.NoError(t, err)

	// Simulate the engine recycling its buffer on the next capture.
	for i := range native {
		native[i] = 0xEE
	}
	require.Equal(t, byte(5), unit.Video.Data[5], "payload aliases the native buffer")
}

func TestCaptureAudioGeometryMismatch(t *testing.T) {
	t.Parallel()

	s := newScripted(t, video(engine.Capture{
		Type: engine.FrameAudio,
		Audio: &engine.AudioPacket{
			SampleRate: 48000, Channels: 2, Samples: 480,
			Data: make([]byte, 2*480*4-1),
		},
	}))

	unit, err := s.Capture(time.Second)
	require.ErrorIs(t, err, media.ErrBufferSizeMismatch)
	require.Equal(t, media.UnitError, unit.Type)
}

func TestCaptureEngineFailureKeepsSessionOpen(t *testing.T) {
	t.Parallel()

	transportErr := errors.New("link down")
	s := newScripted(t,
		func() (engine.Capture, error) { return engine.Capture{}, transportErr },
	)

	unit, err := s.Capture(time.Second)
	require.ErrorIs(t, err, transportErr)
	require.Equal(t, media.UnitError, unit.Type)

	unit, err = s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitNone, unit.Type)
}

func TestCaptureStatusChangeMapsToNone(t *testing.T) {
	t.Parallel()

	s := newScripted(t, video(engine.Capture{Type: engine.FrameStatusChange}))

	unit, err := s.Capture(time.Second)
	require.NoError(t, err)
	require.Equal(t, media.UnitNone, unit.Type)
}

func TestCaptureNativeErrorUnit(t *testing.T) {
	t.Parallel()

	s := newScripted(t, video(engine.Capture{Type: engine.FrameError}))

	unit, err := s.Capture(time.Second)
	require.Error(t, err)
	require.Equal(t, media.UnitError, unit.Type)
}
