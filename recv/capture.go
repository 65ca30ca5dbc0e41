package recv

import (
	"fmt"
	"time"

	"github.com/kvasirlabs/ndikit/engine"
	"github.com/kvasirlabs/ndikit/media"
)

// Capture blocks up to timeout for the next unit of any kind. Timeout is
// not an error: it yields a media.UnitNone unit and a nil error. An engine
// failure yields a media.UnitError unit alongside the wrapped error; the
// session stays open and the caller may retry. Every returned payload is a
// fresh copy — the native buffer is only valid until the next Capture call
// on this handle, so no result ever aliases it. timeout <= 0 selects
// DefaultCaptureTimeout.
func (s *Session) Capture(timeout time.Duration) (media.Unit, error) {
	if s.state == StateClosed {
		return media.Unit{}, engine.ErrNotInitialized
	}
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}

	c, err := s.rx.Capture(timeout)
	if err != nil {
		return media.Unit{Type: media.UnitError}, fmt.Errorf("capture: %w", err)
	}

	switch c.Type {
	case engine.FrameVideo:
		return s.captureVideo(c.Video)
	case engine.FrameAudio:
		return s.captureAudio(c.Audio)
	case engine.FrameMetadata:
		s.metadataFrames.Add(1)
		return media.Unit{
			Type: media.UnitMetadata,
			Metadata: &media.MetadataFrame{
				Timecode: c.Metadata.Timecode,
				Data:     c.Metadata.Data,
			},
		}, nil
	case engine.FrameError:
		return media.Unit{Type: media.UnitError}, fmt.Errorf("capture: engine reported failure")
	default:
		// FrameNone and FrameStatusChange both mean "nothing to deliver".
		return media.Unit{Type: media.UnitNone}, nil
	}
}

func (s *Session) captureVideo(p *engine.VideoPacket) (media.Unit, error) {
	format := media.PixelFormat(p.FourCC)
	size, err := videoPayloadSize(p, format)
	if err != nil {
		return media.Unit{Type: media.UnitError}, fmt.Errorf("capture video %dx%d %s: %w",
			p.Width, p.Height, format, err)
	}

	// A short payload cannot back a stride*height frame; reject it the
	// same way audio geometry mismatches are rejected.
	if len(p.Data) < size {
		return media.Unit{Type: media.UnitError},
			fmt.Errorf("capture video %dx%d %s: payload %d bytes, want %d: %w",
				p.Width, p.Height, format, len(p.Data), size, media.ErrBufferSizeMismatch)
	}

	data := make([]byte, size)
	copy(data, p.Data[:size])

	stride := p.Stride
	if stride == 0 {
		if minStride, err := media.Stride(p.Width, format); err == nil {
			stride = minStride
		}
	}

	s.videoFrames.Add(1)
	s.bytesReceived.Add(int64(size))
	return media.Unit{
		Type: media.UnitVideo,
		Video: &media.VideoFrame{
			Width:       p.Width,
			Height:      p.Height,
			FrameRateN:  p.FrameRateN,
			FrameRateD:  p.FrameRateD,
			Timecode:    p.Timecode,
			PixelFormat: format,
			Stride:      stride,
			Data:        data,
		},
	}, nil
}

// videoPayloadSize resolves the byte length of a captured video payload.
// Preference order: the engine's explicit size, then the format tables
// (honoring row padding when the engine reports a stride), and as a
// documented last resort the packed-4:2:2 width*height*2 estimate — which
// is only trusted when the reported stride is consistent with two bytes
// per pixel. Anything else fails rather than guessing a size the native
// side could read past.
func videoPayloadSize(p *engine.VideoPacket, format media.PixelFormat) (int, error) {
	if p.DataSize > 0 {
		return p.DataSize, nil
	}
	if format.Supported() {
		if p.Stride > 0 {
			return media.VideoBufferSizeWithStride(p.Width, p.Height, p.Stride, format)
		}
		return media.VideoBufferSize(p.Width, p.Height, format)
	}
	if p.Stride == p.Width*2 {
		return media.FallbackVideoBufferSize(p.Width, p.Height), nil
	}
	return 0, fmt.Errorf("no explicit size and no known layout: %w", media.ErrUnsupportedFormat)
}

func (s *Session) captureAudio(p *engine.AudioPacket) (media.Unit, error) {
	want := media.AudioBufferSize(p.Channels, p.Samples)
	if len(p.Data) != want {
		return media.Unit{Type: media.UnitError},
			fmt.Errorf("capture audio %dch x %d samples: payload %d bytes, want %d: %w",
				p.Channels, p.Samples, len(p.Data), want, media.ErrBufferSizeMismatch)
	}

	data := make([]byte, want)
	copy(data, p.Data)

	s.audioFrames.Add(1)
	s.bytesReceived.Add(int64(want))
	return media.Unit{
		Type: media.UnitAudio,
		Audio: &media.AudioFrame{
			SampleRate: p.SampleRate,
			Channels:   p.Channels,
			Samples:    p.Samples,
			Timecode:   p.Timecode,
			Data:       data,
		},
	}, nil
}
