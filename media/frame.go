// Package media defines the canonical frame types that cross the boundary
// between the host application and the network transport engine, along with
// the pure buffer-geometry functions (sizes, strides, format names) used by
// both the receive and send paths.
package media

// VideoFrame is a single uncompressed video picture. Data is exclusively
// owned by the holder: capture deep-copies the native payload before a
// frame is returned, so no frame ever aliases an engine-owned buffer.
type VideoFrame struct {
	Width       int
	Height      int
	FrameRateN  int
	FrameRateD  int
	Timecode    int64
	PixelFormat PixelFormat
	Stride      int // bytes per row of the primary plane
	Data        []byte
}

// AudioFrame is one block of 32-bit floating-point samples. Data length is
// always exactly Channels * Samples * 4 bytes; a mismatch is rejected at
// construction, never truncated.
type AudioFrame struct {
	SampleRate int
	Channels   int
	Samples    int
	Timecode   int64
	Data       []byte
}

// MetadataFrame carries a UTF-8 text payload with a stream timecode.
type MetadataFrame struct {
	Timecode int64
	Data     string
}

// UnitType tags the variant carried by a Unit.
type UnitType int

// Unit variants. UnitNone means the capture timed out with nothing to
// deliver; UnitError means the engine reported a failure. The two are kept
// distinct so callers can apply different retry policies.
const (
	UnitNone UnitType = iota
	UnitVideo
	UnitAudio
	UnitMetadata
	UnitError
)

// String returns the variant name for logging.
func (t UnitType) String() string {
	switch t {
	case UnitNone:
		return "none"
	case UnitVideo:
		return "video"
	case UnitAudio:
		return "audio"
	case UnitMetadata:
		return "metadata"
	case UnitError:
		return "error"
	default:
		return "invalid"
	}
}

// Unit is the tagged result of a single capture poll. Exactly one of the
// frame pointers is non-nil, matching Type; UnitNone and UnitError carry
// no payload.
type Unit struct {
	Type     UnitType
	Video    *VideoFrame
	Audio    *AudioFrame
	Metadata *MetadataFrame
}
