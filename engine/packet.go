package engine

// VideoPacket mirrors the native video frame structure. DataSize is the
// engine-reported payload length in bytes; zero means the engine supplied
// no explicit size and the receive path must size the buffer from the
// declared geometry instead. Data is engine-owned on capture.
type VideoPacket struct {
	Width       int
	Height      int
	FrameRateN  int
	FrameRateD  int
	FourCC      uint32
	Stride      int
	Timecode    int64
	AspectRatio float32
	DataSize    int
	Data        []byte
}

// AudioPacket mirrors the native audio frame structure: 32-bit float
// samples, Channels * Samples values. Data is engine-owned on capture.
type AudioPacket struct {
	SampleRate int
	Channels   int
	Samples    int
	Timecode   int64
	Data       []byte
}

// MetadataPacket mirrors the native metadata frame structure.
type MetadataPacket struct {
	Timecode int64
	Data     string
}
