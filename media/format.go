package media

import "fmt"

// PixelFormat is the FourCC code identifying pixel packing and plane
// layout, as carried on the wire by the transport engine.
type PixelFormat uint32

// Supported pixel formats. The numeric values are the little-endian FourCC
// codes used by the native engine.
const (
	FormatUYVY PixelFormat = 0x59565955 // packed 4:2:2
	FormatUYVA PixelFormat = 0x41565955 // packed 4:2:2 plus 8-bit alpha plane
	FormatP216 PixelFormat = 0x36313250 // semi-planar 16-bit 4:2:2
	FormatPA16 PixelFormat = 0x36314150 // P216 plus 16-bit alpha plane
	FormatYV12 PixelFormat = 0x32315659 // planar 8-bit 4:2:0, V before U
	FormatI420 PixelFormat = 0x30323449 // planar 8-bit 4:2:0
	FormatNV12 PixelFormat = 0x3231564E // semi-planar 8-bit 4:2:0
	FormatBGRA PixelFormat = 0x41524742 // packed 8-bit BGRA
	FormatBGRX PixelFormat = 0x58524742 // packed 8-bit BGRX, alpha ignored
	FormatRGBA PixelFormat = 0x41424752 // packed 8-bit RGBA
	FormatRGBX PixelFormat = 0x58424752 // packed 8-bit RGBX, alpha ignored
)

// layout describes how one format maps geometry to bytes. strideBPP is the
// byte width of one pixel in a row of the primary plane; size computes the
// total buffer size from width, height and the minimum stride.
type layout struct {
	name      string
	strideBPP int
	size      func(w, h, stride int) int
}

func packedSize(_, h, stride int) int { return stride * h }

// chroma420Size is the total for formats with a full-resolution 8-bit luma
// plane and two quarter-resolution chroma planes (or one interleaved plane
// of the same total size). Odd dimensions round the chroma planes up.
func chroma420Size(w, h, _ int) int {
	return w*h + 2*((w+1)/2)*((h+1)/2)
}

var layouts = map[PixelFormat]layout{
	FormatUYVY: {name: "UYVY", strideBPP: 2, size: packedSize},
	FormatUYVA: {name: "UYVA", strideBPP: 2, size: func(w, h, stride int) int { return stride*h + w*h }},
	FormatP216: {name: "P216", strideBPP: 2, size: func(_, h, stride int) int { return 2 * stride * h }},
	FormatPA16: {name: "PA16", strideBPP: 2, size: func(_, h, stride int) int { return 3 * stride * h }},
	FormatYV12: {name: "YV12", strideBPP: 1, size: chroma420Size},
	FormatI420: {name: "I420", strideBPP: 1, size: chroma420Size},
	FormatNV12: {name: "NV12", strideBPP: 1, size: chroma420Size},
	FormatBGRA: {name: "BGRA", strideBPP: 4, size: packedSize},
	FormatBGRX: {name: "BGRX", strideBPP: 4, size: packedSize},
	FormatRGBA: {name: "RGBA", strideBPP: 4, size: packedSize},
	FormatRGBX: {name: "RGBX", strideBPP: 4, size: packedSize},
}

// String returns the symbolic FourCC name, or "Unknown(0x…)" for codes not
// in the table. Format identification is advisory, so unknown codes format
// rather than fail.
func (f PixelFormat) String() string {
	if l, ok := layouts[f]; ok {
		return l.name
	}
	return fmt.Sprintf("Unknown(0x%08X)", uint32(f))
}

// Supported reports whether the format has a known buffer layout.
func (f PixelFormat) Supported() bool {
	_, ok := layouts[f]
	return ok
}

// Stride returns the smallest valid row size in bytes for the format's
// primary plane. Callers may pad rows beyond this but never below it.
func Stride(width int, f PixelFormat) (int, error) {
	l, ok := layouts[f]
	if !ok {
		return 0, fmt.Errorf("stride for %s: %w", f, ErrUnsupportedFormat)
	}
	if width < 0 {
		return 0, fmt.Errorf("stride: negative width %d", width)
	}
	return width * l.strideBPP, nil
}

// VideoBufferSize returns the exact byte size of a frame with the given
// geometry and minimum stride. Unknown formats fail with
// ErrUnsupportedFormat: a guessed size would let the native side read out
// of bounds, so sizes are never inferred.
func VideoBufferSize(width, height int, f PixelFormat) (int, error) {
	l, ok := layouts[f]
	if !ok {
		return 0, fmt.Errorf("buffer size for %s: %w", f, ErrUnsupportedFormat)
	}
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("buffer size: negative dimensions %dx%d", width, height)
	}
	return l.size(width, height, width*l.strideBPP), nil
}

// VideoBufferSizeWithStride is VideoBufferSize for a frame whose rows are
// padded to stride bytes. The stride must not be below the format minimum;
// a smaller stride would make the native side read past the payload.
func VideoBufferSizeWithStride(width, height, stride int, f PixelFormat) (int, error) {
	l, ok := layouts[f]
	if !ok {
		return 0, fmt.Errorf("buffer size for %s: %w", f, ErrUnsupportedFormat)
	}
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("buffer size: negative dimensions %dx%d", width, height)
	}
	if stride < width*l.strideBPP {
		return 0, fmt.Errorf("stride %d below minimum %d for %s: %w",
			stride, width*l.strideBPP, f, ErrBufferSizeMismatch)
	}
	return l.size(width, height, stride), nil
}

// AudioBufferSize returns the byte size of an audio block of 32-bit float
// samples: channels * samples * 4. Negative inputs yield zero.
func AudioBufferSize(channels, samples int) int {
	if channels < 0 || samples < 0 {
		return 0
	}
	return channels * samples * 4
}

// FallbackVideoBufferSize is the last-resort size estimate used only when
// the engine delivers a frame without an explicit payload size. It assumes
// packed 4:2:2 (two bytes per pixel) and must not be applied to any other
// format; callers are expected to have exhausted VideoBufferSize first.
func FallbackVideoBufferSize(width, height int) int {
	if width < 0 || height < 0 {
		return 0
	}
	return width * height * 2
}
