package media

import (
	"errors"
	"strings"
	"testing"
)

var packedFormats = []PixelFormat{FormatUYVY, FormatBGRA, FormatBGRX, FormatRGBA, FormatRGBX}

var allFormats = []PixelFormat{
	FormatUYVY, FormatUYVA, FormatP216, FormatPA16,
	FormatYV12, FormatI420, FormatNV12,
	FormatBGRA, FormatBGRX, FormatRGBA, FormatRGBX,
}

func TestVideoBufferSizePackedEqualsStrideTimesHeight(t *testing.T) {
	t.Parallel()

	dims := []struct{ w, h int }{{4, 2}, {16, 9}, {1280, 720}, {1920, 1080}, {0, 0}}
	for _, f := range packedFormats {
		for _, d := range dims {
			stride, err := Stride(d.w, f)
			if err != nil {
				t.Fatalf("Stride(%d, %s): %v", d.w, f, err)
			}
			size, err := VideoBufferSize(d.w, d.h, f)
			if err != nil {
				t.Fatalf("VideoBufferSize(%d, %d, %s): %v", d.w, d.h, f, err)
			}
			if size != stride*d.h {
				t.Fatalf("%s %dx%d: size %d != stride %d * height %d", f, d.w, d.h, size, stride, d.h)
			}
		}
	}
}

func TestVideoBufferSizeExactValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format PixelFormat
		w, h   int
		want   int
	}{
		{FormatUYVY, 4, 2, 16},
		{FormatUYVY, 1920, 1080, 1920 * 1080 * 2},
		{FormatUYVA, 4, 2, 16 + 8},
		{FormatP216, 4, 2, 32},
		{FormatPA16, 4, 2, 48},
		{FormatI420, 4, 2, 8 + 2*2},
		{FormatYV12, 4, 2, 12},
		{FormatNV12, 1280, 720, 1280 * 720 * 3 / 2},
		{FormatI420, 5, 3, 15 + 2*3*2}, // odd dims round chroma planes up
		{FormatBGRA, 4, 2, 32},
		{FormatRGBX, 16, 9, 16 * 9 * 4},
	}
	for _, tt := range tests {
		got, err := VideoBufferSize(tt.w, tt.h, tt.format)
		if err != nil {
			t.Fatalf("VideoBufferSize(%d, %d, %s): %v", tt.w, tt.h, tt.format, err)
		}
		if got != tt.want {
			t.Fatalf("VideoBufferSize(%d, %d, %s) = %d, want %d", tt.w, tt.h, tt.format, got, tt.want)
		}
	}
}

func TestStrideNeverBelowPixelWidth(t *testing.T) {
	t.Parallel()

	// Minimum bytes per pixel of the primary plane for each format.
	bpp := map[PixelFormat]int{
		FormatUYVY: 2, FormatUYVA: 2, FormatP216: 2, FormatPA16: 2,
		FormatYV12: 1, FormatI420: 1, FormatNV12: 1,
		FormatBGRA: 4, FormatBGRX: 4, FormatRGBA: 4, FormatRGBX: 4,
	}
	for _, f := range allFormats {
		for _, w := range []int{1, 2, 64, 1919, 3840} {
			stride, err := Stride(w, f)
			if err != nil {
				t.Fatalf("Stride(%d, %s): %v", w, f, err)
			}
			if stride < w*bpp[f] {
				t.Fatalf("%s width %d: stride %d below minimum %d", f, w, stride, w*bpp[f])
			}
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	t.Parallel()

	const bogus = PixelFormat(0xFFFFFFFF)

	if _, err := VideoBufferSize(16, 16, bogus); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("VideoBufferSize error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Stride(16, bogus); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Stride error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatNames(t *testing.T) {
	t.Parallel()

	if got := FormatUYVY.String(); got != "UYVY" {
		t.Fatalf("FormatUYVY.String() = %q, want UYVY", got)
	}
	if got := FormatI420.String(); got != "I420" {
		t.Fatalf("FormatI420.String() = %q, want I420", got)
	}
	got := PixelFormat(0xFFFFFFFF).String()
	if !strings.Contains(got, "FFFFFFFF") {
		t.Fatalf("unknown format name %q does not contain the hex code", got)
	}
	if !strings.HasPrefix(got, "Unknown(") {
		t.Fatalf("unknown format name %q missing Unknown prefix", got)
	}
}

func TestAudioBufferSize(t *testing.T) {
	t.Parallel()

	tests := []struct{ c, s, want int }{
		{0, 0, 0},
		{1, 1, 4},
		{2, 48000, 2 * 48000 * 4},
		{8, 1024, 8 * 1024 * 4},
		{-1, 100, 0},
		{2, -5, 0},
	}
	for _, tt := range tests {
		if got := AudioBufferSize(tt.c, tt.s); got != tt.want {
			t.Fatalf("AudioBufferSize(%d, %d) = %d, want %d", tt.c, tt.s, got, tt.want)
		}
	}
}

func TestFallbackVideoBufferSize(t *testing.T) {
	t.Parallel()

	if got := FallbackVideoBufferSize(1920, 1080); got != 1920*1080*2 {
		t.Fatalf("FallbackVideoBufferSize = %d, want %d", got, 1920*1080*2)
	}
	if got := FallbackVideoBufferSize(-1, 10); got != 0 {
		t.Fatalf("FallbackVideoBufferSize with negative width = %d, want 0", got)
	}
}

func TestTestPatternUYVY(t *testing.T) {
	t.Parallel()

	data := TestPatternUYVY(64, 36)
	want, err := VideoBufferSize(64, 36, FormatUYVY)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != want {
		t.Fatalf("pattern length %d, want %d", len(data), want)
	}

	// Luma must ramp downward across rows.
	top := data[1]
	bottom := data[(35*128)+1]
	if bottom <= top {
		t.Fatalf("expected luma ramp: top %d, bottom %d", top, bottom)
	}
}

func TestUnitTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		t    UnitType
		want string
	}{
		{UnitNone, "none"},
		{UnitVideo, "video"},
		{UnitAudio, "audio"},
		{UnitMetadata, "metadata"},
		{UnitError, "error"},
		{UnitType(42), "invalid"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Fatalf("UnitType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
