//go:build ndi

// Package ndi binds the engine contract to the native NDI® SDK. The
// binding is a thin shim: all protocol work (discovery announcements,
// handshake, compression, clock recovery) happens inside the SDK, and this
// package only marshals structures across the cgo boundary.
//
// Build with -tags ndi and the SDK headers/library installed. Without the
// tag, New returns engine.ErrInitFailed (see stub.go), so callers can fall
// back to another engine at runtime.
package ndi

/*
#cgo LDFLAGS: -lndi
#include <stdlib.h>
#include <string.h>
#include <Processing.NDI.Lib.h>
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/kvasirlabs/ndikit/engine"
	"github.com/kvasirlabs/ndikit/media"
)

var (
	initOnce sync.Once
	initErr  error
)

// ensureInit performs the process-wide SDK initialization exactly once.
// Safe to call from concurrent first-time initializers; the SDK itself is
// reference-counted, so teardown is left to process exit.
func ensureInit() error {
	initOnce.Do(func() {
		if !C.NDIlib_is_supported_CPU() {
			initErr = fmt.Errorf("CPU not supported by the NDI runtime: %w", engine.ErrInitFailed)
			return
		}
		if !C.NDIlib_initialize() {
			initErr = fmt.Errorf("NDIlib_initialize: %w", engine.ErrInitFailed)
		}
	})
	return initErr
}

// Engine is the SDK-backed engine. The zero value is not usable; call New.
type Engine struct{}

// New initializes the SDK (once per process) and returns the engine.
func New() (*Engine, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return &Engine{}, nil
}

// Supported reports whether the CPU can run the NDI runtime.
func Supported() bool {
	return bool(C.NDIlib_is_supported_CPU())
}

// NewFinder allocates a native finder handle.
func (e *Engine) NewFinder() (engine.Finder, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	settings := C.NDIlib_find_create_t{
		show_local_sources: true,
	}
	inst := C.NDIlib_find_create_v2(&settings)
	if inst == nil {
		return nil, fmt.Errorf("NDIlib_find_create_v2: %w", engine.ErrInitFailed)
	}
	return &finder{inst: inst}, nil
}

// NewReceiver allocates an unconnected native receive handle.
func (e *Engine) NewReceiver() (engine.Receiver, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	settings := C.NDIlib_recv_create_v3_t{
		color_format:       C.NDIlib_recv_color_format_fastest,
		bandwidth:          C.NDIlib_recv_bandwidth_highest,
		allow_video_fields: true,
	}
	inst := C.NDIlib_recv_create_v3(&settings)
	if inst == nil {
		return nil, fmt.Errorf("NDIlib_recv_create_v3: %w", engine.ErrInitFailed)
	}
	return &receiver{inst: inst}, nil
}

// NewSender advertises name and returns the native send handle.
func (e *Engine) NewSender(name string) (engine.Sender, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	settings := C.NDIlib_send_create_t{
		p_ndi_name: cName,
	}
	inst := C.NDIlib_send_create(&settings)
	if inst == nil {
		return nil, fmt.Errorf("NDIlib_send_create %q: %w", name, engine.ErrInitFailed)
	}
	return &sender{inst: inst}, nil
}

// finder wraps a native find instance.
type finder struct {
	inst C.NDIlib_find_instance_t
}

func (f *finder) WaitForSources(timeout time.Duration) bool {
	if f.inst == nil {
		return false
	}
	return bool(C.NDIlib_find_wait_for_sources(f.inst, C.uint32_t(timeout.Milliseconds())))
}

func (f *finder) Sources() []engine.Source {
	if f.inst == nil {
		return nil
	}
	var n C.uint32_t
	native := C.NDIlib_find_get_current_sources(f.inst, &n)
	if native == nil || n == 0 {
		return nil
	}
	slice := unsafe.Slice(native, int(n))
	out := make([]engine.Source, 0, int(n))
	for _, s := range slice {
		src := engine.Source{Name: C.GoString(s.p_ndi_name)}
		if s.p_url_address != nil {
			src.Address = C.GoString(s.p_url_address)
		}
		out = append(out, src)
	}
	return out
}

func (f *finder) Close() error {
	if f.inst != nil {
		C.NDIlib_find_destroy(f.inst)
		f.inst = nil
	}
	return nil
}

// receiver wraps a native receive instance. The SDK owns the payload of
// the most recent capture; it is freed on the next Capture or on Close,
// which is exactly the validity window the engine contract declares.
type receiver struct {
	inst C.NDIlib_recv_instance_t

	lastVideo *C.NDIlib_video_frame_v2_t
	lastAudio *C.NDIlib_audio_frame_v2_t
	lastMeta  *C.NDIlib_metadata_frame_t
}

func (r *receiver) Connect(src engine.Source) error {
	if r.inst == nil {
		return engine.ErrNotInitialized
	}
	cName := C.CString(src.Name)
	defer C.free(unsafe.Pointer(cName))
	native := C.NDIlib_source_t{p_ndi_name: cName}
	var cAddr *C.char
	if src.Address != "" {
		cAddr = C.CString(src.Address)
		defer C.free(unsafe.Pointer(cAddr))
		native.p_url_address = cAddr
	}
	C.NDIlib_recv_connect(r.inst, &native)
	return nil
}

func (r *receiver) freeLast() {
	if r.lastVideo != nil {
		C.NDIlib_recv_free_video_v2(r.inst, r.lastVideo)
		r.lastVideo = nil
	}
	if r.lastAudio != nil {
		C.NDIlib_recv_free_audio_v2(r.inst, r.lastAudio)
		r.lastAudio = nil
	}
	if r.lastMeta != nil {
		C.NDIlib_recv_free_metadata(r.inst, r.lastMeta)
		r.lastMeta = nil
	}
}

func (r *receiver) Capture(timeout time.Duration) (engine.Capture, error) {
	if r.inst == nil {
		return engine.Capture{}, engine.ErrNotInitialized
	}
	r.freeLast()

	var (
		video C.NDIlib_video_frame_v2_t
		audio C.NDIlib_audio_frame_v2_t
		meta  C.NDIlib_metadata_frame_t
	)
	ft := C.NDIlib_recv_capture_v2(r.inst, &video, &audio, &meta, C.uint32_t(timeout.Milliseconds()))

	switch ft {
	case C.NDIlib_frame_type_video:
		r.lastVideo = &video
		return engine.Capture{Type: engine.FrameVideo, Video: convertVideo(&video)}, nil
	case C.NDIlib_frame_type_audio:
		r.lastAudio = &audio
		return engine.Capture{Type: engine.FrameAudio, Audio: convertAudio(&audio)}, nil
	case C.NDIlib_frame_type_metadata:
		r.lastMeta = &meta
		p := &engine.MetadataPacket{Timecode: int64(meta.timecode)}
		if meta.p_data != nil {
			p.Data = C.GoString(meta.p_data)
		}
		return engine.Capture{Type: engine.FrameMetadata, Metadata: p}, nil
	case C.NDIlib_frame_type_status_change:
		return engine.Capture{Type: engine.FrameStatusChange}, nil
	case C.NDIlib_frame_type_error:
		return engine.Capture{Type: engine.FrameError}, nil
	default:
		return engine.Capture{Type: engine.FrameNone}, nil
	}
}

// convertVideo maps the native frame to a VideoPacket. The SDK reports a
// line stride, not a total size, so the byte length is derived from the
// format tables; formats the tables do not know are exposed with
// DataSize 0 and a stride*height best-effort view, which the receive
// session then sizes (or rejects) itself.
func convertVideo(v *C.NDIlib_video_frame_v2_t) *engine.VideoPacket {
	w, h := int(v.xres), int(v.yres)
	stride := int(*(*C.int32_t)(unsafe.Pointer(&v.anon0)))
	format := media.PixelFormat(uint32(v.FourCC))

	p := &engine.VideoPacket{
		Width:       w,
		Height:      h,
		FrameRateN:  int(v.frame_rate_N),
		FrameRateD:  int(v.frame_rate_D),
		FourCC:      uint32(v.FourCC),
		Stride:      stride,
		Timecode:    int64(v.timecode),
		AspectRatio: float32(v.picture_aspect_ratio),
	}
	if v.p_data == nil {
		return p
	}

	if size, err := media.VideoBufferSizeWithStride(w, h, stride, format); err == nil {
		p.DataSize = size
		p.Data = unsafe.Slice((*byte)(unsafe.Pointer(v.p_data)), size)
		return p
	}
	if stride > 0 && h > 0 {
		p.Data = unsafe.Slice((*byte)(unsafe.Pointer(v.p_data)), stride*h)
	}
	return p
}

// convertAudio flattens the SDK's stride-separated planar float buffer
// into the contiguous channels*samples*4 layout of the engine contract.
func convertAudio(a *C.NDIlib_audio_frame_v2_t) *engine.AudioPacket {
	channels, samples := int(a.no_channels), int(a.no_samples)
	chanStride := int(*(*C.int32_t)(unsafe.Pointer(&a.anon0)))

	p := &engine.AudioPacket{
		SampleRate: int(a.sample_rate),
		Channels:   channels,
		Samples:    samples,
		Timecode:   int64(a.timecode),
	}
	if a.p_data == nil || channels <= 0 || samples <= 0 {
		return p
	}

	rowBytes := samples * 4
	data := make([]byte, channels*rowBytes)
	base := unsafe.Pointer(a.p_data)
	for ch := 0; ch < channels; ch++ {
		src := unsafe.Slice((*byte)(unsafe.Add(base, ch*chanStride)), rowBytes)
		copy(data[ch*rowBytes:(ch+1)*rowBytes], src)
	}
	p.Data = data
	return p
}

func (r *receiver) Close() error {
	if r.inst != nil {
		r.freeLast()
		C.NDIlib_recv_destroy(r.inst)
		r.inst = nil
	}
	return nil
}

// sender wraps a native send instance. Payloads are handed to the SDK
// synchronously; the SDK copies before returning, so callers may reuse
// their buffers immediately.
type sender struct {
	inst C.NDIlib_send_instance_t
}

func (s *sender) SendVideo(p *engine.VideoPacket) error {
	if s.inst == nil {
		return engine.ErrNotInitialized
	}
	if len(p.Data) == 0 {
		return nil
	}
	frame := C.NDIlib_video_frame_v2_t{
		xres:                 C.int(p.Width),
		yres:                 C.int(p.Height),
		FourCC:               C.NDIlib_FourCC_video_type_e(p.FourCC),
		frame_rate_N:         C.int(p.FrameRateN),
		frame_rate_D:         C.int(p.FrameRateD),
		picture_aspect_ratio: C.float(p.AspectRatio),
		frame_format_type:    C.NDIlib_frame_format_type_progressive,
		timecode:             C.int64_t(p.Timecode),
		p_data:               (*C.uint8_t)(unsafe.Pointer(&p.Data[0])),
	}
	*(*C.int32_t)(unsafe.Pointer(&frame.anon0)) = C.int32_t(p.Stride)
	C.NDIlib_send_send_video_v2(s.inst, &frame)
	return nil
}

func (s *sender) SendAudio(p *engine.AudioPacket) error {
	if s.inst == nil {
		return engine.ErrNotInitialized
	}
	if len(p.Data) == 0 {
		return nil
	}
	frame := C.NDIlib_audio_frame_v2_t{
		sample_rate: C.int(p.SampleRate),
		no_channels: C.int(p.Channels),
		no_samples:  C.int(p.Samples),
		timecode:    C.int64_t(p.Timecode),
		p_data:      (*C.float)(unsafe.Pointer(&p.Data[0])),
	}
	*(*C.int32_t)(unsafe.Pointer(&frame.anon0)) = C.int32_t(p.Samples * 4)
	C.NDIlib_send_send_audio_v2(s.inst, &frame)
	return nil
}

func (s *sender) SendMetadata(p *engine.MetadataPacket) error {
	if s.inst == nil {
		return engine.ErrNotInitialized
	}
	cData := C.CString(p.Data)
	defer C.free(unsafe.Pointer(cData))
	frame := C.NDIlib_metadata_frame_t{
		length:   C.int(len(p.Data)),
		timecode: C.int64_t(p.Timecode),
		p_data:   cData,
	}
	C.NDIlib_send_send_metadata(s.inst, &frame)
	return nil
}

func (s *sender) Close() error {
	if s.inst != nil {
		C.NDIlib_send_destroy(s.inst)
		s.inst = nil
	}
	return nil
}
