//go:build !ndi

// Package ndi binds the engine contract to the native NDI® SDK. This stub
// is compiled when the "ndi" build tag is absent, so the module builds
// without the SDK installed; New then reports the runtime as unavailable
// and callers fall back to another engine.
package ndi

import (
	"fmt"

	"github.com/kvasirlabs/ndikit/engine"
)

// Engine is unavailable in builds without the ndi tag.
type Engine struct{}

// New reports the native runtime as unavailable.
func New() (*Engine, error) {
	return nil, fmt.Errorf("built without the ndi tag: %w", engine.ErrInitFailed)
}

// Supported reports false without the native runtime.
func Supported() bool { return false }

// NewFinder always fails in stub builds.
func (e *Engine) NewFinder() (engine.Finder, error) {
	return nil, engine.ErrInitFailed
}

// NewReceiver always fails in stub builds.
func (e *Engine) NewReceiver() (engine.Receiver, error) {
	return nil, engine.ErrInitFailed
}

// NewSender always fails in stub builds.
func (e *Engine) NewSender(string) (engine.Sender, error) {
	return nil, engine.ErrInitFailed
}
