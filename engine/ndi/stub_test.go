//go:build !ndi

package ndi

import (
	"errors"
	"testing"

	"github.com/kvasirlabs/ndikit/engine"
)

func TestStubReportsUnavailable(t *testing.T) {
	t.Parallel()

	if Supported() {
		t.Fatal("stub build claims native support")
	}
	_, err := New()
	if !errors.Is(err, engine.ErrInitFailed) {
		t.Fatalf("New error = %v, want ErrInitFailed", err)
	}

	var e Engine
	if _, err := e.NewFinder(); !errors.Is(err, engine.ErrInitFailed) {
		t.Fatalf("NewFinder error = %v, want ErrInitFailed", err)
	}
	if _, err := e.NewReceiver(); !errors.Is(err, engine.ErrInitFailed) {
		t.Fatalf("NewReceiver error = %v, want ErrInitFailed", err)
	}
	if _, err := e.NewSender("x"); !errors.Is(err, engine.ErrInitFailed) {
		t.Fatalf("NewSender error = %v, want ErrInitFailed", err)
	}
}
