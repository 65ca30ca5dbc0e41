package loopback

import (
	"time"

	"github.com/kvasirlabs/ndikit/engine"
)

// finder is a discovery handle over the bus registry.
type finder struct {
	bus    *bus
	closed bool
}

// WaitForSources blocks until the advertised-source set changes or the
// timeout elapses. A closed finder reports no change immediately.
func (f *finder) WaitForSources(timeout time.Duration) bool {
	if f.closed {
		return false
	}
	if timeout <= 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-f.bus.changeSignal():
		return true
	case <-t.C:
		return false
	}
}

// Sources returns the current registry snapshot. Closed finders return nil.
func (f *finder) Sources() []engine.Source {
	if f.closed {
		return nil
	}
	return f.bus.snapshot()
}

// Close is idempotent and always succeeds.
func (f *finder) Close() error {
	f.closed = true
	return nil
}
