package loopback

import (
	"fmt"
	"time"

	"github.com/kvasirlabs/ndikit/engine"
)

// receiver is a receive handle. Like the native handle it wraps in
// production, it is single-owner: the caller serializes Connect, Capture
// and Close.
type receiver struct {
	bus    *bus
	id     string
	src    *sender
	queue  chan engine.Capture
	closed bool

	// pendingStatus emulates the native status-change unit delivered
	// right after a connection is (re)established.
	pendingStatus bool
}

// Connect binds the receiver to the named source, replacing any previous
// binding.
func (r *receiver) Connect(src engine.Source) error {
	if r.closed {
		return engine.ErrNotInitialized
	}
	s, ok := r.bus.lookup(src.Name)
	if !ok {
		return fmt.Errorf("loopback: source %q not advertised", src.Name)
	}
	if r.src != nil {
		r.src.unsubscribe(r.id)
		r.src = nil
		r.queue = nil
	}
	ch := s.subscribe(r.id)
	if ch == nil {
		return fmt.Errorf("loopback: source %q is closed", src.Name)
	}
	r.src = s
	r.queue = ch
	r.pendingStatus = true
	return nil
}

// Capture blocks up to timeout for the next queued unit. Timeout yields
// FrameNone; an unconnected receiver always times out.
func (r *receiver) Capture(timeout time.Duration) (engine.Capture, error) {
	if r.closed {
		return engine.Capture{}, engine.ErrNotInitialized
	}
	if r.pendingStatus {
		r.pendingStatus = false
		return engine.Capture{Type: engine.FrameStatusChange}, nil
	}
	if r.queue == nil {
		if timeout > 0 {
			time.Sleep(timeout)
		}
		return engine.Capture{Type: engine.FrameNone}, nil
	}

	if timeout <= 0 {
		select {
		case c := <-r.queue:
			return c, nil
		default:
			return engine.Capture{Type: engine.FrameNone}, nil
		}
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case c := <-r.queue:
		return c, nil
	case <-t.C:
		return engine.Capture{Type: engine.FrameNone}, nil
	}
}

// Close releases the subscription. Idempotent.
func (r *receiver) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.src != nil {
		r.src.unsubscribe(r.id)
		r.src = nil
	}
	return nil
}
