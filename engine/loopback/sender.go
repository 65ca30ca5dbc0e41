package loopback

import (
	"sync"

	"github.com/kvasirlabs/ndikit/engine"
)

// sender is an advertised outbound handle. Payloads are copied once on
// send so queued frames stay valid after the caller reuses its buffer,
// matching the native engine's synchronous send semantics.
type sender struct {
	bus  *bus
	name string

	mu     sync.Mutex
	subs   map[string]chan engine.Capture
	closed bool
}

func (s *sender) subscribe(id string) chan engine.Capture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	ch := make(chan engine.Capture, queueDepth)
	s.subs[id] = ch
	return ch
}

func (s *sender) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *sender) SendVideo(p *engine.VideoPacket) error {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Data = append([]byte(nil), p.Data...)
	return s.deliver(engine.Capture{Type: engine.FrameVideo, Video: &cp})
}

func (s *sender) SendAudio(p *engine.AudioPacket) error {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Data = append([]byte(nil), p.Data...)
	return s.deliver(engine.Capture{Type: engine.FrameAudio, Audio: &cp})
}

func (s *sender) SendMetadata(p *engine.MetadataPacket) error {
	if p == nil {
		return nil
	}
	cp := *p
	return s.deliver(engine.Capture{Type: engine.FrameMetadata, Metadata: &cp})
}

// deliver fans the capture out to every subscriber queue, dropping the
// oldest queued frame when a queue is full rather than blocking the send
// path on a slow receiver.
func (s *sender) deliver(c engine.Capture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return engine.ErrNotInitialized
	}
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c:
			default:
			}
		}
	}
	return nil
}

// Close withdraws the advertisement. Idempotent; connected receivers keep
// their handles but see no further frames.
func (s *sender) Close() error {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if !alreadyClosed {
		s.bus.removeSender(s.name)
	}
	return nil
}
