// Package loopback implements the engine contract entirely in-process:
// senders advertise into a shared registry and receivers connected to them
// get frames over bounded queues. It needs no SDK or network and is the
// engine used by the test suite and the demo binary. Semantics mirror the
// native engine: bounded blocking on discovery and capture, drop-oldest
// under queue pressure, close-exactly-once per handle.
package loopback

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kvasirlabs/ndikit/engine"
)

// queueDepth bounds the per-receiver frame queue. Sized to absorb a couple
// of seconds of 30fps video without letting a stalled receiver pin memory.
const queueDepth = 64

// Engine is an in-process engine. One Engine value models one process-wide
// transport runtime; handles created from it share a source registry.
type Engine struct {
	bus *bus
}

// New creates an empty in-process engine.
func New() *Engine {
	return &Engine{bus: newBus()}
}

// NewFinder returns a discovery handle over the engine's registry.
func (e *Engine) NewFinder() (engine.Finder, error) {
	return &finder{bus: e.bus}, nil
}

// NewReceiver returns an unconnected receive handle.
func (e *Engine) NewReceiver() (engine.Receiver, error) {
	return &receiver{bus: e.bus, id: uuid.NewString()}, nil
}

// NewSender advertises name in the registry and returns the send handle.
// The name must not already be advertised.
func (e *Engine) NewSender(name string) (engine.Sender, error) {
	return e.bus.addSender(name)
}

// bus is the process-local rendezvous between senders, receivers and
// finders. changed is closed and replaced on every topology change so
// finders can wait for announcements without polling.
type bus struct {
	mu      sync.Mutex
	senders map[string]*sender
	changed chan struct{}
}

func newBus() *bus {
	return &bus{
		senders: make(map[string]*sender),
		changed: make(chan struct{}),
	}
}

func (b *bus) notifyLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}

func (b *bus) addSender(name string) (*sender, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.senders[name]; exists {
		return nil, fmt.Errorf("loopback: source %q already advertised", name)
	}
	s := &sender{
		bus:  b,
		name: name,
		subs: make(map[string]chan engine.Capture),
	}
	b.senders[name] = s
	b.notifyLocked()
	return s, nil
}

func (b *bus) removeSender(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.senders[name]; ok {
		delete(b.senders, name)
		b.notifyLocked()
	}
}

func (b *bus) lookup(name string) (*sender, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.senders[name]
	return s, ok
}

func (b *bus) snapshot() []engine.Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]engine.Source, 0, len(b.senders))
	for name := range b.senders {
		out = append(out, engine.Source{
			Name:    name,
			Address: "loopback://" + name,
		})
	}
	return out
}

func (b *bus) changeSignal() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}
