// Package notify provides the change-notification bus that wakes feed and
// directory subscriptions. Notifications carry no payload: a wake-up tells
// the subscriber to re-read its snapshot from the store, which matches the
// store's full-snapshot-on-change contract.
package notify

import (
	"context"
	"fmt"
	"sync"
)

// RoomsTopic is the reserved topic published on every room-collection
// change (create, preview update).
const RoomsTopic = "rooms"

// RoomTopic returns the topic for a single room's message changes.
func RoomTopic(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

// Bus is a minimal publish/subscribe fan-out. Implementations exist for
// in-process use, Redis pub/sub and NATS.
type Bus interface {
	// Publish wakes all subscribers of topic.
	Publish(ctx context.Context, topic string) error
	// Subscribe returns a handle whose channel receives a wake-up after
	// each Publish on topic. Wake-ups are coalesced: a slow consumer sees
	// at least one wake-up for any burst of publishes.
	Subscribe(ctx context.Context, topic string) (*Handle, error)
	Close() error
}

// Handle is a disposable subscription. The channel is closed when the
// handle is closed or the underlying transport is lost; consumers treat an
// unrequested close as a disconnect.
type Handle struct {
	ch     chan struct{}
	detach func()

	mu     sync.Mutex
	closed bool
}

func newHandle(detach func()) *Handle {
	h := &Handle{ch: make(chan struct{}, 1)}
	h.detach = detach
	return h
}

// C returns the wake-up channel.
func (h *Handle) C() <-chan struct{} { return h.ch }

// Close detaches the subscription exactly once. Safe to call repeatedly,
// and safe against a concurrent wake from the transport's delivery
// goroutine: the channel close and every send share h.mu.
func (h *Handle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.ch)
	h.mu.Unlock()

	// Detach outside h.mu: bus detach callbacks take the bus lock, and the
	// bus publishes under that lock through wake, which takes h.mu.
	if h.detach != nil {
		h.detach()
	}
}

// wake delivers a coalesced notification without blocking. A wake racing
// Close is dropped.
func (h *Handle) wake() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.ch <- struct{}{}:
	default:
	}
}

// MemoryBus is an in-process Bus used in tests and single-binary setups.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string]map[*Handle]struct{}
	closed bool
}

// NewMemoryBus creates an in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*Handle]struct{})}
}

// Publish wakes all handles subscribed to topic.
func (b *MemoryBus) Publish(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("bus closed")
	}
	for h := range b.subs[topic] {
		h.wake()
	}
	return nil
}

// Subscribe registers a new handle for topic.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (*Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("bus closed")
	}
	var h *Handle
	h = newHandle(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[topic]; ok {
			delete(set, h)
			if len(set) == 0 {
				delete(b.subs, topic)
			}
		}
	})
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Handle]struct{})
	}
	b.subs[topic][h] = struct{}{}
	return h, nil
}

// Close closes the bus and every outstanding handle.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var handles []*Handle
	for _, set := range b.subs {
		for h := range set {
			handles = append(handles, h)
		}
	}
	b.subs = make(map[string]map[*Handle]struct{})
	b.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
	return nil
}
