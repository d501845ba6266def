package notify

import (
	"context"
	"testing"
	"time"
)

func TestPublishWakesSubscriber(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	h, err := bus.Subscribe(context.Background(), "room:r1")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := bus.Publish(context.Background(), "room:r1"); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-h.C():
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
	case <-time.After(time.Second):
		t.Fatal("no wake-up received")
	}
}

func TestPublishOtherTopicDoesNotWake(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	h, _ := bus.Subscribe(context.Background(), "room:r1")
	defer h.Close()

	bus.Publish(context.Background(), "room:r2")

	select {
	case <-h.C():
		t.Fatal("unexpected wake-up from unrelated topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWakeUpsCoalesce(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	h, _ := bus.Subscribe(context.Background(), "room:r1")
	defer h.Close()

	for i := 0; i < 10; i++ {
		bus.Publish(context.Background(), "room:r1")
	}

	// A burst collapses to at least one pending wake-up, never blocks.
	select {
	case <-h.C():
	case <-time.After(time.Second):
		t.Fatal("expected a pending wake-up")
	}
}

func TestCloseIsIdempotentAndDetaches(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	h, _ := bus.Subscribe(context.Background(), "room:r1")
	h.Close()
	h.Close() // must not panic

	if _, ok := <-h.C(); ok {
		t.Fatal("channel must be closed after Close")
	}

	// Publishing after detach must not panic or deliver.
	if err := bus.Publish(context.Background(), "room:r1"); err != nil {
		t.Fatal(err)
	}
}

// A transport delivery goroutine (Redis pub/sub, NATS callback) may still
// be waking the handle while the consumer closes it. The racing wake must
// be dropped, never panic.
func TestWakeRacingCloseIsDropped(t *testing.T) {
	for i := 0; i < 200; i++ {
		h := newHandle(nil)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 50; j++ {
				h.wake()
			}
		}()
		h.Close()
		<-done

		if _, ok := <-h.C(); ok {
			// Drain the coalesced wake-up that may have landed before
			// Close; the channel must still end closed.
			if _, ok := <-h.C(); ok {
				t.Fatal("channel open after Close")
			}
		}
	}
}

func TestBusCloseClosesHandles(t *testing.T) {
	bus := NewMemoryBus()
	h, _ := bus.Subscribe(context.Background(), "room:r1")

	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-h.C():
		if ok {
			// Drain a possible pending wake-up, then expect close.
			if _, ok := <-h.C(); ok {
				t.Fatal("channel must close when bus closes")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel must close when bus closes")
	}
}
