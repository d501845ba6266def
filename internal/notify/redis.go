package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBus implements Bus on Redis pub/sub. Every application instance
// sharing the Redis deployment sees every publish, so feed and directory
// subscriptions stay live across processes.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus creates a bus on an existing Redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

// Publish sends an empty wake-up message on topic.
func (b *RedisBus) Publish(ctx context.Context, topic string) error {
	return b.client.Publish(ctx, topic, "").Err()
}

// Subscribe opens a Redis pub/sub subscription for topic. The handle's
// channel closes if the pub/sub connection is lost.
func (b *RedisBus) Subscribe(ctx context.Context, topic string) (*Handle, error) {
	pubsub := b.client.Subscribe(ctx, topic)

	// Force the subscription to be established before returning so a
	// publish immediately after Subscribe is not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	h := newHandle(func() { pubsub.Close() })

	go func() {
		for range pubsub.Channel() {
			h.wake()
		}
		// Channel closed: either Close was called or the connection died.
		h.Close()
	}()

	return h, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBus) Close() error { return nil }
