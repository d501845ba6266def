package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NatsBus implements Bus on core NATS subjects, one subject per topic.
type NatsBus struct {
	nc *nats.Conn
}

// NewNatsBus connects to NATS at url.
func NewNatsBus(url string) (*NatsBus, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NatsBus{nc: nc}, nil
}

// Publish sends an empty wake-up message on the topic's subject.
func (b *NatsBus) Publish(ctx context.Context, topic string) error {
	return b.nc.Publish(subject(topic), nil)
}

// Subscribe opens a NATS subscription for topic.
func (b *NatsBus) Subscribe(ctx context.Context, topic string) (*Handle, error) {
	h := newHandle(nil)
	sub, err := b.nc.Subscribe(subject(topic), func(*nats.Msg) {
		h.wake()
	})
	if err != nil {
		return nil, err
	}
	h.detach = func() { _ = sub.Unsubscribe() }
	return h, nil
}

// Close drains and closes the NATS connection.
func (b *NatsBus) Close() error {
	return b.nc.Drain()
}

// subject maps topics onto a namespaced NATS subject hierarchy. Topic
// segments use ':' which NATS treats as a plain token character.
func subject(topic string) string {
	return "chat." + topic
}
