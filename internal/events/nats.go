package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix namespaces every subject published by this service.
const SubjectPrefix = "social."

// NatsPublisher sends events as JSON on core NATS subjects.
type NatsPublisher struct {
	nc *nats.Conn
}

// Ensure NatsPublisher implements Publisher
var _ Publisher = (*NatsPublisher)(nil)

// NewNatsPublisher wraps an established connection.
func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Connect dials url and returns a publisher bound to it.
func Connect(url string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("socialnet"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewNatsPublisher(nc), nil
}

// Subject returns the bus subject for an event type.
func Subject(t Type) string {
	return SubjectPrefix + string(t)
}

// Publish implements Publisher.
func (p *NatsPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &nats.Msg{
		Subject: Subject(event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Event-Type", string(event.Type))
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NatsPublisher) Close() error {
	return p.nc.Drain()
}
