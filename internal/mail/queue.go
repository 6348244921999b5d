package mail

import (
	"context"
	"encoding/json"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Queue defines the broker-agnostic operations used for mail dispatch.
type Queue interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// QueueMailer publishes rendered emails to a queue for delivery by the
// mailworker relay.
type QueueMailer struct {
	queue   Queue
	channel string
}

func NewQueueMailer(queue Queue, channel string) *QueueMailer {
	return &QueueMailer{queue: queue, channel: channel}
}

// Send enqueues the email; actual delivery happens in the relay.
func (m *QueueMailer) Send(ctx context.Context, email Email) error {
	data, err := json.Marshal(email)
	if err != nil {
		return err
	}
	_, err = m.queue.Publish(ctx, m.channel, data, map[string]string{"to": email.To})
	return err
}

// Close closes the underlying queue.
func (m *QueueMailer) Close() error {
	return m.queue.Close()
}
