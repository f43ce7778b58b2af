package messaging

import (
	"context"
	"encoding/json"
)

// Broker defines the interface for message brokers. This service only
// produces events; consumption happens in downstream services.
type Broker interface {
	Publish(ctx context.Context, topic string, message *Message) error
	Close() error
}

// Message is the wire envelope for domain events. Key carries the
// partitioning key so brokers that support keyed partitions preserve
// per-key ordering.
type Message struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}
