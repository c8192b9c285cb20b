// Package events bridges the "something changed" signal between server
// instances. A single instance never needs it: the local hub is always
// notified directly. With a broker configured, each instance also
// publishes change events and wakes its own WebSocket clients when
// another instance publishes one.
package events

import (
	"context"
	"fmt"

	"github.com/shoptrack/apiserver/config"
)

// Channel is the broker channel all repair-order change events go through.
const Channel = "repair-order-changes"

// originAttribute carries the publishing instance's ID so a node can
// ignore its own events (it already notified its local clients).
const originAttribute = "origin"

// ChangeEvent describes one mutation of the order board.
type ChangeEvent struct {
	Entity string `json:"entity"`
	ID     int    `json:"id"`
	Action string `json:"action"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// NewBackendFromConfig picks the configured broker backend. Returns a nil
// backend for "none", which keeps notifications instance-local.
func NewBackendFromConfig(ctx context.Context, cfg config.EventsConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQBackend(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubBackend(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
