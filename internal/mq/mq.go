// Package mq carries record change events over a message broker.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/agrocoop/farmdesk/config"
	"github.com/agrocoop/farmdesk/types"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Attributes set on every record event. Brokers use them for routing and
// ordering without decoding the payload.
const (
	AttrEntity   = "entity"
	AttrAction   = "action"
	AttrFarmerID = "farmer_id"
)

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// New connects to the broker selected by cfg. It returns nil when events
// are disabled.
func New(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendRabbitMQ:
		return NewRabbitMQClient(cfg.RabbitMQ)
	case config.BackendPubSub:
		return NewPubSubClient(ctx, cfg.PubSub)
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported mq backend %q", cfg.Backend)
	}
}

// Events publishes and consumes types.RecordEvent values as JSON on a single
// channel.
type Events struct {
	backend Backend
	channel string
	logger  *slog.Logger
}

// NewEvents binds backend to channel.
func NewEvents(backend Backend, channel string, logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &Events{backend: backend, channel: channel, logger: logger}
}

// PublishRecordEvent sends event to the events channel.
func (e *Events) PublishRecordEvent(ctx context.Context, event types.RecordEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode record event: %w", err)
	}
	attrs := map[string]string{
		AttrEntity:   event.Entity,
		AttrAction:   string(event.Action),
		AttrFarmerID: strconv.Itoa(event.FarmerID),
	}
	id, err := e.backend.Publish(ctx, e.channel, data, attrs)
	if err != nil {
		return fmt.Errorf("publish record event: %w", err)
	}
	e.logger.DebugContext(ctx, "published record event", "message_id", id, "entity", event.Entity, "action", event.Action)
	return nil
}

// ConsumeRecordEvents calls handle for every event on the channel until ctx
// is done. Undecodable messages are logged and acknowledged.
func (e *Events) ConsumeRecordEvents(ctx context.Context, handle func(context.Context, types.RecordEvent) error) error {
	return e.backend.Subscribe(ctx, e.channel, func(ctx context.Context, msg Message) error {
		var event types.RecordEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			e.logger.WarnContext(ctx, "drop malformed record event", "message_id", msg.ID, "error", err)
			return nil
		}
		return handle(ctx, event)
	})
}

// Close closes the underlying backend.
func (e *Events) Close() error {
	return e.backend.Close()
}
