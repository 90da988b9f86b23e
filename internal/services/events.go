package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrocoop/farmdesk/types"
)

// EventPublisher receives a RecordEvent after every committed mutation.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event types.RecordEvent) error
}

const (
	entityFarmer  = "farmer"
	entityProduct = "product"
	entityNeed    = "need"
)

// recorder publishes change events. A nil publisher disables publishing;
// publish failures are logged and otherwise ignored.
type recorder struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func newRecorder(publisher EventPublisher, logger *slog.Logger) recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return recorder{publisher: publisher, logger: logger}
}

func (r recorder) record(ctx context.Context, entity string, action types.RecordAction, id, farmerID int) {
	r.logger.InfoContext(ctx, "record changed", "entity", entity, "action", action, "id", id)
	if r.publisher == nil {
		return
	}
	event := types.RecordEvent{
		Entity:     entity,
		Action:     action,
		ID:         id,
		FarmerID:   farmerID,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.publisher.PublishRecordEvent(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "publish record event", "entity", entity, "action", action, "id", id, "error", err)
	}
}
