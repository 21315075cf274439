package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

// EventSource is an aggregate that collects domain events until they are published
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// PublishPending hands the pending events of each aggregate to the publisher
// and clears them. Call it after the write has committed. Publish failures are
// logged and not returned: the state change already happened.
func PublishPending(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, sources ...EventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	Publish(ctx, publisher, logger, events...)
}

// Publish sends events that were not raised by an aggregate
func Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		for _, e := range events {
			logger.Error("Failed to publish domain event",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Error(err))
		}
	}
}
