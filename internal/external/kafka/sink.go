package kafka

import (
	"context"
	"fmt"

	"ticketrelay/internal/domain/ticket"
	"ticketrelay/internal/messaging"
)

const eventTypeTicketAttached = "ticket.attached"

// EventSink publishes attach events to Kafka, keyed by ticket ID so
// events for one ticket stay ordered within a partition.
type EventSink struct {
	publisher messaging.Publisher
}

var _ ticket.EventSink = (*EventSink)(nil)

func NewEventSink(publisher messaging.Publisher) *EventSink {
	return &EventSink{publisher: publisher}
}

func (s *EventSink) TicketAttached(ctx context.Context, event ticket.AttachedEvent) error {
	env, err := messaging.NewEnvelope(event.TicketID, eventTypeTicketAttached, event)
	if err != nil {
		return fmt.Errorf("build envelope: %w", err)
	}
	return s.publisher.Publish(ctx, env)
}
