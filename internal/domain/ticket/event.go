package ticket

import (
	"context"
	"time"
)

// AttachedEvent is the audit record emitted after a successful upsert.
type AttachedEvent struct {
	OrderID    string    `json:"order_id"`
	TicketID   string    `json:"ticket_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventSink receives attach events. Sinks are best-effort: a sink error
// never fails the attach that produced the event.
type EventSink interface {
	TicketAttached(ctx context.Context, event AttachedEvent) error
}
