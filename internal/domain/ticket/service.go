package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service owns attach and listing semantics on top of the repo port.
type Service struct {
	repo  Repo
	sinks []EventSink
}

func NewService(repo Repo, sinks ...EventSink) *Service {
	return &Service{repo: repo, sinks: sinks}
}

// Attach forwards the triple to the store and fans the attach event out
// to the configured sinks. Sink failures are logged, not returned: the
// write is the contract, the event trail is best-effort.
func (s *Service) Attach(ctx context.Context, req AttachRequest) error {
	if err := s.repo.Upsert(ctx, req); err != nil {
		return fmt.Errorf("attach ticket: %w", err)
	}

	event := AttachedEvent{
		OrderID:    req.OrderID,
		TicketID:   req.TicketID,
		Status:     req.Status,
		OccurredAt: time.Now().UTC(),
	}
	for _, sink := range s.sinks {
		if err := sink.TicketAttached(ctx, event); err != nil {
			slog.WarnContext(ctx, "ticket event sink failed",
				"ticket_id", req.TicketID, "error", err)
		}
	}

	return nil
}

// List returns tickets filtered by status. An empty filter or "all"
// (any case) returns everything; otherwise the match is exact but
// case-insensitive.
func (s *Service) List(ctx context.Context, statusFilter string) ([]Ticket, error) {
	filter := strings.TrimSpace(statusFilter)
	if strings.EqualFold(filter, StatusAll) {
		filter = ""
	}

	tickets, err := s.repo.GetTickets(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}
