package ticket

import "context"

//go:generate mockgen -source=repo_port.go -destination=mock_repo_test.go -package=ticket

// Repo is the persistence port for tickets.
type Repo interface {
	// Upsert writes the triple, overwriting any existing ticket with the
	// same ticket_id. Repeating an identical attach is a no-op success.
	Upsert(ctx context.Context, req AttachRequest) error

	// GetTickets returns tickets matching the status filter
	// case-insensitively. An empty filter or StatusAll returns all.
	GetTickets(ctx context.Context, statusFilter string) ([]Ticket, error)
}
