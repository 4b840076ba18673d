package ticket

import "time"

// Ticket is one ticket attached to an order. Status is an open
// vocabulary owned by the ticketing platform; it is stored verbatim and
// compared case-insensitively on read.
type Ticket struct {
	TicketID  string    `json:"ticket_id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttachRequest is the validated triple forwarded by the relay.
type AttachRequest struct {
	OrderID  string `json:"order_id"`
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

// StatusAll is the filter value (case-insensitive) that selects every
// ticket regardless of status.
const StatusAll = "all"
