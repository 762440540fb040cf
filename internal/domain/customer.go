package domain

import "time"

// Customer is the relational aggregate holding the denormalized open-ticket
// counter. OpenTicketCount is mutated exclusively through the counter
// increment contract; the creation saga keeps it consistent with the number
// of durably synced tickets.
type Customer struct {
	ID              int64
	ExternalID      string
	Name            string
	Email           string
	OpenTicketCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
