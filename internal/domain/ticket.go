package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// SyncStatus marks whether the counter-increment phase of the creation saga
// has durably completed for this ticket. FAILED tickets are picked up by the
// recovery sweeper.
type SyncStatus string

const (
	SyncStatusSynced SyncStatus = "SYNCED"
	SyncStatusFailed SyncStatus = "FAILED"
)

// Ticket is the document aggregate for support requests. Comments and events
// are embedded append-only sequences; events are never reordered or removed.
type Ticket struct {
	ID                 string          `json:"id"`
	CustomerExternalID string          `json:"customer_external_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Status             TicketStatus    `json:"status"`
	Priority           TicketPriority  `json:"priority"`
	IdempotencyKey     string          `json:"idempotency_key"`
	SyncStatus         SyncStatus      `json:"sync_status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Comments           []TicketComment `json:"comments"`
	Events             []TicketEvent   `json:"events"`
}

// NewTicket builds a ticket with defaults applied.
func NewTicket(customerExternalID, title, description string, status TicketStatus, priority TicketPriority) *Ticket {
	if status == "" {
		status = TicketStatusOpen
	}
	if priority == "" {
		priority = TicketPriorityMedium
	}
	now := time.Now().UTC()
	return &Ticket{
		CustomerExternalID: customerExternalID,
		Title:              title,
		Description:        description,
		Status:             status,
		Priority:           priority,
		SyncStatus:         SyncStatusSynced,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// AddComment appends a comment and bumps UpdatedAt.
func (t *Ticket) AddComment(comment TicketComment) {
	t.Comments = append(t.Comments, comment)
	t.UpdatedAt = time.Now().UTC()
}

// AddEvent appends an audit event and bumps UpdatedAt.
func (t *Ticket) AddEvent(event TicketEvent) {
	t.Events = append(t.Events, event)
	t.UpdatedAt = time.Now().UTC()
}
