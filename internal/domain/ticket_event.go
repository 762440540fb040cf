package domain

import "time"

// TicketEventType identifies what happened to a ticket.
type TicketEventType string

const (
	EventTypeCreated         TicketEventType = "CREATED"
	EventTypeStatusChanged   TicketEventType = "STATUS_CHANGED"
	EventTypePriorityChanged TicketEventType = "PRIORITY_CHANGED"
	EventTypeCommentAdded    TicketEventType = "COMMENT_ADDED"
	EventTypeAssigned        TicketEventType = "ASSIGNED"
	EventTypeReopened        TicketEventType = "REOPENED"
	EventTypeClosed          TicketEventType = "CLOSED"
)

// Canonical event descriptions used by the creation saga.
const (
	DescTicketCreated           = "Ticket created"
	DescCountIncremented        = "Open ticket count incremented"
	DescCountIncrementedRecover = "Open ticket count incremented (recovered)"
)

// TicketEvent is one immutable entry in a ticket's embedded audit log.
type TicketEvent struct {
	EventType   TicketEventType `json:"event_type"`
	Description string          `json:"description"`
	PerformedBy string          `json:"performed_by"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewTicketEvent stamps an event with the current time.
func NewTicketEvent(eventType TicketEventType, description, performedBy string) TicketEvent {
	return TicketEvent{
		EventType:   eventType,
		Description: description,
		PerformedBy: performedBy,
		Timestamp:   time.Now().UTC(),
	}
}
