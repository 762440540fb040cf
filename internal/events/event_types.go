package events

import (
	"time"

	"github.com/support-hub/support-hub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketSyncFailed    EventType = "ticket_sync_failed"
	EventTicketRecovered     EventType = "ticket_recovered"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
)

// AllEventTypes lists every type, for blanket subscriptions.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketSyncFailed,
	EventTicketRecovered,
	EventTicketStatusChanged,
	EventTicketCommentAdded,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID                 string      `json:"id"`
	Type               EventType   `json:"type"`
	TicketID           string      `json:"ticket_id"`
	CustomerExternalID string      `json:"customer_external_id"`
	Timestamp          time.Time   `json:"timestamp"`
	Payload            interface{} `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
}

// SyncFailedPayload payload.
type SyncFailedPayload struct {
	Reason string `json:"reason"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID string `json:"comment_id"`
	Author    string `json:"author"`
}
