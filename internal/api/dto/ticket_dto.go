package dto

import (
	"time"

	"github.com/support-hub/support-hub/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerExternalID string                `json:"customer_external_id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Content string `json:"content"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketCommentResponse is an embedded comment.
type TicketCommentResponse struct {
	ID               string    `json:"id"`
	Content          string    `json:"content"`
	AuthorExternalID string    `json:"author_external_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TicketEventResponse is an embedded audit entry.
type TicketEventResponse struct {
	EventType   domain.TicketEventType `json:"event_type"`
	Description string                 `json:"description"`
	PerformedBy string                 `json:"performed_by"`
	Timestamp   time.Time              `json:"timestamp"`
}

// TicketResponse provides the full ticket aggregate.
type TicketResponse struct {
	ID                 string                  `json:"id"`
	CustomerExternalID string                  `json:"customer_external_id"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Status             domain.TicketStatus     `json:"status"`
	Priority           domain.TicketPriority   `json:"priority"`
	SyncStatus         domain.SyncStatus       `json:"sync_status"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	Comments           []TicketCommentResponse `json:"comments"`
	Events             []TicketEventResponse   `json:"events"`
}
