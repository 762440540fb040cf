package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketComment is a customer- or agent-authored note embedded in a ticket.
type TicketComment struct {
	ID               string    `json:"id"`
	Content          string    `json:"content"`
	AuthorExternalID string    `json:"author_external_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewTicketComment builds a comment with a generated id.
func NewTicketComment(content, authorExternalID string) TicketComment {
	now := time.Now().UTC()
	return TicketComment{
		ID:               uuid.NewString(),
		Content:          content,
		AuthorExternalID: authorExternalID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
