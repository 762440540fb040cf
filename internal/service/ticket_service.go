package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/events"
	"github.com/support-hub/support-hub/internal/repository"
)

// TicketService coordinates ticket workflows outside the creation saga:
// comment appends, status transitions, and filtered queries. Every mutation
// appends exactly one audit event (transitions to CLOSED/CANCELLED append a
// second CLOSED event) and bumps UpdatedAt.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	retry      RetryConfig
	logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher, retry RetryConfig, logger *zap.Logger) *TicketService {
	return &TicketService{
		tickets:    tickets,
		dispatcher: dispatcher,
		retry:      retry,
		logger:     logger,
	}
}

// Save persists the ticket under bounded retry. Duplicate idempotency key
// collisions are surfaced immediately; retrying them cannot succeed.
func (s *TicketService) Save(ctx context.Context, ticket *domain.Ticket) error {
	var dupErr error
	err := withRetry(ctx, s.retry, func(ctx context.Context) error {
		err := s.tickets.Save(ctx, ticket)
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			dupErr = err
			return nil
		}
		return err
	})
	if dupErr != nil {
		return dupErr
	}
	return err
}

// FindByID looks up a ticket by its generated id.
func (s *TicketService) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.FindByID(ctx, id)
}

// FindByIdempotencyKey looks up the ticket claimed by the given key.
func (s *TicketService) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error) {
	return s.tickets.FindByIdempotencyKey(ctx, key)
}

// FindBySyncStatus scans tickets by saga sync status.
func (s *TicketService) FindBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Ticket, error) {
	return s.tickets.FindBySyncStatus(ctx, status)
}

// AddComment appends a comment and its COMMENT_ADDED event.
func (s *TicketService) AddComment(ctx context.Context, ticketID, content, authorExternalID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := domain.NewTicketComment(strings.TrimSpace(content), authorExternalID)
	ticket.AddComment(comment)
	ticket.AddEvent(domain.NewTicketEvent(
		domain.EventTypeCommentAdded,
		"Comment added: "+comment.Content,
		authorExternalID,
	))

	if err := s.Save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:               events.EventTicketCommentAdded,
		TicketID:           ticket.ID,
		CustomerExternalID: ticket.CustomerExternalID,
		Payload: events.CommentAddedPayload{
			CommentID: comment.ID,
			Author:    authorExternalID,
		},
	})
	return ticket, nil
}

// UpdateStatus transitions the ticket status. A same-status update is a
// no-op. Transitions to CLOSED or CANCELLED append a CLOSED event in
// addition to the STATUS_CHANGED event.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, performedBy string) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if oldStatus == newStatus {
		return ticket, nil
	}

	ticket.Status = newStatus
	ticket.AddEvent(domain.NewTicketEvent(
		domain.EventTypeStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		performedBy,
	))
	if newStatus == domain.TicketStatusClosed || newStatus == domain.TicketStatusCancelled {
		ticket.AddEvent(domain.NewTicketEvent(
			domain.EventTypeClosed,
			"Ticket "+strings.ToLower(string(newStatus)),
			performedBy,
		))
	}

	if err := s.Save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:               events.EventTicketStatusChanged,
		TicketID:           ticket.ID,
		CustomerExternalID: ticket.CustomerExternalID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// FindTickets returns tickets matching the filter.
func (s *TicketService) FindTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.FindWithFilter(ctx, filter)
}

// FindTicketsByCustomer returns a customer's tickets with optional
// status/priority filters.
func (s *TicketService) FindTicketsByCustomer(ctx context.Context, customerExternalID string, status *domain.TicketStatus, priority *domain.TicketPriority) ([]domain.Ticket, error) {
	return s.tickets.FindWithFilter(ctx, repository.TicketFilter{
		CustomerExternalID: &customerExternalID,
		Status:             status,
		Priority:           priority,
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}
