package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/events"
	"github.com/support-hub/support-hub/internal/repository"
)

func testRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func seedTicket(t *testing.T, repo *fakeTicketRepo) *domain.Ticket {
	t.Helper()
	ticket := domain.NewTicket("c1", "title", "desc", "", "")
	if err := repo.Save(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func TestAddComment(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(repo, dispatcher, testRetry(), zap.NewNop())
	seeded := seedTicket(t, repo)

	ticket, err := svc.AddComment(context.Background(), seeded.ID, "  have you tried rebooting  ", "agent1")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(ticket.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(ticket.Comments))
	}
	comment := ticket.Comments[0]
	if comment.Content != "have you tried rebooting" || comment.AuthorExternalID != "agent1" {
		t.Fatalf("unexpected comment: %+v", comment)
	}
	last := ticket.Events[len(ticket.Events)-1]
	if last.EventType != domain.EventTypeCommentAdded {
		t.Fatalf("last event = %+v", last)
	}
	if last.Description != "Comment added: have you tried rebooting" {
		t.Fatalf("event description = %q", last.Description)
	}
	if types := dispatcher.types(); len(types) != 1 || types[0] != events.EventTicketCommentAdded {
		t.Fatalf("published events = %v", types)
	}
}

func TestAddCommentUnknownTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())

	_, err := svc.AddComment(context.Background(), "missing", "hi", "agent1")
	if !errors.Is(err, repository.ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestUpdateStatusTransition(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(repo, dispatcher, testRetry(), zap.NewNop())
	seeded := seedTicket(t, repo)

	ticket, err := svc.UpdateStatus(context.Background(), seeded.ID, domain.TicketStatusInProgress, "agent1")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s", ticket.Status)
	}
	last := ticket.Events[len(ticket.Events)-1]
	if last.EventType != domain.EventTypeStatusChanged || last.Description != "Status changed from OPEN to IN_PROGRESS" {
		t.Fatalf("unexpected event: %+v", last)
	}
	if types := dispatcher.types(); len(types) != 1 || types[0] != events.EventTicketStatusChanged {
		t.Fatalf("published events = %v", types)
	}
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(repo, dispatcher, testRetry(), zap.NewNop())
	seeded := seedTicket(t, repo)

	ticket, err := svc.UpdateStatus(context.Background(), seeded.ID, domain.TicketStatusOpen, "agent1")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(ticket.Events) != 0 {
		t.Fatalf("no-op appended events: %+v", ticket.Events)
	}
	if len(dispatcher.types()) != 0 {
		t.Fatalf("no-op published events: %v", dispatcher.types())
	}
}

func TestUpdateStatusCloseAppendsClosedEvent(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())
	seeded := seedTicket(t, repo)

	ticket, err := svc.UpdateStatus(context.Background(), seeded.ID, domain.TicketStatusClosed, "agent1")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(ticket.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(ticket.Events))
	}
	if ticket.Events[0].EventType != domain.EventTypeStatusChanged {
		t.Fatalf("first event = %+v", ticket.Events[0])
	}
	closed := ticket.Events[1]
	if closed.EventType != domain.EventTypeClosed || closed.Description != "Ticket closed" {
		t.Fatalf("closed event = %+v", closed)
	}
}

func TestUpdateStatusCancelAppendsClosedEvent(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())
	seeded := seedTicket(t, repo)

	ticket, err := svc.UpdateStatus(context.Background(), seeded.ID, domain.TicketStatusCancelled, "agent1")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	closed := ticket.Events[len(ticket.Events)-1]
	if closed.EventType != domain.EventTypeClosed || closed.Description != "Ticket cancelled" {
		t.Fatalf("closed event = %+v", closed)
	}
}

func TestSaveRetriesTransientFailure(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())

	attempts := 0
	repo.saveErr = func(*domain.Ticket) error {
		attempts++
		if attempts < 3 {
			return errors.New("store flake")
		}
		return nil
	}

	if err := svc.Save(context.Background(), domain.NewTicket("c1", "t", "d", "", "")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSaveExhaustsRetries(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())

	attempts := 0
	storeErr := errors.New("store down")
	repo.saveErr = func(*domain.Ticket) error {
		attempts++
		return storeErr
	}

	err := svc.Save(context.Background(), domain.NewTicket("c1", "t", "d", "", ""))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSaveDuplicateKeyIsNotRetried(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())

	attempts := 0
	repo.saveErr = func(*domain.Ticket) error {
		attempts++
		return repository.ErrDuplicateIdempotencyKey
	}

	err := svc.Save(context.Background(), domain.NewTicket("c1", "t", "d", "", ""))
	if !errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestFindTicketsByCustomer(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &recordingDispatcher{}, testRetry(), zap.NewNop())

	for _, customer := range []string{"c1", "c1", "c2"} {
		if err := repo.Save(context.Background(), domain.NewTicket(customer, "t", "d", "", "")); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tickets, err := svc.FindTicketsByCustomer(context.Background(), "c1", nil, nil)
	if err != nil {
		t.Fatalf("FindTicketsByCustomer: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2", len(tickets))
	}
	for _, ticket := range tickets {
		if ticket.CustomerExternalID != "c1" {
			t.Fatalf("foreign ticket returned: %+v", ticket)
		}
	}
}
