package domain

import (
	"testing"
	"time"
)

func TestNewTicketDefaults(t *testing.T) {
	ticket := NewTicket("c1", "title", "desc", "", "")

	if ticket.Status != TicketStatusOpen {
		t.Fatalf("status = %s, want OPEN", ticket.Status)
	}
	if ticket.Priority != TicketPriorityMedium {
		t.Fatalf("priority = %s, want MEDIUM", ticket.Priority)
	}
	if ticket.SyncStatus != SyncStatusSynced {
		t.Fatalf("sync status = %s, want SYNCED", ticket.SyncStatus)
	}
	if ticket.CreatedAt.IsZero() || !ticket.CreatedAt.Equal(ticket.UpdatedAt) {
		t.Fatalf("timestamps: created=%v updated=%v", ticket.CreatedAt, ticket.UpdatedAt)
	}
}

func TestNewTicketExplicitValues(t *testing.T) {
	ticket := NewTicket("c1", "title", "desc", TicketStatusInProgress, TicketPriorityHigh)

	if ticket.Status != TicketStatusInProgress || ticket.Priority != TicketPriorityHigh {
		t.Fatalf("status=%s priority=%s", ticket.Status, ticket.Priority)
	}
}

func TestAddEventAppendsInOrder(t *testing.T) {
	ticket := NewTicket("c1", "title", "desc", "", "")
	before := ticket.UpdatedAt

	time.Sleep(time.Millisecond)
	ticket.AddEvent(NewTicketEvent(EventTypeCreated, DescTicketCreated, "c1"))
	ticket.AddEvent(NewTicketEvent(EventTypeStatusChanged, DescCountIncremented, "c1"))

	if len(ticket.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(ticket.Events))
	}
	if ticket.Events[0].EventType != EventTypeCreated || ticket.Events[1].EventType != EventTypeStatusChanged {
		t.Fatalf("events out of order: %+v", ticket.Events)
	}
	if !ticket.UpdatedAt.After(before) {
		t.Fatalf("UpdatedAt not bumped: %v -> %v", before, ticket.UpdatedAt)
	}
}

func TestAddCommentBumpsUpdatedAt(t *testing.T) {
	ticket := NewTicket("c1", "title", "desc", "", "")
	before := ticket.UpdatedAt

	time.Sleep(time.Millisecond)
	ticket.AddComment(NewTicketComment("looking into it", "agent1"))

	if len(ticket.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(ticket.Comments))
	}
	if ticket.Comments[0].ID == "" {
		t.Fatal("comment id not assigned")
	}
	if !ticket.UpdatedAt.After(before) {
		t.Fatalf("UpdatedAt not bumped: %v -> %v", before, ticket.UpdatedAt)
	}
}
