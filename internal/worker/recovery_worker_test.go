package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/observability"
)

type fakeSource struct {
	tickets []domain.Ticket
	err     error
}

func (f *fakeSource) FindBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tickets, nil
}

type fakeRecoverer struct {
	mu      sync.Mutex
	ids     []string
	blockCh chan struct{}
}

func (f *fakeRecoverer) RecoverTicket(ctx context.Context, ticket *domain.Ticket) {
	f.mu.Lock()
	f.ids = append(f.ids, ticket.ID)
	f.mu.Unlock()
	if f.blockCh != nil {
		<-f.blockCh
	}
}

func (f *fakeRecoverer) recovered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.ids...)
}

func failedTicket(id string) domain.Ticket {
	ticket := domain.NewTicket("c1", "t", "d", "", "")
	ticket.ID = id
	ticket.SyncStatus = domain.SyncStatusFailed
	return *ticket
}

func TestRecoverFailedTicketsSweep(t *testing.T) {
	source := &fakeSource{tickets: []domain.Ticket{failedTicket("t1"), failedTicket("t2")}}
	recoverer := &fakeRecoverer{}
	metrics := observability.NewMetrics()
	w := NewRecoveryWorker(source, recoverer, time.Minute, metrics, zap.NewNop())

	w.RecoverFailedTickets(context.Background())

	got := recoverer.recovered()
	if len(got) != 2 {
		t.Fatalf("recovered = %v, want 2 tickets", got)
	}
	_, _, _, sweeps := metrics.SagaCounters()
	if sweeps != 1 {
		t.Fatalf("sweeps = %d, want 1", sweeps)
	}
}

func TestRecoverFailedTicketsScanError(t *testing.T) {
	source := &fakeSource{err: errors.New("store down")}
	recoverer := &fakeRecoverer{}
	metrics := observability.NewMetrics()
	w := NewRecoveryWorker(source, recoverer, time.Minute, metrics, zap.NewNop())

	w.RecoverFailedTickets(context.Background())

	if got := recoverer.recovered(); len(got) != 0 {
		t.Fatalf("recovered = %v, want none", got)
	}
	_, _, _, sweeps := metrics.SagaCounters()
	if sweeps != 0 {
		t.Fatalf("sweeps = %d, want 0", sweeps)
	}
}

func TestSweepsDoNotOverlap(t *testing.T) {
	source := &fakeSource{tickets: []domain.Ticket{failedTicket("t1")}}
	recoverer := &fakeRecoverer{blockCh: make(chan struct{})}
	w := NewRecoveryWorker(source, recoverer, time.Minute, observability.NewMetrics(), zap.NewNop())

	done := make(chan struct{})
	go func() {
		w.RecoverFailedTickets(context.Background())
		close(done)
	}()

	// wait for the first sweep to block inside the recoverer
	deadline := time.After(time.Second)
	for len(recoverer.recovered()) == 0 {
		select {
		case <-deadline:
			t.Fatal("first sweep never started")
		case <-time.After(time.Millisecond):
		}
	}

	// a second sweep while the first is running must be skipped
	w.RecoverFailedTickets(context.Background())
	if got := recoverer.recovered(); len(got) != 1 {
		t.Fatalf("overlapping sweep ran: %v", got)
	}

	close(recoverer.blockCh)
	<-done
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	source := &fakeSource{tickets: []domain.Ticket{failedTicket("t1"), failedTicket("t2")}}
	recoverer := &fakeRecoverer{}
	w := NewRecoveryWorker(source, recoverer, time.Minute, observability.NewMetrics(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.RecoverFailedTickets(ctx)

	if got := recoverer.recovered(); len(got) != 0 {
		t.Fatalf("recovered = %v, want none after cancel", got)
	}
}

func TestRunStopsOnContextDone(t *testing.T) {
	source := &fakeSource{}
	w := NewRecoveryWorker(source, &fakeRecoverer{}, time.Hour, observability.NewMetrics(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
