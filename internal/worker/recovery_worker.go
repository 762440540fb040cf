package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/observability"
)

// FailedTicketSource scans the ticket store for unsynced tickets.
type FailedTicketSource interface {
	FindBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Ticket, error)
}

// TicketRecoverer re-runs the saga's second phase for one ticket. It must
// swallow per-ticket failures; the sweep treats every call as best-effort.
type TicketRecoverer interface {
	RecoverTicket(ctx context.Context, ticket *domain.Ticket)
}

// RecoveryWorker periodically retries the counter-increment phase for
// tickets left in the FAILED state. Sweeps are single-flight: a cycle that
// is still running when the ticker fires again is skipped, never overlapped,
// since two concurrent sweeps retrying the same ticket could double-count.
type RecoveryWorker struct {
	tickets   FailedTicketSource
	recoverer TicketRecoverer
	interval  time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger

	sweeping sync.Mutex
}

// NewRecoveryWorker constructs the worker.
func NewRecoveryWorker(tickets FailedTicketSource, recoverer TicketRecoverer, interval time.Duration, metrics *observability.Metrics, logger *zap.Logger) *RecoveryWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RecoveryWorker{
		tickets:   tickets,
		recoverer: recoverer,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run drives sweeps on a fixed interval until the context is cancelled.
func (w *RecoveryWorker) Run(ctx context.Context) {
	w.logger.Info("recovery sweeper started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("recovery sweeper stopped")
			return
		case <-ticker.C:
			w.RecoverFailedTickets(ctx)
		}
	}
}

// RecoverFailedTickets performs one sweep. A failure for one ticket never
// aborts processing of the others, and there is no retry bound: a ticket
// stays eligible until it syncs or is removed by an operator.
func (w *RecoveryWorker) RecoverFailedTickets(ctx context.Context) {
	if !w.sweeping.TryLock() {
		w.logger.Debug("previous sweep still running, skipping")
		return
	}
	defer w.sweeping.Unlock()

	failed, err := w.tickets.FindBySyncStatus(ctx, domain.SyncStatusFailed)
	if err != nil {
		w.logger.Error("failed to scan for unsynced tickets", zap.Error(err))
		return
	}
	w.metrics.RecordSweep()
	w.logger.Info("found failed tickets to retry recovery", zap.Int("count", len(failed)))

	for i := range failed {
		if ctx.Err() != nil {
			return
		}
		w.recoverer.RecoverTicket(ctx, &failed[i])
	}
}
