package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/events"
	"github.com/support-hub/support-hub/internal/observability"
	"github.com/support-hub/support-hub/internal/repository"
	"github.com/support-hub/support-hub/pkg/util"
)

// TicketStore is the narrow ticket persistence contract consumed by the saga.
type TicketStore interface {
	Save(ctx context.Context, ticket *domain.Ticket) error
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error)
	FindBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Ticket, error)
}

// CustomerCounterStore is the remote customer-aggregate contract consumed by
// the saga. Increment carries its own bounded retry; there is no shared
// transaction with the ticket store.
type CustomerCounterStore interface {
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	IncrementOpenTicketCount(ctx context.Context, externalID string) error
}

// TicketCreationOrchestrator runs the two-phase creation saga: persist the
// ticket (phase 1), then increment the customer's open-ticket counter and
// finalize the sync status (phase 2). Tickets whose phase 2 failed are left
// FAILED for the recovery sweeper.
type TicketCreationOrchestrator struct {
	tickets    TicketStore
	customers  CustomerCounterStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTicketCreationOrchestrator constructs the orchestrator.
func NewTicketCreationOrchestrator(tickets TicketStore, customers CustomerCounterStore, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *TicketCreationOrchestrator {
	return &TicketCreationOrchestrator{
		tickets:    tickets,
		customers:  customers,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateTicket creates at most one ticket per idempotency key and increments
// the customer counter exactly once per created ticket.
//
// On phase-2 failure the ticket is returned together with a SYNC_FAILED
// error: it is durably persisted with SyncStatus FAILED and will be retried
// by the sweeper. A retry with the same key returns the stored ticket.
func (o *TicketCreationOrchestrator) CreateTicket(ctx context.Context, ticket *domain.Ticket, idempotencyKey string) (*domain.Ticket, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		idempotencyKey = uuid.NewString()
	}

	existing, err := o.tickets.FindByIdempotencyKey(ctx, idempotencyKey)
	if err == nil {
		o.logger.Info("ticket already exists for idempotency key",
			zap.String("idempotency_key", idempotencyKey),
			zap.String("ticket_id", existing.ID))
		return existing, nil
	}
	if !errors.Is(err, repository.ErrTicketNotFound) {
		return nil, err
	}

	customerExternalID := ticket.CustomerExternalID
	exists, err := o.customers.ExistsByExternalID(ctx, customerExternalID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewPreconditionFailed(
			"customer does not exist: "+customerExternalID,
			map[string]any{"customer_external_id": customerExternalID})
	}

	// Phase 1: durable intent. After this save the ticket is visible even if
	// phase 2 never completes.
	ticket.IdempotencyKey = idempotencyKey
	ticket.AddEvent(domain.NewTicketEvent(domain.EventTypeCreated, domain.DescTicketCreated, customerExternalID))
	if err := o.tickets.Save(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			// a concurrent create with the same key won the insert; treat
			// this as the idempotent-hit path
			o.logger.Info("lost idempotency key race, returning winner",
				zap.String("idempotency_key", idempotencyKey))
			return o.tickets.FindByIdempotencyKey(ctx, idempotencyKey)
		}
		return nil, err
	}
	o.metrics.RecordTicketCreated()
	o.publish(ctx, events.Event{
		Type:               events.EventTicketCreated,
		TicketID:           ticket.ID,
		CustomerExternalID: customerExternalID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})

	// Phase 2: remote effect on the customer aggregate.
	if err := o.syncTicketToCustomer(ctx, ticket, domain.DescCountIncremented); err != nil {
		o.logger.Error("failed to increment ticket count",
			zap.String("customer_external_id", customerExternalID),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
		ticket.SyncStatus = domain.SyncStatusFailed
		if saveErr := o.tickets.Save(ctx, ticket); saveErr != nil {
			o.logger.Error("failed to persist FAILED sync status",
				zap.String("ticket_id", ticket.ID), zap.Error(saveErr))
		}
		o.metrics.RecordSyncFailure()
		o.publish(ctx, events.Event{
			Type:               events.EventTicketSyncFailed,
			TicketID:           ticket.ID,
			CustomerExternalID: customerExternalID,
			Payload:            events.SyncFailedPayload{Reason: err.Error()},
		})
		return ticket, util.NewSyncFailure(err)
	}

	o.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("idempotency_key", idempotencyKey))
	return ticket, nil
}

// RecoverTicket re-runs phase 2 for a FAILED ticket. It is invoked only by
// the recovery sweeper and never returns an error: failures are logged and
// the ticket stays FAILED for the next sweep.
func (o *TicketCreationOrchestrator) RecoverTicket(ctx context.Context, ticket *domain.Ticket) {
	customerExternalID := ticket.CustomerExternalID

	exists, err := o.customers.ExistsByExternalID(ctx, customerExternalID)
	if err != nil {
		o.logger.Error("customer existence check failed during recovery",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	if !exists {
		o.logger.Warn("customer no longer exists for failed ticket",
			zap.String("customer_external_id", customerExternalID),
			zap.String("ticket_id", ticket.ID))
		return
	}

	if err := o.syncTicketToCustomer(ctx, ticket, domain.DescCountIncrementedRecover); err != nil {
		o.logger.Error("failed to recover ticket",
			zap.String("customer_external_id", customerExternalID),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
		ticket.SyncStatus = domain.SyncStatusFailed
		if saveErr := o.tickets.Save(ctx, ticket); saveErr != nil {
			o.logger.Error("failed to persist FAILED sync status",
				zap.String("ticket_id", ticket.ID), zap.Error(saveErr))
		}
		return
	}

	o.metrics.RecordRecovered()
	o.publish(ctx, events.Event{
		Type:               events.EventTicketRecovered,
		TicketID:           ticket.ID,
		CustomerExternalID: customerExternalID,
	})
	o.logger.Info("recovered ticket", zap.String("ticket_id", ticket.ID))
}

func (o *TicketCreationOrchestrator) syncTicketToCustomer(ctx context.Context, ticket *domain.Ticket, eventDescription string) error {
	if err := o.customers.IncrementOpenTicketCount(ctx, ticket.CustomerExternalID); err != nil {
		return err
	}
	ticket.SyncStatus = domain.SyncStatusSynced
	ticket.AddEvent(domain.NewTicketEvent(domain.EventTypeStatusChanged, eventDescription, ticket.CustomerExternalID))
	return o.tickets.Save(ctx, ticket)
}

func (o *TicketCreationOrchestrator) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, o.dispatcher, event)
}
