package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/support-hub/support-hub/internal/domain"
)

// TicketFilter captures query parameters for ticket scans. Nil fields match
// everything.
type TicketFilter struct {
	CustomerExternalID *string
	Status             *domain.TicketStatus
	Priority           *domain.TicketPriority
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

// Matches reports whether the ticket satisfies every set filter field.
func (f TicketFilter) Matches(t *domain.Ticket) bool {
	if f.CustomerExternalID != nil && t.CustomerExternalID != *f.CustomerExternalID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// TicketRepository encapsulates ticket persistence. Tickets are stored as
// JSON documents; the idempotency key is claimed with SETNX, which is the
// uniqueness backstop for concurrent creates with the same key.
type TicketRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket) error
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error)
	FindBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Ticket, error)
	FindWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	client *redis.Client
}

// NewTicketRepository instantiates the Redis-backed document store.
func NewTicketRepository(client *redis.Client) TicketRepository {
	return &ticketRepository{client: client}
}

func ticketKey(id string) string          { return "ticket:" + id }
func idempotencyKey(key string) string    { return "ticket:idem:" + key }
func syncKey(s domain.SyncStatus) string  { return "ticket:sync:" + string(s) }
func customerTicketsKey(id string) string { return "ticket:customer:" + id }

const allTicketsKey = "ticket:all"

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	created := ticket.ID == ""
	if created {
		ticket.ID = uuid.NewString()
		now := time.Now().UTC()
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = now
			ticket.UpdatedAt = now
		}
	}

	if created && ticket.IdempotencyKey != "" {
		claimed, err := r.client.SetNX(ctx, idempotencyKey(ticket.IdempotencyKey), ticket.ID, 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			holder, err := r.client.Get(ctx, idempotencyKey(ticket.IdempotencyKey)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if holder != ticket.ID {
				return ErrDuplicateIdempotencyKey
			}
		}
	}

	doc, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode ticket %s: %w", ticket.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, ticketKey(ticket.ID), doc, 0)
	pipe.SAdd(ctx, allTicketsKey, ticket.ID)
	pipe.SAdd(ctx, customerTicketsKey(ticket.CustomerExternalID), ticket.ID)
	for _, status := range []domain.SyncStatus{domain.SyncStatusSynced, domain.SyncStatusFailed} {
		if status == ticket.SyncStatus {
			pipe.SAdd(ctx, syncKey(status), ticket.ID)
		} else {
			pipe.SRem(ctx, syncKey(status), ticket.ID)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	doc, err := r.client.Get(ctx, ticketKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeTicket(doc)
}

func (r *ticketRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error) {
	id, err := r.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ticketRepository) FindBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Ticket, error) {
	ids, err := r.client.SMembers(ctx, syncKey(status)).Result()
	if err != nil {
		return nil, err
	}
	return r.loadTickets(ctx, ids)
}

func (r *ticketRepository) FindWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	indexKey := allTicketsKey
	if filter.CustomerExternalID != nil {
		indexKey = customerTicketsKey(*filter.CustomerExternalID)
	}
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	tickets, err := r.loadTickets(ctx, ids)
	if err != nil {
		return nil, err
	}

	filtered := tickets[:0]
	for i := range tickets {
		if filter.Matches(&tickets[i]) {
			filtered = append(filtered, tickets[i])
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

func (r *ticketRepository) loadTickets(ctx context.Context, ids []string) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return []domain.Ticket{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ticketKey(id)
	}
	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(docs))
	for _, raw := range docs {
		// index sets can briefly reference a deleted document
		str, ok := raw.(string)
		if !ok {
			continue
		}
		ticket, err := decodeTicket([]byte(str))
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, nil
}

func decodeTicket(doc []byte) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := json.Unmarshal(doc, &ticket); err != nil {
		return nil, fmt.Errorf("decode ticket document: %w", err)
	}
	return &ticket, nil
}
