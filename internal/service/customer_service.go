package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/repository"
	"github.com/support-hub/support-hub/pkg/util"
)

// CustomerService manages customer profiles and the open-ticket counter
// contract consumed by the creation saga.
type CustomerService struct {
	customers repository.CustomerRepository
	retry     RetryConfig
	logger    *zap.Logger
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, retry RetryConfig, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, retry: retry, logger: logger}
}

// FindByExternalID fetches a customer profile.
func (s *CustomerService) FindByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	customer, err := s.customers.GetByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return nil, util.NewNotFound("customer", map[string]any{"external_id": externalID})
	}
	return customer, err
}

// ExistsByExternalID is the read-only precondition check used by the saga.
func (s *CustomerService) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	return s.customers.ExistsByExternalID(ctx, externalID)
}

// CreateCustomer persists a new customer with a generated, collision-checked
// external id and a zero counter.
func (s *CustomerService) CreateCustomer(ctx context.Context, name, email string) (*domain.Customer, error) {
	externalID, err := s.generateExternalID(ctx)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		ExternalID:      externalID,
		Name:            strings.TrimSpace(name),
		Email:           strings.TrimSpace(email),
		OpenTicketCount: 0,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, util.NewConflict("email already exists", map[string]any{"email": customer.Email})
		}
		return nil, err
	}
	s.logger.Info("customer created", zap.String("external_id", externalID))
	return customer, nil
}

// UpdateCustomer updates the profile fields of an existing customer.
func (s *CustomerService) UpdateCustomer(ctx context.Context, externalID, name, email string) (*domain.Customer, error) {
	customer := &domain.Customer{
		ExternalID: externalID,
		Name:       strings.TrimSpace(name),
		Email:      strings.TrimSpace(email),
	}
	if err := s.customers.UpdateProfile(ctx, customer); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, util.NewConflict("email already exists", map[string]any{"email": customer.Email})
		case errors.Is(err, repository.ErrCustomerNotFound):
			return nil, util.NewNotFound("customer", map[string]any{"external_id": externalID})
		default:
			return nil, err
		}
	}
	return customer, nil
}

// SearchCustomers filters customers by substring on name, email or external id.
func (s *CustomerService) SearchCustomers(ctx context.Context, name, email, externalID string) ([]domain.Customer, error) {
	return s.customers.Search(ctx, name, email, externalID)
}

// IncrementOpenTicketCount applies the counter increment under bounded retry
// with exponential backoff. A missing customer is not retried. After
// exhausting attempts the last error is returned and the caller treats it as
// a phase-2 failure.
func (s *CustomerService) IncrementOpenTicketCount(ctx context.Context, externalID string) error {
	var notFound error
	err := withRetry(ctx, s.retry, func(ctx context.Context) error {
		err := s.customers.IncrementOpenTicketCount(ctx, externalID)
		if errors.Is(err, repository.ErrCustomerNotFound) {
			notFound = err
			return nil
		}
		return err
	})
	if notFound != nil {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("increment open ticket count for %s: %w", externalID, err)
	}
	return nil
}

func (s *CustomerService) generateExternalID(ctx context.Context) (string, error) {
	for {
		candidate := fmt.Sprintf("customer%d", rand.Intn(1000000))
		exists, err := s.customers.ExistsByExternalID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}
