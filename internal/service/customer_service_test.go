package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/repository"
	"github.com/support-hub/support-hub/pkg/util"
)

// fakeCustomerRepo is an in-memory repository.CustomerRepository.
type fakeCustomerRepo struct {
	byExternalID map[string]*domain.Customer
	emails       map[string]bool

	existsCalls  int
	existsFirst  bool
	incrementErr func() error
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		byExternalID: make(map[string]*domain.Customer),
		emails:       make(map[string]bool),
	}
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if f.emails[customer.Email] {
		return repository.ErrDuplicateEmail
	}
	f.emails[customer.Email] = true
	customer.ID = int64(len(f.byExternalID) + 1)
	f.byExternalID[customer.ExternalID] = customer
	return nil
}

func (f *fakeCustomerRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	customer, ok := f.byExternalID[externalID]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return customer, nil
}

func (f *fakeCustomerRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	f.existsCalls++
	if f.existsFirst && f.existsCalls == 1 {
		return true, nil
	}
	_, ok := f.byExternalID[externalID]
	return ok, nil
}

func (f *fakeCustomerRepo) UpdateProfile(ctx context.Context, customer *domain.Customer) error {
	existing, ok := f.byExternalID[customer.ExternalID]
	if !ok {
		return repository.ErrCustomerNotFound
	}
	if customer.Email != existing.Email && f.emails[customer.Email] {
		return repository.ErrDuplicateEmail
	}
	existing.Name = customer.Name
	existing.Email = customer.Email
	return nil
}

func (f *fakeCustomerRepo) Search(ctx context.Context, name, email, externalID string) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, customer := range f.byExternalID {
		out = append(out, *customer)
	}
	return out, nil
}

func (f *fakeCustomerRepo) IncrementOpenTicketCount(ctx context.Context, externalID string) error {
	if f.incrementErr != nil {
		if err := f.incrementErr(); err != nil {
			return err
		}
	}
	customer, ok := f.byExternalID[externalID]
	if !ok {
		return repository.ErrCustomerNotFound
	}
	customer.OpenTicketCount++
	return nil
}

func newCustomerService(repo *fakeCustomerRepo) *CustomerService {
	return NewCustomerService(repo, testRetry(), zap.NewNop())
}

func TestCreateCustomerGeneratesExternalID(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo)

	customer, err := svc.CreateCustomer(context.Background(), " Ada Lovelace ", " ada@example.com ")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if customer.ExternalID == "" {
		t.Fatal("expected generated external id")
	}
	if customer.Name != "Ada Lovelace" || customer.Email != "ada@example.com" {
		t.Fatalf("fields not trimmed: %+v", customer)
	}
	if customer.OpenTicketCount != 0 {
		t.Fatalf("open ticket count = %d, want 0", customer.OpenTicketCount)
	}
}

func TestCreateCustomerRetriesExternalIDCollision(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.existsFirst = true
	svc := newCustomerService(repo)

	if _, err := svc.CreateCustomer(context.Background(), "Ada", "ada@example.com"); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if repo.existsCalls < 2 {
		t.Fatalf("exists calls = %d, want at least 2", repo.existsCalls)
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo)

	if _, err := svc.CreateCustomer(context.Background(), "Ada", "ada@example.com"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateCustomer(context.Background(), "Impostor", "ada@example.com")
	if !util.HasCode(err, "CONFLICT") {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestFindByExternalIDNotFound(t *testing.T) {
	svc := newCustomerService(newFakeCustomerRepo())

	_, err := svc.FindByExternalID(context.Background(), "ghost")
	if !util.HasCode(err, "NOT_FOUND") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateCustomerNotFound(t *testing.T) {
	svc := newCustomerService(newFakeCustomerRepo())

	_, err := svc.UpdateCustomer(context.Background(), "ghost", "Ada", "ada@example.com")
	if !util.HasCode(err, "NOT_FOUND") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIncrementOpenTicketCountRetriesTransientFailure(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo)

	customer, err := svc.CreateCustomer(context.Background(), "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	attempts := 0
	repo.incrementErr = func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset")
		}
		return nil
	}

	if err := svc.IncrementOpenTicketCount(context.Background(), customer.ExternalID); err != nil {
		t.Fatalf("IncrementOpenTicketCount: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	if customer.OpenTicketCount != 1 {
		t.Fatalf("open ticket count = %d, want 1", customer.OpenTicketCount)
	}
}

func TestIncrementOpenTicketCountExhaustsRetries(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo)

	customer, err := svc.CreateCustomer(context.Background(), "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	attempts := 0
	storeErr := errors.New("connection reset")
	repo.incrementErr = func() error {
		attempts++
		return storeErr
	}

	err = svc.IncrementOpenTicketCount(context.Background(), customer.ExternalID)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestIncrementOpenTicketCountMissingCustomerNotRetried(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo)

	attempts := 0
	repo.incrementErr = func() error {
		attempts++
		return repository.ErrCustomerNotFound
	}

	err := svc.IncrementOpenTicketCount(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}
