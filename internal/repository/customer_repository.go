package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/support-hub/support-hub/internal/domain"
)

const uniqueViolationCode = "23505"

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByExternalID(ctx context.Context, externalID string) (*domain.Customer, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	UpdateProfile(ctx context.Context, customer *domain.Customer) error
	Search(ctx context.Context, name, email, externalID string) ([]domain.Customer, error)
	IncrementOpenTicketCount(ctx context.Context, externalID string) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (external_id, name, email, open_ticket_count)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		customer.ExternalID,
		customer.Name,
		customer.Email,
		customer.OpenTicketCount,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *customerRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	const query = `
        SELECT id, external_id, name, email, open_ticket_count, created_at, updated_at
        FROM customers WHERE external_id=$1`
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&customer.ID,
		&customer.ExternalID,
		&customer.Name,
		&customer.Email,
		&customer.OpenTicketCount,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customers WHERE external_id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, externalID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *customerRepository) UpdateProfile(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, email=$2, updated_at=NOW()
        WHERE external_id=$3
        RETURNING id, open_ticket_count, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Email,
		customer.ExternalID,
	).Scan(&customer.ID, &customer.OpenTicketCount, &customer.CreatedAt, &customer.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCustomerNotFound
	}
	return err
}

func (r *customerRepository) Search(ctx context.Context, name, email, externalID string) ([]domain.Customer, error) {
	base := `SELECT id, external_id, name, email, open_ticket_count, created_at, updated_at FROM customers`
	clauses := []string{"1=1"}
	args := []any{}

	if strings.TrimSpace(name) != "" {
		args = append(args, "%"+strings.TrimSpace(name)+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if strings.TrimSpace(email) != "" {
		args = append(args, "%"+strings.TrimSpace(email)+"%")
		clauses = append(clauses, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	if strings.TrimSpace(externalID) != "" {
		args = append(args, "%"+strings.TrimSpace(externalID)+"%")
		clauses = append(clauses, fmt.Sprintf("external_id ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.ExternalID,
			&customer.Name,
			&customer.Email,
			&customer.OpenTicketCount,
			&customer.CreatedAt,
			&customer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

// IncrementOpenTicketCount applies the counter update as a single atomic
// statement. It carries no transactional link to any ticket-side write;
// cross-store consistency is the saga's responsibility.
func (r *customerRepository) IncrementOpenTicketCount(ctx context.Context, externalID string) error {
	const query = `
        UPDATE customers SET open_ticket_count = open_ticket_count + 1, updated_at=NOW()
        WHERE external_id=$1`
	cmd, err := r.pool.Exec(ctx, query, externalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
