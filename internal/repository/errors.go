package repository

import "errors"

var (
	// ErrTicketNotFound is returned by ticket lookups that match nothing.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrCustomerNotFound is returned by customer lookups that match nothing.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrDuplicateIdempotencyKey is returned when a create collides with an
	// idempotency key already claimed by another ticket. Callers treat this
	// as the idempotent-hit path and re-fetch the winner.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already in use")

	// ErrDuplicateEmail is returned when a customer write violates the email
	// uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already exists")
)
