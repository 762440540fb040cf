package dto

import "time"

// CreateCustomerRequest payload.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateCustomerRequest payload.
type UpdateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomerResponse provides customer profile info.
type CustomerResponse struct {
	ExternalID      string    `json:"external_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	OpenTicketCount int       `json:"open_ticket_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
