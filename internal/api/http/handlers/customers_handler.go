package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/support-hub/support-hub/internal/api/dto"
	"github.com/support-hub/support-hub/internal/auth"
	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/service"
	apperrors "github.com/support-hub/support-hub/pkg/util"
)

// CustomersHandler manages customer endpoints.
type CustomersHandler struct {
	customers *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customers *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

// CreateCustomer POST /api/customers. Agent/admin only.
func (h *CustomersHandler) CreateCustomer(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateProfile(req.Name, req.Email); err != nil {
		return err
	}
	customer, err := h.customers.CreateCustomer(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerResponse(customer)})
}

// GetOwnProfile GET /api/customers/me.
func (h *CustomersHandler) GetOwnProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	customer, err := h.customers.FindByExternalID(c.UserContext(), principal.ExternalID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// UpdateOwnProfile PUT /api/customers/me.
func (h *CustomersHandler) UpdateOwnProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateProfile(req.Name, req.Email); err != nil {
		return err
	}
	customer, err := h.customers.UpdateCustomer(c.UserContext(), principal.ExternalID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// SearchCustomers GET /api/customers. Agent/admin only.
func (h *CustomersHandler) SearchCustomers(c *fiber.Ctx) error {
	customers, err := h.customers.SearchCustomers(
		c.UserContext(),
		c.Query("name"),
		c.Query("email"),
		c.Query("external_id"),
	)
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, customerResponse(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCustomer GET /api/customers/:externalId. Agent/admin only.
func (h *CustomersHandler) GetCustomer(c *fiber.Ctx) error {
	customer, err := h.customers.FindByExternalID(c.UserContext(), c.Params("externalId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

func validateProfile(name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("name and email required", nil)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}
	return nil
}

func customerResponse(customer *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ExternalID:      customer.ExternalID,
		Name:            customer.Name,
		Email:           customer.Email,
		OpenTicketCount: customer.OpenTicketCount,
		CreatedAt:       customer.CreatedAt,
		UpdatedAt:       customer.UpdatedAt,
	}
}
