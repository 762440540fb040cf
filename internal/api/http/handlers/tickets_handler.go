package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/support-hub/support-hub/internal/api/dto"
	"github.com/support-hub/support-hub/internal/auth"
	"github.com/support-hub/support-hub/internal/domain"
	"github.com/support-hub/support-hub/internal/repository"
	"github.com/support-hub/support-hub/internal/service"
	apperrors "github.com/support-hub/support-hub/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	orchestrator *service.TicketCreationOrchestrator
	tickets      *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(orchestrator *service.TicketCreationOrchestrator, tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{orchestrator: orchestrator, tickets: tickets}
}

// CreateTicket POST /api/tickets. The Idempotency-Key header deduplicates
// retried submissions; a fresh key is generated when absent.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerExternalID == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("customer_external_id, title, description required", nil)
	}
	if req.Status != "" && !validStatus(req.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": req.Priority})
	}

	candidate := domain.NewTicket(
		req.CustomerExternalID,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		req.Status,
		req.Priority,
	)
	ticket, err := h.orchestrator.CreateTicket(c.UserContext(), candidate, c.Get("Idempotency-Key"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /api/tickets. Agent/admin listing with filters.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.FindTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListOwnTickets GET /api/tickets/me. A customer's own tickets.
func (h *TicketsHandler) ListOwnTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.FindTicketsByCustomer(c.UserContext(), principal.ExternalID, filter.Status, filter.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// GetTicket GET /api/tickets/:id. Customers may only read their own tickets.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapTicketLookupErr(err)
	}
	if principal.Role == auth.RoleCustomer && ticket.CustomerExternalID != principal.ExternalID {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	ticket, err := h.tickets.AddComment(c.UserContext(), c.Params("id"), req.Content, principal.ExternalID)
	if err != nil {
		return mapTicketLookupErr(err)
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateStatus PUT /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !validStatus(req.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, principal.ExternalID)
	if err != nil {
		return mapTicketLookupErr(err)
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func mapTicketLookupErr(err error) error {
	if err == repository.ErrTicketNotFound {
		return apperrors.NewNotFound("ticket", nil)
	}
	return err
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(statusStr)))
		if !validStatus(status) {
			return filter, apperrors.NewValidationError("invalid status", map[string]any{"status": statusStr})
		}
		filter.Status = &status
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority := domain.TicketPriority(strings.ToUpper(strings.TrimSpace(priorityStr)))
		if !validPriority(priority) {
			return filter, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priorityStr})
		}
		filter.Priority = &priority
	}
	if customer := c.Query("customer_external_id"); customer != "" {
		filter.CustomerExternalID = &customer
	}
	if from := parseTime(c.Query("from_date")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("to_date")); to != nil {
		filter.CreatedTo = to
	}
	return filter, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func validStatus(s domain.TicketStatus) bool {
	switch s {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed, domain.TicketStatusCancelled:
		return true
	}
	return false
}

func validPriority(p domain.TicketPriority) bool {
	switch p {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh:
		return true
	}
	return false
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	comments := make([]dto.TicketCommentResponse, 0, len(ticket.Comments))
	for _, comment := range ticket.Comments {
		comments = append(comments, dto.TicketCommentResponse{
			ID:               comment.ID,
			Content:          comment.Content,
			AuthorExternalID: comment.AuthorExternalID,
			CreatedAt:        comment.CreatedAt,
			UpdatedAt:        comment.UpdatedAt,
		})
	}
	eventsResp := make([]dto.TicketEventResponse, 0, len(ticket.Events))
	for _, event := range ticket.Events {
		eventsResp = append(eventsResp, dto.TicketEventResponse{
			EventType:   event.EventType,
			Description: event.Description,
			PerformedBy: event.PerformedBy,
			Timestamp:   event.Timestamp,
		})
	}
	return dto.TicketResponse{
		ID:                 ticket.ID,
		CustomerExternalID: ticket.CustomerExternalID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		SyncStatus:         ticket.SyncStatus,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
		Comments:           comments,
		Events:             eventsResp,
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}
