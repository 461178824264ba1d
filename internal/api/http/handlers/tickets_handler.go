package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/auth"
	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/service"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	logs    *service.LogService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, logService *service.LogService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, logs: logService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.Context(), actor.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CustomerID:  req.CustomerID,
		AssigneeID:  req.AssignedAgentID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.tickets.List(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketFromDomain(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Update handles PATCH /tickets/:id. Status edits run through the lifecycle
// transition table and reject anything the table does not allow.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Update(c.Context(), actor.ID, c.Params("id"), service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssignedAgentID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// CreateLog handles POST /tickets/:id/logs.
func (h *TicketsHandler) CreateLog(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateLogRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entry, err := h.logs.Create(c.Context(), actor.ID, c.Params("id"), req.Type, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.LogFromDomain(entry)})
}

// ListLogs handles GET /tickets/:id/logs.
func (h *TicketsHandler) ListLogs(c *fiber.Ctx) error {
	logs, err := h.logs.ListByTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.LogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.LogFromDomain(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{}
	if status := c.Query("status"); status != "" {
		s := domain.TicketStatus(status)
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.TicketPriority(priority)
		input.Priority = &p
	}
	if agent := c.Query("assigned_agent_id"); agent != "" {
		input.AssigneeID = &agent
	}
	if customer := c.Query("customer_id"); customer != "" {
		input.CustomerID = &customer
	}
	input.CreatedFrom = parseTime(c.Query("created_from"))
	input.CreatedTo = parseTime(c.Query("created_to"))
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize
	return input
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

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
