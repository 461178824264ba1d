package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/service"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

// CustomersHandler manages customer endpoints.
type CustomersHandler struct {
	customers *service.CustomerService
	logs      *service.LogService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService, logService *service.LogService) *CustomersHandler {
	return &CustomersHandler{customers: customerService, logs: logService}
}

// Create handles POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.customers.Create(c.Context(), service.CustomerCreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CustomerFromDomain(customer)})
}

// List handles GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	customers, err := h.customers.List(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, dto.CustomerFromDomain(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.customers.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CustomerFromDomain(customer)})
}

// Update handles PATCH /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.customers.UpdateContact(c.Context(), c.Params("id"), service.CustomerPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CustomerFromDomain(customer)})
}

// ListLogs handles GET /customers/:id/logs. Entries come back in
// chronological order across all of the customer's tickets.
func (h *CustomersHandler) ListLogs(c *fiber.Ctx) error {
	logs, err := h.logs.ListByCustomer(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.LogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.LogFromDomain(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
