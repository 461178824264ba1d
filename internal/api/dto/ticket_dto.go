package dto

import (
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Priority        domain.TicketPriority `json:"priority"`
	CustomerID      string                `json:"customer_id"`
	AssignedAgentID *string               `json:"assigned_agent_id"`
}

// UpdateTicketRequest patch payload; absent fields are left unchanged.
type UpdateTicketRequest struct {
	Title           *string                `json:"title"`
	Description     *string                `json:"description"`
	Priority        *domain.TicketPriority `json:"priority"`
	Status          *domain.TicketStatus   `json:"status"`
	AssignedAgentID *string                `json:"assigned_agent_id"`
}

// TicketResponse represents a ticket on the wire.
type TicketResponse struct {
	ID              string                `json:"id"`
	CustomerID      string                `json:"customer_id"`
	AssignedAgentID *string               `json:"assigned_agent_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
}

// TicketFromDomain maps a ticket to its response shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              ticket.ID,
		CustomerID:      ticket.CustomerID,
		AssignedAgentID: ticket.AssigneeID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		ResolvedAt:      ticket.ResolvedAt,
	}
}
