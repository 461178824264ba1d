package dto

import (
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
)

// CreateLogRequest payload. The customer id is never accepted here: it is
// derived from the ticket server-side.
type CreateLogRequest struct {
	Type    domain.LogType `json:"type"`
	Content string         `json:"content"`
}

// LogResponse represents a communication log on the wire.
type LogResponse struct {
	ID         string         `json:"id"`
	TicketID   string         `json:"ticket_id"`
	CustomerID string         `json:"customer_id"`
	Type       domain.LogType `json:"type"`
	Content    string         `json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
}

// LogFromDomain maps a log entry to its response shape.
func LogFromDomain(log *domain.CommunicationLog) LogResponse {
	return LogResponse{
		ID:         log.ID,
		TicketID:   log.TicketID,
		CustomerID: log.CustomerID,
		Type:       log.Type,
		Content:    log.Content,
		CreatedAt:  log.CreatedAt,
	}
}
