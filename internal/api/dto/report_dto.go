package dto

import "github.com/spec-kit/support-crm/internal/domain"

// StatusSummaryResponse groups ticket counts by status. Every status key is
// present even when zero.
type StatusSummaryResponse struct {
	TotalTickets int                         `json:"total_tickets"`
	ByStatus     map[domain.TicketStatus]int `json:"by_status"`
}

// AgentWorkloadResponse is one agent's assigned tickets by status.
type AgentWorkloadResponse struct {
	AgentID  string                      `json:"agent_id"`
	Total    int                         `json:"total"`
	ByStatus map[domain.TicketStatus]int `json:"by_status"`
}

// ResponseTimeResponse reports first-response latency statistics. The
// aggregate fields are null when no ticket qualifies.
type ResponseTimeResponse struct {
	SampleSize     int      `json:"sample_size"`
	AverageSeconds *float64 `json:"average_seconds"`
	MinSeconds     *float64 `json:"min_seconds"`
	MaxSeconds     *float64 `json:"max_seconds"`
}
