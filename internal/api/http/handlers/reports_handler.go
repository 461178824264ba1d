package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/service"
)

// ReportsHandler exposes the reporting endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// TicketsSummary handles GET /reports/tickets-summary.
func (h *ReportsHandler) TicketsSummary(c *fiber.Ctx) error {
	summary, err := h.reports.TicketStatusSummary(c.Context(), parseReportQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusSummaryResponse{
		TotalTickets: summary.Total,
		ByStatus:     summary.Counts,
	}})
}

// AgentWorkload handles GET /reports/agent-workload.
func (h *ReportsHandler) AgentWorkload(c *fiber.Ctx) error {
	workloads, err := h.reports.AgentWorkloads(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AgentWorkloadResponse, 0, len(workloads))
	for _, w := range workloads {
		items = append(items, dto.AgentWorkloadResponse{
			AgentID:  w.AgentID,
			Total:    w.Total,
			ByStatus: w.Counts,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResponseTimes handles GET /reports/response-times. The aggregate fields
// come back null when no ticket in scope has a communication log.
func (h *ReportsHandler) ResponseTimes(c *fiber.Ctx) error {
	report, err := h.reports.ResponseTimes(c.Context(), parseReportQuery(c))
	if err != nil {
		return err
	}
	resp := dto.ResponseTimeResponse{}
	if report != nil {
		avg := report.Average.Seconds()
		min := report.Min.Seconds()
		max := report.Max.Seconds()
		resp = dto.ResponseTimeResponse{
			SampleSize:     report.SampleSize,
			AverageSeconds: &avg,
			MinSeconds:     &min,
			MaxSeconds:     &max,
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseReportQuery(c *fiber.Ctx) service.ReportFilter {
	filter := service.ReportFilter{}
	if agent := c.Query("agent_id"); agent != "" {
		filter.AgentID = &agent
	}
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	return filter
}
