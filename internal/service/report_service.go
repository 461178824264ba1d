package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

// ReportService computes operational metrics from current ticket and log
// state on every call. Nothing is cached or persisted: a report reflects
// whatever was committed when it started.
type ReportService struct {
	tickets repository.TicketRepository
	logs    repository.LogRepository
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, logs repository.LogRepository) *ReportService {
	return &ReportService{tickets: tickets, logs: logs}
}

// ReportFilter narrows a report to an agent and/or creation window.
type ReportFilter struct {
	AgentID     *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// StatusSummary counts tickets per status. Every status appears, zero or not.
type StatusSummary struct {
	Total  int
	Counts map[domain.TicketStatus]int
}

// AgentWorkload is one agent's assigned tickets broken down by status. Only
// agents with at least one assigned ticket get an entry.
type AgentWorkload struct {
	AgentID string
	Total   int
	Counts  map[domain.TicketStatus]int
}

// ResponseTimeReport aggregates first-response latencies: the gap between a
// ticket's creation and its earliest communication log. Tickets without logs
// contribute nothing.
type ResponseTimeReport struct {
	SampleSize int
	Average    time.Duration
	Min        time.Duration
	Max        time.Duration
}

// TicketStatusSummary builds the status summary over tickets matching filter.
func (s *ReportService) TicketStatusSummary(ctx context.Context, filter ReportFilter) (*StatusSummary, error) {
	tickets, err := s.loadTickets(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummary{Counts: make(map[domain.TicketStatus]int, 4)}
	for _, status := range domain.TicketStatuses() {
		summary.Counts[status] = 0
	}
	for _, ticket := range tickets {
		summary.Counts[ticket.Status]++
		summary.Total++
	}
	return summary, nil
}

// AgentWorkloads reports per-agent assigned-ticket counts by status, sorted
// by agent id for stable output.
func (s *ReportService) AgentWorkloads(ctx context.Context) ([]AgentWorkload, error) {
	tickets, err := s.loadTickets(ctx, ReportFilter{})
	if err != nil {
		return nil, err
	}

	byAgent := make(map[string]*AgentWorkload)
	for _, ticket := range tickets {
		if ticket.AssigneeID == nil {
			continue
		}
		workload, ok := byAgent[*ticket.AssigneeID]
		if !ok {
			workload = &AgentWorkload{
				AgentID: *ticket.AssigneeID,
				Counts:  make(map[domain.TicketStatus]int, 4),
			}
			for _, status := range domain.TicketStatuses() {
				workload.Counts[status] = 0
			}
			byAgent[*ticket.AssigneeID] = workload
		}
		workload.Counts[ticket.Status]++
		workload.Total++
	}

	result := make([]AgentWorkload, 0, len(byAgent))
	for _, workload := range byAgent {
		result = append(result, *workload)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AgentID < result[j].AgentID
	})
	return result, nil
}

// ResponseTimes aggregates first-response latency over tickets matching
// filter. Returns nil when no ticket qualifies: an average over nothing is
// undefined, not zero.
func (s *ReportService) ResponseTimes(ctx context.Context, filter ReportFilter) (*ResponseTimeReport, error) {
	tickets, err := s.loadTickets(ctx, filter)
	if err != nil {
		return nil, err
	}
	firstLogs, err := s.logs.FirstLogTimes(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var (
		report ResponseTimeReport
		total  time.Duration
	)
	for _, ticket := range tickets {
		first, ok := firstLogs[ticket.ID]
		if !ok {
			continue
		}
		elapsed := first.Sub(ticket.CreatedAt)
		if report.SampleSize == 0 || elapsed < report.Min {
			report.Min = elapsed
		}
		if report.SampleSize == 0 || elapsed > report.Max {
			report.Max = elapsed
		}
		total += elapsed
		report.SampleSize++
	}
	if report.SampleSize == 0 {
		return nil, nil
	}
	report.Average = total / time.Duration(report.SampleSize)
	return &report, nil
}

func (s *ReportService) loadTickets(ctx context.Context, filter ReportFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		AssigneeID:  filter.AgentID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}
