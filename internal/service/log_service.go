package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/repository"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

// LogService records customer interactions against tickets. Entries are
// append-only; the customer id is always taken from the referenced ticket so
// callers cannot introduce a mismatch.
type LogService struct {
	logs       repository.LogRepository
	tickets    repository.TicketRepository
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// LogDependencies bundles collaborators for the log service.
type LogDependencies struct {
	LogRepo      repository.LogRepository
	TicketRepo   repository.TicketRepository
	CustomerRepo repository.CustomerRepository
	Dispatcher   events.Dispatcher
}

// NewLogService constructs the service.
func NewLogService(deps LogDependencies) *LogService {
	return &LogService{
		logs:       deps.LogRepo,
		tickets:    deps.TicketRepo,
		customers:  deps.CustomerRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func (s *LogService) WithClock(now func() time.Time) *LogService {
	s.now = now
	return s
}

// Create appends one communication entry to a ticket's trail.
func (s *LogService) Create(ctx context.Context, actorID, ticketID string, logType domain.LogType, content string) (*domain.CommunicationLog, error) {
	if !domain.ValidLogType(logType) {
		return nil, apperrors.NewValidationError("unknown communication type", map[string]any{"type": logType})
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}

	log := &domain.CommunicationLog{
		TicketID:   ticket.ID,
		CustomerID: ticket.CustomerID,
		Type:       logType,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommunicationLogged,
			TicketID:  ticket.ID,
			ActorID:   actorID,
			Timestamp: s.now(),
			Payload: events.CommunicationLoggedPayload{
				LogID:      log.ID,
				CustomerID: log.CustomerID,
				LogType:    log.Type,
			},
		})
	}
	return log, nil
}

// ListByTicket returns a ticket's trail in chronological order.
func (s *LogService) ListByTicket(ctx context.Context, ticketID string) ([]domain.CommunicationLog, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}
	logs, err := s.logs.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}

// ListByCustomer returns every interaction with a customer, across tickets,
// in chronological order.
func (s *LogService) ListByCustomer(ctx context.Context, customerID string) ([]domain.CommunicationLog, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewCustomerNotFound(customerID)
		}
		return nil, apperrors.MapError(err)
	}
	logs, err := s.logs.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}
