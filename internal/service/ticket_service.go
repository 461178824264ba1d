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

// TicketService owns the ticket lifecycle: creation, patch updates through
// the status state machine, and reads. Referential integrity against the
// customer directory and the assignee's role is validated here; the
// transition rules themselves live on domain.Ticket.
type TicketService struct {
	tickets    repository.TicketRepository
	customers  repository.CustomerRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CustomerRepo repository.CustomerRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		customers:  deps.CustomerRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CustomerID  string
	AssigneeID  *string
}

// TicketPatch carries optional field edits; nil fields are left untouched.
// Status edits go through the transition table.
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	AssigneeID  *string
}

// TicketListInput is a conjunction of equality filters.
type TicketListInput struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssigneeID  *string
	CustomerID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// Create opens a new ticket for an existing customer.
func (s *TicketService) Create(ctx context.Context, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewCustomerNotFound(input.CustomerID)
		}
		return nil, apperrors.MapError(err)
	}
	if input.AssigneeID != nil {
		if err := s.resolveAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	ticket := &domain.Ticket{
		CustomerID:  input.CustomerID,
		AssigneeID:  input.AssigneeID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketCreatedPayload{
			CustomerID: ticket.CustomerID,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// Update applies a patch to the ticket. Validation and mutation run inside
// the repository's Mutate boundary, so concurrent updates of the same ticket
// observe each other fully applied or not at all.
func (s *TicketService) Update(ctx context.Context, actorID, ticketID string, patch TicketPatch) (*domain.Ticket, error) {
	if patch.Priority != nil && !domain.ValidPriority(*patch.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *patch.Priority})
	}
	if patch.Status != nil && !domain.ValidStatus(*patch.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *patch.Status})
	}
	if patch.AssigneeID != nil {
		if err := s.resolveAssignee(ctx, *patch.AssigneeID); err != nil {
			return nil, err
		}
	}

	var (
		oldStatus   domain.TicketStatus
		oldPriority domain.TicketPriority
		assigned    bool
	)
	ticket, err := s.tickets.Mutate(ctx, ticketID, func(t *domain.Ticket) error {
		oldStatus = t.Status
		oldPriority = t.Priority
		changed := false

		if patch.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *patch.AssigneeID) {
			assignee := *patch.AssigneeID
			t.AssigneeID = &assignee
			assigned = true
			changed = true
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return apperrors.NewValidationError("title required", nil)
			}
			if title != t.Title {
				t.Title = title
				changed = true
			}
		}
		if patch.Description != nil && *patch.Description != t.Description {
			t.Description = *patch.Description
			changed = true
		}
		if patch.Priority != nil && *patch.Priority != t.Priority {
			t.Priority = *patch.Priority
			changed = true
		}
		if patch.Status != nil && *patch.Status != t.Status {
			if err := t.Transition(*patch.Status, s.now()); err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidTransition):
					return apperrors.NewInvalidTransition(string(t.Status), string(*patch.Status))
				case errors.Is(err, domain.ErrAssigneeRequired):
					return apperrors.NewInvalidAssignee("assignment required before starting progress", map[string]any{"ticket_id": t.ID})
				}
				return err
			}
			changed = true
		}

		if changed {
			t.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  actorID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if ticket.Priority != oldPriority {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			ActorID:  actorID,
			Payload: events.TicketPriorityChangedPayload{
				OldPriority: oldPriority,
				NewPriority: ticket.Priority,
			},
		})
	}
	if assigned {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  actorID,
			Payload: events.TicketAssignedPayload{
				AssigneeID: *ticket.AssigneeID,
			},
		})
	}
	return ticket, nil
}

// Get fetches a ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// List returns tickets matching the filter, oldest first.
func (s *TicketService) List(ctx context.Context, input TicketListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		CustomerID:  input.CustomerID,
		AssigneeID:  input.AssigneeID,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	if input.Status != nil {
		filter.Statuses = []domain.TicketStatus{*input.Status}
	}
	if input.Priority != nil {
		filter.Priorities = []domain.TicketPriority{*input.Priority}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) resolveAssignee(ctx context.Context, assigneeID string) error {
	user, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidAssignee("assigned agent not found", map[string]any{"assigned_agent_id": assigneeID})
		}
		return apperrors.MapError(err)
	}
	if !user.CanBeAssigned() {
		return apperrors.NewInvalidAssignee("user cannot take ticket assignments", map[string]any{"assigned_agent_id": assigneeID, "role": user.Role})
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
