package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository"
)

type ticketStore struct {
	s *Store
}

func (r *ticketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tickets[ticket.ID] = copyTicket(*ticket)
	return nil
}

func (r *ticketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	result := copyTicket(ticket)
	return &result, nil
}

func (r *ticketStore) Mutate(_ context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	lock := r.s.ticketLock(id)
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.RLock()
	ticket, ok := r.s.tickets[id]
	r.s.mu.RUnlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}

	working := copyTicket(ticket)
	if err := fn(&working); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	r.s.tickets[id] = copyTicket(working)
	r.s.mu.Unlock()
	return &working, nil
}

func (r *ticketStore) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	var result []domain.Ticket
	for _, ticket := range r.s.tickets {
		if matchesFilter(ticket, filter) {
			result = append(result, copyTicket(ticket))
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		if offset >= len(result) {
			return nil, nil
		}
		end := offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

func matchesFilter(t domain.Ticket, filter repository.TicketFilter) bool {
	if filter.CustomerID != nil && t.CustomerID != *filter.CustomerID {
		return false
	}
	if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, t.Priority) {
		return false
	}
	if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && t.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, candidate := range priorities {
		if candidate == priority {
			return true
		}
	}
	return false
}
