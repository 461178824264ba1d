package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-crm/internal/domain"
)

type logStore struct {
	s *Store
}

func (r *logStore) Create(_ context.Context, log *domain.CommunicationLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, *log)
	return nil
}

func (r *logStore) ListByTicket(_ context.Context, ticketID string) ([]domain.CommunicationLog, error) {
	return r.listWhere(func(log domain.CommunicationLog) bool {
		return log.TicketID == ticketID
	}), nil
}

func (r *logStore) ListByCustomer(_ context.Context, customerID string) ([]domain.CommunicationLog, error) {
	return r.listWhere(func(log domain.CommunicationLog) bool {
		return log.CustomerID == customerID
	}), nil
}

func (r *logStore) FirstLogTimes(_ context.Context) (map[string]time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make(map[string]time.Time)
	for _, log := range r.s.logs {
		first, ok := result[log.TicketID]
		if !ok || log.CreatedAt.Before(first) {
			result[log.TicketID] = log.CreatedAt
		}
	}
	return result, nil
}

// listWhere preserves insertion order for identical timestamps: the slice is
// append-only and the sort is stable.
func (r *logStore) listWhere(match func(domain.CommunicationLog) bool) []domain.CommunicationLog {
	r.s.mu.RLock()
	var result []domain.CommunicationLog
	for _, log := range r.s.logs {
		if match(log) {
			result = append(result, log)
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}
