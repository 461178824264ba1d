package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
)

type customerStore struct {
	s *Store
}

func (r *customerStore) Create(_ context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[customer.ID] = *customer
	return nil
}

func (r *customerStore) Update(_ context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.customers[customer.ID] = *customer
	return nil
}

func (r *customerStore) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	customer, ok := r.s.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &customer, nil
}

func (r *customerStore) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, customer := range r.s.customers {
		if customer.Email == email {
			found := customer
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *customerStore) List(_ context.Context, limit, offset int) ([]domain.Customer, error) {
	r.s.mu.RLock()
	result := make([]domain.Customer, 0, len(r.s.customers))
	for _, customer := range r.s.customers {
		result = append(result, customer)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}
