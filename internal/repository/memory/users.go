package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
)

type userStore struct {
	s *Store
}

func (r *userStore) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userStore) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findWhere(func(u domain.User) bool { return u.Username == username })
}

func (r *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findWhere(func(u domain.User) bool { return u.Email == email })
}

func (r *userStore) findWhere(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}
