package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

// CustomerService manages the customer directory.
type CustomerService struct {
	customers repository.CustomerRepository
	now       func() time.Time
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers, now: time.Now}
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func (s *CustomerService) WithClock(now func() time.Time) *CustomerService {
	s.now = now
	return s
}

// CustomerCreateInput describes customer creation payload.
type CustomerCreateInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Notes   string
}

// CustomerPatch carries optional contact-field edits.
type CustomerPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Notes   *string
}

// Create registers a new customer. Email must be unique.
func (s *CustomerService) Create(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if _, err := s.customers.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	customer := &domain.Customer{
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Company:   strings.TrimSpace(input.Company),
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// UpdateContact edits contact fields only; tickets and logs referencing the
// customer are untouched.
func (s *CustomerService) UpdateContact(ctx context.Context, customerID string, patch CustomerPatch) (*domain.Customer, error) {
	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		customer.Name = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, apperrors.NewValidationError("email required", nil)
		}
		if email != customer.Email {
			if _, err := s.customers.GetByEmail(ctx, email); err == nil {
				return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			customer.Email = email
		}
	}
	if patch.Phone != nil {
		customer.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Company != nil {
		customer.Company = strings.TrimSpace(*patch.Company)
	}
	if patch.Notes != nil {
		customer.Notes = *patch.Notes
	}
	customer.UpdatedAt = s.now()

	if err := s.customers.Update(ctx, customer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewCustomerNotFound(customerID)
		}
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// Get fetches a customer by id.
func (s *CustomerService) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewCustomerNotFound(customerID)
		}
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// List returns customers, oldest first.
func (s *CustomerService) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return customers, nil
}
