package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-crm/internal/repository/memory"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

func newCustomerService() (*CustomerService, *fakeClock) {
	store := memory.NewStore()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewCustomerService(store.Customers()).WithClock(clock.Now), clock
}

func TestCustomerCreate(t *testing.T) {
	svc, clock := newCustomerService()
	customer, err := svc.Create(context.Background(), CustomerCreateInput{
		Name:    "  Acme Corp  ",
		Email:   "ops@acme.test",
		Company: "Acme",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.Equal(t, "Acme Corp", customer.Name)
	assert.Equal(t, clock.Now(), customer.CreatedAt)
}

func TestCustomerCreate_RequiresNameAndEmail(t *testing.T) {
	svc, _ := newCustomerService()
	_, err := svc.Create(context.Background(), CustomerCreateInput{Name: "Acme"})
	assertCode(t, err, apperrors.CodeValidationFailed)
}

func TestCustomerCreate_DuplicateEmail(t *testing.T) {
	svc, _ := newCustomerService()
	ctx := context.Background()
	_, err := svc.Create(ctx, CustomerCreateInput{Name: "Acme", Email: "ops@acme.test"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CustomerCreateInput{Name: "Other", Email: "ops@acme.test"})
	assertCode(t, err, apperrors.CodeConflict)
}

func TestCustomerUpdateContact_PatchSemantics(t *testing.T) {
	svc, clock := newCustomerService()
	ctx := context.Background()
	customer, err := svc.Create(ctx, CustomerCreateInput{Name: "Acme", Email: "ops@acme.test", Phone: "555-0100"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	got, err := svc.UpdateContact(ctx, customer.ID, CustomerPatch{Phone: strPtr("555-0199")})
	require.NoError(t, err)

	assert.Equal(t, "555-0199", got.Phone)
	assert.Equal(t, "Acme", got.Name, "untouched fields survive a patch")
	assert.Equal(t, "ops@acme.test", got.Email)
	assert.Equal(t, clock.Now(), got.UpdatedAt)
}

func TestCustomerUpdateContact_NotFound(t *testing.T) {
	svc, _ := newCustomerService()
	_, err := svc.UpdateContact(context.Background(), "missing", CustomerPatch{Name: strPtr("x")})
	assertCode(t, err, apperrors.CodeCustomerNotFound)
}

func TestCustomerGet_NotFound(t *testing.T) {
	svc, _ := newCustomerService()
	_, err := svc.Get(context.Background(), "missing")
	assertCode(t, err, apperrors.CodeCustomerNotFound)
}
