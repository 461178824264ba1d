package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository/memory"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

type fixture struct {
	store    *memory.Store
	tickets  *TicketService
	logs     *LogService
	reports  *ReportService
	clock    *fakeClock
	customer *domain.Customer
	agent    *domain.User
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	ticketSvc := NewTicketService(TicketDependencies{
		TicketRepo:   store.Tickets(),
		CustomerRepo: store.Customers(),
		UserRepo:     store.Users(),
	}).WithClock(clock.Now)
	logSvc := NewLogService(LogDependencies{
		LogRepo:      store.Logs(),
		TicketRepo:   store.Tickets(),
		CustomerRepo: store.Customers(),
	}).WithClock(clock.Now)
	reportSvc := NewReportService(store.Tickets(), store.Logs())

	ctx := context.Background()
	customer := &domain.Customer{Name: "Acme Corp", Email: "ops@acme.test", CreatedAt: clock.Now(), UpdatedAt: clock.Now()}
	require.NoError(t, store.Customers().Create(ctx, customer))
	agent := &domain.User{Username: "ada", Email: "ada@crm.test", Role: domain.RoleAgent, Active: true, CreatedAt: clock.Now(), UpdatedAt: clock.Now()}
	require.NoError(t, store.Users().Create(ctx, agent))

	return &fixture{
		store:    store,
		tickets:  ticketSvc,
		logs:     logSvc,
		reports:  reportSvc,
		clock:    clock,
		customer: customer,
		agent:    agent,
	}
}

func (f *fixture) newUser(t *testing.T, username string, role domain.UserRole, active bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:  username,
		Email:     username + "@crm.test",
		Role:      role,
		Active:    active,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) newTicket(t *testing.T, input TicketCreateInput) *domain.Ticket {
	t.Helper()
	if input.Title == "" {
		input.Title = "printer on fire"
	}
	if input.CustomerID == "" {
		input.CustomerID = f.customer.ID
	}
	ticket, err := f.tickets.Create(context.Background(), f.agent.ID, input)
	require.NoError(t, err)
	return ticket
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "want DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func priorityPtr(p domain.TicketPriority) *domain.TicketPriority { return &p }

func TestTicketCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{Description: "  smoke everywhere  "})

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, f.customer.ID, ticket.CustomerID)
	assert.Nil(t, ticket.AssigneeID)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Equal(t, f.clock.Now(), ticket.CreatedAt)
	assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)
}

func TestTicketCreate_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.Create(context.Background(), f.agent.ID, TicketCreateInput{
		Title:      "lost password",
		CustomerID: "no-such-customer",
	})
	assertCode(t, err, apperrors.CodeCustomerNotFound)
}

func TestTicketCreate_TitleRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.Create(context.Background(), f.agent.ID, TicketCreateInput{
		Title:      "   ",
		CustomerID: f.customer.ID,
	})
	assertCode(t, err, apperrors.CodeValidationFailed)
}

func TestTicketCreate_RejectsUnassignableUser(t *testing.T) {
	f := newFixture(t)
	inactive := f.newUser(t, "gone", domain.RoleAgent, false)

	_, err := f.tickets.Create(context.Background(), f.agent.ID, TicketCreateInput{
		Title:      "vpn down",
		CustomerID: f.customer.ID,
		AssigneeID: &inactive.ID,
	})
	assertCode(t, err, apperrors.CodeInvalidAssignee)
}

func TestTicketUpdate_StartWithoutAssignee(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{})

	_, err := f.tickets.Update(context.Background(), f.agent.ID, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusInProgress),
	})
	assertCode(t, err, apperrors.CodeInvalidAssignee)

	got, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, got.Status, "failed patch must not leak partial state")
	assert.Nil(t, got.AssigneeID)
}

func TestTicketUpdate_AtomicAssignAndStart(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{})

	got, err := f.tickets.Update(context.Background(), f.agent.ID, ticket.ID, TicketPatch{
		Status:     statusPtr(domain.TicketStatusInProgress),
		AssigneeID: &f.agent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, got.Status)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, f.agent.ID, *got.AssigneeID)
}

func TestTicketUpdate_ResolveStampsAndReopenClears(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{AssigneeID: &f.agent.ID})

	resolvedAt := f.clock.Advance(30 * time.Minute)
	got, err := f.tickets.Update(context.Background(), f.agent.ID, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusResolved),
	})
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, resolvedAt, *got.ResolvedAt)

	f.clock.Advance(10 * time.Minute)
	got, err = f.tickets.Update(context.Background(), f.agent.ID, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusOpen),
	})
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
}

func TestTicketUpdate_ClosedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{AssigneeID: &f.agent.ID})
	ctx := context.Background()

	_, err := f.tickets.Update(ctx, f.agent.ID, ticket.ID, TicketPatch{Status: statusPtr(domain.TicketStatusResolved)})
	require.NoError(t, err)
	closed, err := f.tickets.Update(ctx, f.agent.ID, ticket.ID, TicketPatch{Status: statusPtr(domain.TicketStatusClosed)})
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedAt)

	for _, next := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved} {
		_, err := f.tickets.Update(ctx, f.agent.ID, ticket.ID, TicketPatch{Status: statusPtr(next)})
		assertCode(t, err, apperrors.CodeInvalidTransition)
	}

	got, err := f.tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.NotNil(t, got.ResolvedAt, "closing must preserve the resolution timestamp")
}

func TestTicketUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.Update(context.Background(), f.agent.ID, "missing", TicketPatch{
		Title: strPtr("new title"),
	})
	assertCode(t, err, apperrors.CodeTicketNotFound)
}

func TestTicketUpdate_NoChangeKeepsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{Title: "slow dashboard"})

	f.clock.Advance(time.Hour)
	got, err := f.tickets.Update(context.Background(), f.agent.ID, ticket.ID, TicketPatch{
		Title: strPtr("slow dashboard"),
	})
	require.NoError(t, err)
	assert.Equal(t, ticket.UpdatedAt, got.UpdatedAt)
}

func TestTicketUpdate_ConcurrentSameTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{AssigneeID: &f.agent.ID})
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			patch := TicketPatch{Priority: priorityPtr(domain.TicketPriorityHigh)}
			if i%2 == 0 {
				patch = TicketPatch{Description: strPtr(fmt.Sprintf("note %d", i))}
			}
			_, errs[i] = f.tickets.Update(ctx, f.agent.ID, ticket.ID, patch)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
	got, err := f.tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, got.Priority)
}

func TestTicketList_FilterByStatusAndCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &domain.Customer{Name: "Globex", Email: "it@globex.test", CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}
	require.NoError(t, f.store.Customers().Create(ctx, other))

	a := f.newTicket(t, TicketCreateInput{Title: "a"})
	f.clock.Advance(time.Minute)
	b := f.newTicket(t, TicketCreateInput{Title: "b", CustomerID: other.ID, AssigneeID: &f.agent.ID})
	f.clock.Advance(time.Minute)
	_, err := f.tickets.Update(ctx, f.agent.ID, b.ID, TicketPatch{Status: statusPtr(domain.TicketStatusResolved)})
	require.NoError(t, err)

	open, err := f.tickets.List(ctx, TicketListInput{Status: statusPtr(domain.TicketStatusOpen)})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.ID, open[0].ID)

	byCustomer, err := f.tickets.List(ctx, TicketListInput{CustomerID: &other.ID})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, b.ID, byCustomer[0].ID)
}
