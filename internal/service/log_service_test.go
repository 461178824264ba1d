package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-crm/internal/domain"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

func TestLogCreate_CopiesCustomerFromTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{})

	entry, err := f.logs.Create(context.Background(), f.agent.ID, ticket.ID, domain.LogTypeEmail, "sent fix instructions")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, ticket.ID, entry.TicketID)
	assert.Equal(t, f.customer.ID, entry.CustomerID)
	assert.Equal(t, f.clock.Now(), entry.CreatedAt)
}

func TestLogCreate_UnknownTicket(t *testing.T) {
	f := newFixture(t)
	_, err := f.logs.Create(context.Background(), f.agent.ID, "missing", domain.LogTypeCall, "hello")
	assertCode(t, err, apperrors.CodeTicketNotFound)
}

func TestLogCreate_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{})
	ctx := context.Background()

	_, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogType("FAX"), "hello")
	assertCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeChat, "   ")
	assertCode(t, err, apperrors.CodeValidationFailed)
}

func TestLogList_ChronologicalPerTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{})
	ctx := context.Background()

	first, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeCall, "customer called in")
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)
	second, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeEmail, "sent follow up")
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)
	third, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeChat, "confirmed resolution")
	require.NoError(t, err)

	entries, err := f.logs.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestLogList_TieBreakKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, TicketCreateInput{})
	ctx := context.Background()

	// same clock reading for every entry
	a, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeCall, "one")
	require.NoError(t, err)
	b, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeCall, "two")
	require.NoError(t, err)
	c, err := f.logs.Create(ctx, f.agent.ID, ticket.ID, domain.LogTypeCall, "three")
	require.NoError(t, err)

	entries, err := f.logs.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestLogList_UnknownTicket(t *testing.T) {
	f := newFixture(t)
	_, err := f.logs.ListByTicket(context.Background(), "missing")
	assertCode(t, err, apperrors.CodeTicketNotFound)
}

func TestLogListByCustomer_SpansTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.newTicket(t, TicketCreateInput{Title: "first"})
	second := f.newTicket(t, TicketCreateInput{Title: "second"})

	_, err := f.logs.Create(ctx, f.agent.ID, first.ID, domain.LogTypeCall, "about first")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.logs.Create(ctx, f.agent.ID, second.ID, domain.LogTypeEmail, "about second")
	require.NoError(t, err)

	entries, err := f.logs.ListByCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].TicketID)
	assert.Equal(t, second.ID, entries[1].TicketID)
	for _, entry := range entries {
		assert.Equal(t, f.customer.ID, entry.CustomerID)
	}
}

func TestLogListByCustomer_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.logs.ListByCustomer(context.Background(), "missing")
	assertCode(t, err, apperrors.CodeCustomerNotFound)
}
