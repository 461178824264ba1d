package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_Matrix(t *testing.T) {
	allowed := map[TicketStatus][]TicketStatus{
		TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved},
		TicketStatusInProgress: {TicketStatusResolved},
		TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress, TicketStatusOpen},
		TicketStatusClosed:     {},
	}
	for _, from := range TicketStatuses() {
		for _, to := range TicketStatuses() {
			want := from == to
			for _, edge := range allowed[from] {
				if edge == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransition_ResolveStampsResolvedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusOpen}

	require.NoError(t, ticket.Transition(TicketStatusResolved, now))
	assert.Equal(t, TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)
}

func TestTransition_ReopenClearsResolvedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, reopenTo := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress} {
		agent := "agent-1"
		ticket := &Ticket{Status: TicketStatusOpen, AssigneeID: &agent}
		require.NoError(t, ticket.Transition(TicketStatusResolved, now))

		require.NoError(t, ticket.Transition(reopenTo, now.Add(time.Hour)))
		assert.Equal(t, reopenTo, ticket.Status)
		assert.Nil(t, ticket.ResolvedAt, "reopen to %s", reopenTo)
	}
}

func TestTransition_ClosePreservesResolvedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusOpen}
	require.NoError(t, ticket.Transition(TicketStatusResolved, now))

	require.NoError(t, ticket.Transition(TicketStatusClosed, now.Add(time.Hour)))
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)
}

func TestTransition_ClosedIsTerminal(t *testing.T) {
	now := time.Now()
	for _, to := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved} {
		ticket := &Ticket{Status: TicketStatusClosed}
		err := ticket.Transition(to, now)
		assert.ErrorIs(t, err, ErrInvalidTransition, "CLOSED -> %s", to)
		assert.Equal(t, TicketStatusClosed, ticket.Status)
	}
}

func TestTransition_StartRequiresAssignee(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusOpen}
	err := ticket.Transition(TicketStatusInProgress, time.Now())
	assert.ErrorIs(t, err, ErrAssigneeRequired)
	assert.Equal(t, TicketStatusOpen, ticket.Status)

	agent := "agent-1"
	ticket.AssigneeID = &agent
	require.NoError(t, ticket.Transition(TicketStatusInProgress, time.Now()))
	assert.Equal(t, TicketStatusInProgress, ticket.Status)
}

func TestTransition_SelfEdgeIsNoOp(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusOpen}
	require.NoError(t, ticket.Transition(TicketStatusResolved, now))

	require.NoError(t, ticket.Transition(TicketStatusResolved, now.Add(time.Hour)))
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt, "self edge must not restamp")
}

func TestTransition_SkipInProgress(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusOpen}
	require.NoError(t, ticket.Transition(TicketStatusResolved, time.Now()))
	assert.Equal(t, TicketStatusResolved, ticket.Status)
}
