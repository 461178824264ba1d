package domain

import (
	"errors"
	"time"
)

// Transition rule violations surface as sentinel errors so callers can map
// them onto their own error kinds.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAssigneeRequired  = errors.New("assignee required for transition")
)

// allowedTransitions is the full edge set of the ticket state machine.
// CLOSED is terminal: it has no outgoing edges.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusInProgress: {TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress, TicketStatusOpen},
	TicketStatusClosed:     {},
}

// CanTransition reports whether the edge current->next exists. Self edges are
// allowed as no-ops.
func CanTransition(current, next TicketStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition moves the ticket to next, maintaining the ResolvedAt invariant:
// entering RESOLVED stamps it, reopening (RESOLVED -> OPEN/IN_PROGRESS)
// clears it. Moving OPEN -> IN_PROGRESS requires an assignee to already be
// set on the ticket.
func (t *Ticket) Transition(next TicketStatus, now time.Time) error {
	if !CanTransition(t.Status, next) {
		return ErrInvalidTransition
	}
	if t.Status == next {
		return nil
	}
	if t.Status == TicketStatusOpen && next == TicketStatusInProgress && t.AssigneeID == nil {
		return ErrAssigneeRequired
	}

	switch {
	case next == TicketStatusResolved:
		resolved := now
		t.ResolvedAt = &resolved
	case t.Status == TicketStatusResolved && next != TicketStatusClosed:
		// reopen
		t.ResolvedAt = nil
	}
	t.Status = next
	return nil
}
