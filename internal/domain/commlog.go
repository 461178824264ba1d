package domain

import "time"

// LogType enumerates communication channels.
type LogType string

const (
	LogTypeCall  LogType = "CALL"
	LogTypeEmail LogType = "EMAIL"
	LogTypeChat  LogType = "CHAT"
)

// ValidLogType reports whether t is a known communication type.
func ValidLogType(t LogType) bool {
	return t == LogTypeCall || t == LogTypeEmail || t == LogTypeChat
}

// CommunicationLog is one immutable interaction record tied to a ticket.
// CustomerID is always copied from the referenced ticket, never supplied by
// callers, so a log can never disagree with its ticket about the customer.
type CommunicationLog struct {
	ID         string
	TicketID   string
	CustomerID string
	Type       LogType
	Content    string
	CreatedAt  time.Time
}
