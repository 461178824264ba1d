// Package memory provides in-memory implementations of the repository
// interfaces. It backs the unit tests and the DSN-less development mode.
// Missing rows surface as pgx.ErrNoRows so services map not-found errors the
// same way for both backends.
package memory

import (
	"sync"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository"
)

// Store holds all relations behind one RWMutex plus a per-ticket lock table
// used by Mutate: writers of the same ticket id serialize, writers of
// different tickets proceed independently.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	customers map[string]domain.Customer
	tickets   map[string]domain.Ticket
	logs      []domain.CommunicationLog

	lockMu      sync.Mutex
	ticketLocks map[string]*sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		customers:   make(map[string]domain.Customer),
		tickets:     make(map[string]domain.Ticket),
		ticketLocks: make(map[string]*sync.Mutex),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userStore{s} }

// Customers returns the customer repository view of the store.
func (s *Store) Customers() repository.CustomerRepository { return &customerStore{s} }

// Tickets returns the ticket repository view of the store.
func (s *Store) Tickets() repository.TicketRepository { return &ticketStore{s} }

// Logs returns the communication log repository view of the store.
func (s *Store) Logs() repository.LogRepository { return &logStore{s} }

func (s *Store) ticketLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.ticketLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.ticketLocks[id] = lock
	}
	return lock
}

func copyTicket(t domain.Ticket) domain.Ticket {
	if t.AssigneeID != nil {
		assignee := *t.AssigneeID
		t.AssigneeID = &assignee
	}
	if t.ResolvedAt != nil {
		resolved := *t.ResolvedAt
		t.ResolvedAt = &resolved
	}
	return t
}
