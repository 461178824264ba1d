package domain

import "time"

// Customer is a client the support desk serves. Contact fields may be edited
// after creation; tickets and communication logs reference it by id.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
