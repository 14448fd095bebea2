package models

import "time"

// Ticket is a locally cached remote tracker issue. Rows are created on first
// pull and updated in place on later pulls, keyed by TicketID. Individual
// tickets are never deleted; only a full reset clears the cache.
type Ticket struct {
	ID             int64
	TicketID       int64
	Subject        string
	Project        string
	Status         string
	EstimatedHours *float64
	UpdatedOn      time.Time
	User           string
}
