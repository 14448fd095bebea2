package tickets

import (
	"context"

	"github.com/dkrasnovs/timetrack/internal/models"
)

// Repository describes storage operations for the cached remote tickets.
// Implementations are backed by a local SQLite database.
type Repository interface {
	// Exists reports whether a ticket with the given remote id is cached.
	Exists(ctx context.Context, ticketID int64) (bool, error)

	// Insert stores a new cached ticket.
	Insert(ctx context.Context, ticket *models.Ticket) error

	// Update replaces all mutable fields of the cached ticket identified by
	// ticket.TicketID. The ticket_id itself is never changed.
	Update(ctx context.Context, ticket *models.Ticket) error

	// GetByTicketID returns the cached ticket with the given remote id, or
	// common.ErrNotFound.
	GetByTicketID(ctx context.Context, ticketID int64) (*models.Ticket, error)

	// GetAll returns every cached ticket ordered by remote id.
	GetAll(ctx context.Context) ([]models.Ticket, error)

	// DeleteAll removes every cached ticket. Used only by the factory reset.
	DeleteAll(ctx context.Context) error
}
