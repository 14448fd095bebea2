package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkrasnovs/timetrack/internal/common"
	"github.com/dkrasnovs/timetrack/internal/dbx"
	"github.com/dkrasnovs/timetrack/internal/models"
)

// updatedOnLayout is the storage format for the remote updated_on timestamp.
const updatedOnLayout = time.RFC3339

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Exists(ctx context.Context, ticketID int64) (bool, error) {
	var n int
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE ticket_id=?`, ticketID)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check ticket existence: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.Ticket) error {
	query := `INSERT INTO tickets (ticket_id, subject, project, status, estimated_hours, updated_on, user)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		t.TicketID, t.Subject, t.Project, t.Status, t.EstimatedHours, t.UpdatedOn.Format(updatedOnLayout), t.User)
	if err != nil {
		return fmt.Errorf("failed to insert ticket %d: %w", t.TicketID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		t.ID = id
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *models.Ticket) error {
	query := `UPDATE tickets SET subject=?, project=?, status=?, estimated_hours=?, updated_on=?, user=?
			WHERE ticket_id=?`
	res, err := r.db.ExecContext(ctx, query,
		t.Subject, t.Project, t.Status, t.EstimatedHours, t.UpdatedOn.Format(updatedOnLayout), t.User, t.TicketID)
	if err != nil {
		return fmt.Errorf("failed to update ticket %d: %w", t.TicketID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("ticket %d: %w", t.TicketID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetByTicketID(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	query := `SELECT id, ticket_id, subject, project, status, estimated_hours, updated_on, user
			FROM tickets WHERE ticket_id=?`
	row := r.db.QueryRowContext(ctx, query, ticketID)

	t, err := scanTicket(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ticket %d: %w", ticketID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ticket %d: %w", ticketID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Ticket, error) {
	query := `SELECT id, ticket_id, subject, project, status, estimated_hours, updated_on, user
			FROM tickets ORDER BY ticket_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select tickets: %w", err)
	}
	defer rows.Close()

	var result []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return fmt.Errorf("failed to delete tickets: %w", err)
	}
	return nil
}

func scanTicket(scan func(dest ...any) error) (*models.Ticket, error) {
	var t models.Ticket
	var updatedOn string
	if err := scan(&t.ID, &t.TicketID, &t.Subject, &t.Project, &t.Status, &t.EstimatedHours, &updatedOn, &t.User); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(updatedOnLayout, updatedOn); err == nil {
		t.UpdatedOn = parsed
	}
	return &t, nil
}
