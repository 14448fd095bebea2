// Package ledger is the durable store of recorded time entries and cached
// remote tickets.
//
// It layers the store's failure policy over the SQLite repositories: write
// failures wrap common.ErrPersistence and propagate, because silently losing
// a recorded duration is unacceptable; read failures are logged and degrade
// to an empty result so a broken disk never takes the session down.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkrasnovs/timetrack/internal/common"
	"github.com/dkrasnovs/timetrack/internal/dbx"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/dkrasnovs/timetrack/internal/models"
	"github.com/dkrasnovs/timetrack/internal/repositories/entries"
	"github.com/dkrasnovs/timetrack/internal/repositories/tickets"
)

type Ledger struct {
	db  *sql.DB
	log logging.Logger
}

// New wraps an open, migrated database handle.
func New(db *sql.DB, log logging.Logger) *Ledger {
	return &Ledger{db: db, log: log.With("component", "ledger")}
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) entryRepo(db dbx.DBTX) entries.Repository {
	return entries.NewSQLiteRepository(db)
}

func (l *Ledger) ticketRepo(db dbx.DBTX) tickets.Repository {
	return tickets.NewSQLiteRepository(db)
}

// RecordTimeEntry inserts a time entry unconditionally. Callers are
// responsible for de-duplication checks before calling.
func (l *Ledger) RecordTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	if err := l.entryRepo(l.db).Insert(ctx, e); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	l.log.Info(ctx, "time entry recorded",
		"date", e.Date, "project", e.Project, "work_package", e.WorkPackage, "duration", e.DurationSeconds)
	return nil
}

// TimeEntryExists reports an exact match on the (date, project, work_package,
// duration) tuple. Storage failures degrade to false.
func (l *Ledger) TimeEntryExists(ctx context.Context, date, project, workPackage string, durationSeconds float64) bool {
	ok, err := l.entryRepo(l.db).Exists(ctx, date, project, workPackage, durationSeconds)
	if err != nil {
		l.log.Error(ctx, "entry existence check failed", "error", err)
		return false
	}
	return ok
}

// EntriesForDay returns the entries recorded on the given day ("2006-01-02").
func (l *Ledger) EntriesForDay(ctx context.Context, day string) []models.TimeEntry {
	result, err := l.entryRepo(l.db).GetForDay(ctx, day)
	if err != nil {
		l.log.Error(ctx, "failed to fetch entries for day", "day", day, "error", err)
		return nil
	}
	return result
}

// AllEntries returns every recorded entry.
func (l *Ledger) AllEntries(ctx context.Context) []models.TimeEntry {
	result, err := l.entryRepo(l.db).GetAll(ctx)
	if err != nil {
		l.log.Error(ctx, "failed to fetch entries", "error", err)
		return nil
	}
	return result
}

// AvgDurationPerWorkPackage returns the mean duration per work package.
func (l *Ledger) AvgDurationPerWorkPackage(ctx context.Context) []models.WorkPackageAverage {
	result, err := l.entryRepo(l.db).AvgDurationPerWorkPackage(ctx)
	if err != nil {
		l.log.Error(ctx, "failed to aggregate durations", "error", err)
		return nil
	}
	return result
}

// AvgDurationFor returns the mean duration for a project/work-package pair.
// Zero means "no data": the average of an empty set is defined as 0.
func (l *Ledger) AvgDurationFor(ctx context.Context, project, workPackage string) float64 {
	avg, err := l.entryRepo(l.db).AvgDurationFor(ctx, project, workPackage)
	if err != nil {
		l.log.Error(ctx, "failed to average durations", "project", project, "work_package", workPackage, "error", err)
		return 0
	}
	return avg
}

// CountPerWorkPackage returns how many entries exist per work package.
func (l *Ledger) CountPerWorkPackage(ctx context.Context) []models.WorkPackageCount {
	result, err := l.entryRepo(l.db).CountPerWorkPackage(ctx)
	if err != nil {
		l.log.Error(ctx, "failed to count entries", "error", err)
		return nil
	}
	return result
}

// TicketExists reports whether the given remote ticket id is cached.
// Storage failures degrade to false, which makes the caller re-insert; the
// unique index on ticket_id then surfaces the underlying problem.
func (l *Ledger) TicketExists(ctx context.Context, ticketID int64) bool {
	ok, err := l.ticketRepo(l.db).Exists(ctx, ticketID)
	if err != nil {
		l.log.Error(ctx, "ticket existence check failed", "ticket_id", ticketID, "error", err)
		return false
	}
	return ok
}

// UpsertTicket inserts the ticket if its ticket_id is unknown, otherwise
// updates every field except the key.
func (l *Ledger) UpsertTicket(ctx context.Context, t *models.Ticket) error {
	repo := l.ticketRepo(l.db)
	if l.TicketExists(ctx, t.TicketID) {
		if err := repo.Update(ctx, t); err != nil {
			return fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		l.log.Debug(ctx, "ticket updated", "ticket_id", t.TicketID)
		return nil
	}
	if err := repo.Insert(ctx, t); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	l.log.Debug(ctx, "ticket cached", "ticket_id", t.TicketID)
	return nil
}

// TicketByID returns a cached ticket or common.ErrNotFound.
func (l *Ledger) TicketByID(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	return l.ticketRepo(l.db).GetByTicketID(ctx, ticketID)
}

// AllTickets returns every cached ticket.
func (l *Ledger) AllTickets(ctx context.Context) []models.Ticket {
	result, err := l.ticketRepo(l.db).GetAll(ctx)
	if err != nil {
		l.log.Error(ctx, "failed to fetch tickets", "error", err)
		return nil
	}
	return result
}

// ResetAll irreversibly discards all persisted entries and cached tickets in
// a single transaction. Explicit user action only, never automatic.
func (l *Ledger) ResetAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := l.entryRepo(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return l.ticketRepo(tx).DeleteAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	l.log.Warn(ctx, "ledger reset: all entries and cached tickets discarded")
	return nil
}
