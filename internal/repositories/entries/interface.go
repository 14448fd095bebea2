package entries

import (
	"context"

	"github.com/dkrasnovs/timetrack/internal/models"
)

// Repository describes storage operations for work-log entries.
// Implementations are backed by a local SQLite database.
//
// Entries are append-only: there is no update operation. De-duplication of
// pulled entries is the caller's responsibility via Exists.
type Repository interface {
	// Insert stores a new entry unconditionally.
	Insert(ctx context.Context, entry *models.TimeEntry) error

	// Exists reports whether an entry with the exact
	// (date, project, work_package, duration) tuple is stored.
	Exists(ctx context.Context, date, project, workPackage string, durationSeconds float64) (bool, error)

	// GetAll returns every stored entry in insertion order.
	GetAll(ctx context.Context) ([]models.TimeEntry, error)

	// GetForDay returns entries whose date starts with the given day
	// ("2006-01-02"). Matches both plain dates and full timestamps.
	GetForDay(ctx context.Context, day string) ([]models.TimeEntry, error)

	// AvgDurationPerWorkPackage returns the mean duration grouped by
	// work package.
	AvgDurationPerWorkPackage(ctx context.Context) ([]models.WorkPackageAverage, error)

	// AvgDurationFor returns the mean duration for one project/work-package
	// pair, or 0 when no rows match.
	AvgDurationFor(ctx context.Context, project, workPackage string) (float64, error)

	// CountPerWorkPackage returns how many entries exist per work package.
	CountPerWorkPackage(ctx context.Context) ([]models.WorkPackageCount, error)

	// DeleteAll removes every entry. Used only by the factory reset.
	DeleteAll(ctx context.Context) error
}
