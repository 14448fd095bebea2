package entries

import (
	"context"
	"fmt"

	"github.com/dkrasnovs/timetrack/internal/dbx"
	"github.com/dkrasnovs/timetrack/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.TimeEntry) error {
	query := `INSERT INTO work_log (date, project, work_package, duration) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, e.Date, e.Project, e.WorkPackage, e.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to insert work_log entry: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, date, project, workPackage string, durationSeconds float64) (bool, error) {
	query := `SELECT COUNT(*) FROM work_log WHERE date=? AND project=? AND work_package=? AND duration=?`
	var n int
	row := r.db.QueryRowContext(ctx, query, date, project, workPackage, durationSeconds)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.TimeEntry, error) {
	query := `SELECT id, date, project, work_package, duration FROM work_log ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.TimeEntry
	for rows.Next() {
		var item models.TimeEntry
		if err := rows.Scan(&item.ID, &item.Date, &item.Project, &item.WorkPackage, &item.DurationSeconds); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetForDay(ctx context.Context, day string) ([]models.TimeEntry, error) {
	query := `SELECT id, date, project, work_package, duration FROM work_log WHERE date LIKE ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, day+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to select entries for day %s: %w", day, err)
	}
	defer rows.Close()

	var result []models.TimeEntry
	for rows.Next() {
		var item models.TimeEntry
		if err := rows.Scan(&item.ID, &item.Date, &item.Project, &item.WorkPackage, &item.DurationSeconds); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) AvgDurationPerWorkPackage(ctx context.Context) ([]models.WorkPackageAverage, error) {
	query := `SELECT work_package, AVG(duration) FROM work_log GROUP BY work_package ORDER BY work_package`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate durations: %w", err)
	}
	defer rows.Close()

	var result []models.WorkPackageAverage
	for rows.Next() {
		var item models.WorkPackageAverage
		if err := rows.Scan(&item.WorkPackage, &item.AvgSeconds); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AvgDurationFor returns 0 for a pair with no rows: AVG over an empty set is
// NULL in SQL and the average of nothing is defined as zero here, not an error.
func (r *SQLiteRepository) AvgDurationFor(ctx context.Context, project, workPackage string) (float64, error) {
	query := `SELECT AVG(duration) FROM work_log WHERE project=? AND work_package=?`
	var avg *float64
	row := r.db.QueryRowContext(ctx, query, project, workPackage)
	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average durations for %s/%s: %w", project, workPackage, err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *SQLiteRepository) CountPerWorkPackage(ctx context.Context) ([]models.WorkPackageCount, error) {
	query := `SELECT work_package, COUNT(*) FROM work_log GROUP BY work_package ORDER BY work_package`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	var result []models.WorkPackageCount
	for rows.Next() {
		var item models.WorkPackageCount
		if err := rows.Scan(&item.WorkPackage, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM work_log`); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}
