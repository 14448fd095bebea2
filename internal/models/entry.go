// Package models defines the data shapes persisted in the local ledger.
package models

// DateTimeLayout is the timestamp format stored for entries recorded by the
// timer. Entries pulled from the remote tracker store DateLayout only; the
// per-day query matches both by date prefix.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

// TimeEntry is a single recorded duration against a project/work-package
// pair. Entries are immutable once created: never updated, only inserted.
//
// The 4-tuple (Date, Project, WorkPackage, DurationSeconds) identifies an
// entry for de-duplication during pull. The ledger itself does not enforce
// uniqueness; callers must check existence before inserting pulled entries.
type TimeEntry struct {
	ID              int64
	Date            string
	Project         string
	WorkPackage     string
	DurationSeconds float64
}

// WorkPackageAverage is an aggregate row: the mean recorded duration for one
// work package across all entries.
type WorkPackageAverage struct {
	WorkPackage string
	AvgSeconds  float64
}

// WorkPackageCount is an aggregate row: how often a work package was recorded.
type WorkPackageCount struct {
	WorkPackage string
	Count       int64
}
