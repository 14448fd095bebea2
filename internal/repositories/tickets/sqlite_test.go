package tickets

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dkrasnovs/timetrack/internal/common"
	"github.com/dkrasnovs/timetrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE tickets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ticket_id INTEGER NOT NULL UNIQUE,
  subject TEXT NOT NULL,
  project TEXT NOT NULL,
  status TEXT NOT NULL,
  estimated_hours REAL,
  updated_on TEXT NOT NULL,
  user TEXT NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func sample(ticketID int64) *models.Ticket {
	est := 4.5
	return &models.Ticket{
		TicketID:       ticketID,
		Subject:        "Fix login",
		Project:        "Alpha",
		Status:         "In Progress",
		EstimatedHours: &est,
		UpdatedOn:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		User:           "carol",
	}
}

func TestInsertAndGetByTicketID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	in := sample(101)
	require.NoError(t, r.Insert(ctx, in))
	assert.NotZero(t, in.ID)

	got, err := r.GetByTicketID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, int64(101), got.TicketID)
	assert.Equal(t, "Fix login", got.Subject)
	assert.Equal(t, "Alpha", got.Project)
	assert.Equal(t, "In Progress", got.Status)
	require.NotNil(t, got.EstimatedHours)
	assert.Equal(t, 4.5, *got.EstimatedHours)
	assert.True(t, got.UpdatedOn.Equal(in.UpdatedOn))
	assert.Equal(t, "carol", got.User)
}

func TestInsert_NullEstimatedHours(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	in := sample(102)
	in.EstimatedHours = nil
	require.NoError(t, r.Insert(ctx, in))

	got, err := r.GetByTicketID(ctx, 102)
	require.NoError(t, err)
	assert.Nil(t, got.EstimatedHours)
}

func TestExists(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ok, err := r.Exists(ctx, 101)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Insert(ctx, sample(101)))

	ok, err = r.Exists(ctx, 101)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdate_ReplacesMutableFieldsOnly(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sample(101)))

	upd := sample(101)
	upd.Subject = "Fix login, part 2"
	upd.Status = "Resolved"
	upd.EstimatedHours = nil
	upd.UpdatedOn = time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Update(ctx, upd))

	got, err := r.GetByTicketID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Fix login, part 2", got.Subject)
	assert.Equal(t, "Resolved", got.Status)
	assert.Nil(t, got.EstimatedHours)
	assert.True(t, got.UpdatedOn.Equal(upd.UpdatedOn))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "update must never create a second row")
}

func TestUpdate_MissingTicket(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	err := r.Update(context.Background(), sample(999))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByTicketID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByTicketID(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sample(101)))
	require.NoError(t, r.Insert(ctx, sample(102)))
	require.NoError(t, r.DeleteAll(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
