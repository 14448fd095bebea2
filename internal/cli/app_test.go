package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dkrasnovs/timetrack/internal/common"
	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/ledger"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/dkrasnovs/timetrack/internal/models"
	"github.com/dkrasnovs/timetrack/internal/prompt"
	"github.com/dkrasnovs/timetrack/internal/redmine"
	timesync "github.com/dkrasnovs/timetrack/internal/sync"
	"github.com/dkrasnovs/timetrack/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// offlineGateway never connects, so pushes fall back to local-only.
type offlineGateway struct{}

func (offlineGateway) Connect(context.Context) (redmine.API, error) {
	return nil, fmt.Errorf("%w: offline", common.ErrNotConnected)
}

func (offlineGateway) User() *redmine.User { return nil }

func newTestApp(t *testing.T, answers ...string) *App {
	t.Helper()
	log := logging.NewDiscard()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"), log)
	require.NoError(t, err)

	db, err := ledger.OpenDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	led := ledger.New(db, log)
	t.Cleanup(func() { _ = led.Close() })

	engine := timesync.NewEngine(led, cfg, offlineGateway{}, log)
	tm := timer.New()

	return &App{
		cfg:      cfg,
		ledger:   led,
		engine:   engine,
		timer:    tm,
		recorder: timer.NewRecorder(tm, engine, cfg, log),
		prompter: &prompt.Scripted{Answers: answers},
		log:      log,
	}
}

func TestRecoverBackup_Resume(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "resume")
	require.NoError(t, a.cfg.UpdateBackup(125.4, "General", "Development"))

	require.NoError(t, a.RecoverBackup(context.Background()))

	assert.Equal(t, timer.StatePaused, a.timer.State())
	assert.InDelta(t, 125.4, a.timer.Elapsed(), 1e-9)
	assert.Empty(t, a.ledger.AllEntries(context.Background()), "resume must not record")
	_, ok := a.cfg.Backup()
	assert.True(t, ok, "resume keeps the snapshot until recorded")
}

func TestRecoverBackup_Save(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "save")
	require.NoError(t, a.cfg.UpdateBackup(901, "General", "Development"))

	require.NoError(t, a.RecoverBackup(context.Background()))

	entries := a.ledger.AllEntries(context.Background())
	require.Len(t, entries, 1)
	assert.InDelta(t, 901.0, entries[0].DurationSeconds, 1e-9)
	assert.Equal(t, timer.StateIdle, a.timer.State())
	_, ok := a.cfg.Backup()
	assert.False(t, ok)
}

func TestRecoverBackup_Discard(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "discard")
	require.NoError(t, a.cfg.UpdateBackup(60, "General", "Development"))

	require.NoError(t, a.RecoverBackup(context.Background()))

	assert.Equal(t, timer.StateIdle, a.timer.State())
	assert.Empty(t, a.ledger.AllEntries(context.Background()))
	_, ok := a.cfg.Backup()
	assert.False(t, ok)
}

func TestRecoverBackup_DismissedKeepsSnapshot(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t) // no answers: the prompt fails like a closed dialog

	require.NoError(t, a.cfg.UpdateBackup(60, "General", "Development"))
	require.NoError(t, a.RecoverBackup(context.Background()))

	_, ok := a.cfg.Backup()
	assert.True(t, ok, "a dismissed prompt must re-appear next startup")
	assert.Equal(t, timer.StateIdle, a.timer.State())
}

func TestRecoverBackup_NoSnapshotIsSilent(t *testing.T) {
	lines := capturePrintln(t)
	a := newTestApp(t)

	require.NoError(t, a.RecoverBackup(context.Background()))
	assert.Empty(t, *lines)
}

func TestConfirmShutdown_IdleExitsImmediately(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t)
	assert.True(t, a.ConfirmShutdown(context.Background()))
}

func TestConfirmShutdown_CancelBlocksExit(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "cancel")
	require.NoError(t, a.timer.Restore(60, "General", "Development"))

	assert.False(t, a.ConfirmShutdown(context.Background()))
	assert.InDelta(t, 60.0, a.timer.Elapsed(), 1e-9, "cancel keeps everything")
}

func TestConfirmShutdown_SaveRecordsThenExits(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "save")
	require.NoError(t, a.timer.Restore(60, "General", "Development"))

	assert.True(t, a.ConfirmShutdown(context.Background()))
	assert.Len(t, a.ledger.AllEntries(context.Background()), 1)
	assert.Equal(t, timer.StateIdle, a.timer.State())
}

func TestConfirmShutdown_DiscardClearsAndExits(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "discard")
	require.NoError(t, a.timer.Restore(60, "General", "Development"))
	require.NoError(t, a.cfg.UpdateBackup(60, "General", "Development"))

	assert.True(t, a.ConfirmShutdown(context.Background()))
	assert.Empty(t, a.ledger.AllEntries(context.Background()))
	_, ok := a.cfg.Backup()
	assert.False(t, ok)
}

func TestExport_CSV(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.ledger.RecordTimeEntry(ctx, &models.TimeEntry{
		Date: "2026-03-02 10:15:01", Project: "General", WorkPackage: "Development", DurationSeconds: 901,
	}))

	var buf bytes.Buffer
	require.NoError(t, a.Export(ctx, &buf))

	assert.Equal(t,
		"id,date,project,work_package,duration_seconds\n"+
			"1,2026-03-02 10:15:01,General,Development,901\n",
		buf.String())
}

func TestReport_Units(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.ledger.RecordTimeEntry(ctx, &models.TimeEntry{
		Date: "2026-03-02 10:00:00", Project: "General", WorkPackage: "Development", DurationSeconds: 1800,
	}))

	var buf bytes.Buffer
	require.NoError(t, a.Report(ctx, &buf, "minutes", false))
	assert.Contains(t, buf.String(), "Development")
	assert.Contains(t, buf.String(), "30.00")

	buf.Reset()
	require.NoError(t, a.Report(ctx, &buf, "", true))
	assert.Contains(t, buf.String(), "1")

	assert.Error(t, a.Report(ctx, &buf, "fortnights", false))
}

func TestReset_RequiresConfirmation(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "n")
	ctx := context.Background()
	require.NoError(t, a.ledger.RecordTimeEntry(ctx, &models.TimeEntry{
		Date: "d", Project: "p", WorkPackage: "wp", DurationSeconds: 1,
	}))

	require.NoError(t, a.Reset(ctx))
	assert.Len(t, a.ledger.AllEntries(ctx), 1, "declined reset keeps the data")

	a.prompter = &prompt.Scripted{Answers: []string{"y"}}
	require.NoError(t, a.Reset(ctx))
	assert.Empty(t, a.ledger.AllEntries(ctx))
}

func TestRecord_OfflinePushStillRecordsLocally(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.timer.Restore(450, "General", "Development"))
	require.NoError(t, a.Record(ctx))

	entries := a.ledger.AllEntries(ctx)
	require.Len(t, entries, 1)
	assert.InDelta(t, 450.0, entries[0].DurationSeconds, 1e-9)
}

func TestRemovePackage_OffersProjectRemoval(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "2", "1", "y")
	require.NoError(t, a.cfg.AddProject("Alpha"))
	require.NoError(t, a.cfg.AddWorkPackage("Alpha", "101: Fix login"))

	// pick Alpha (2nd project), its only package, confirm dropping the project
	require.NoError(t, a.RemovePackage(context.Background()))

	assert.Equal(t, []string{"General"}, a.cfg.Projects())
}

func TestChooseProjectAndPackage(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "1", "2")

	require.NoError(t, a.ChooseProject(context.Background()))

	project, wp := a.timer.Selection()
	assert.Equal(t, "General", project)
	assert.Equal(t, a.cfg.WorkPackages("General")[1], wp)
}
