package timer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckpointFixture(t *testing.T) (*Checkpointer, *Timer, *config.Store) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"), logging.NewDiscard())
	require.NoError(t, err)

	tm := New()
	c := NewCheckpointer(tm, cfg, logging.NewDiscard())
	c.interval = time.Millisecond
	return c, tm, cfg
}

func TestCheckpointer_SnapshotsPausedProgress(t *testing.T) {
	c, tm, cfg := newCheckpointFixture(t)
	require.NoError(t, tm.Restore(125.4, "General", "Development"))

	c.Start(context.Background())
	defer c.Stop()

	assert.Eventually(t, func() bool {
		b, ok := cfg.Backup()
		return ok && b.ElapsedSeconds == 125.4 && b.Project == "General" && b.WorkPackage == "Development"
	}, time.Second, time.Millisecond)
}

func TestCheckpointer_NeverWritesAtZeroElapsed(t *testing.T) {
	c, _, cfg := newCheckpointFixture(t)

	c.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	c.Stop()

	_, ok := cfg.Backup()
	assert.False(t, ok, "idle timer must not produce a snapshot")
}

func TestCheckpointer_OverwritesSingleSnapshot(t *testing.T) {
	c, tm, cfg := newCheckpointFixture(t)
	require.NoError(t, tm.Restore(10, "General", "Development"))

	c.Start(context.Background())
	assert.Eventually(t, func() bool {
		_, ok := cfg.Backup()
		return ok
	}, time.Second, time.Millisecond)

	// progress advances; the snapshot follows instead of accumulating
	tm.Reset()
	require.NoError(t, tm.Restore(40, "General", "Meeting"))
	assert.Eventually(t, func() bool {
		b, ok := cfg.Backup()
		return ok && b.ElapsedSeconds == 40 && b.WorkPackage == "Meeting"
	}, time.Second, time.Millisecond)
	c.Stop()
}

func TestCheckpointer_NoWriteAfterStop(t *testing.T) {
	c, tm, cfg := newCheckpointFixture(t)
	require.NoError(t, tm.Restore(10, "General", "Development"))

	c.Start(context.Background())
	assert.Eventually(t, func() bool {
		_, ok := cfg.Backup()
		return ok
	}, time.Second, time.Millisecond)
	c.Stop()

	require.NoError(t, cfg.ClearBackup())
	time.Sleep(10 * time.Millisecond)

	_, ok := cfg.Backup()
	assert.False(t, ok, "no snapshot may land after Stop returns")
}
