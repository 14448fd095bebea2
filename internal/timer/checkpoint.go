package timer

import (
	"context"
	"time"

	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/logging"
)

// CheckpointInterval is how often tracking progress is snapshotted.
const CheckpointInterval = time.Second

// Checkpointer periodically overwrites the single backup snapshot with the
// timer's effective elapsed time, in Running and Paused alike. It never
// writes at elapsed zero, so a fresh session cannot clobber a snapshot that
// still awaits recovery.
type Checkpointer struct {
	timer    *Timer
	cfg      *config.Store
	log      logging.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewCheckpointer(t *Timer, cfg *config.Store, log logging.Logger) *Checkpointer {
	return &Checkpointer{
		timer:    t,
		cfg:      cfg,
		log:      log.With("component", "checkpointer"),
		interval: CheckpointInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the snapshot loop.
func (c *Checkpointer) Start(ctx context.Context) {
	go c.run(ctx)
}

// Stop ends the loop and waits for it; no snapshot is written after Stop
// returns.
func (c *Checkpointer) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Checkpointer) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.snapshot(ctx)
		}
	}
}

func (c *Checkpointer) snapshot(ctx context.Context) {
	elapsed := c.timer.Elapsed()
	if elapsed <= 0 {
		return
	}
	project, workPackage := c.timer.Selection()
	if err := c.cfg.UpdateBackup(elapsed, project, workPackage); err != nil {
		c.log.Error(ctx, "failed to write backup snapshot", "error", err)
	}
}
