package timer

import (
	"context"
	"fmt"

	"github.com/dkrasnovs/timetrack/internal/common"
	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/dkrasnovs/timetrack/internal/models"
)

// Publisher persists a finalized entry and mirrors it to the tracker.
type Publisher interface {
	RecordAndPush(ctx context.Context, entry *models.TimeEntry) error
}

// Recorder finalizes the timer into the ledger and keeps the backup snapshot
// in step: a successful recording clears it, a failed one leaves both the
// timer state and the snapshot intact for retry.
type Recorder struct {
	timer     *Timer
	publisher Publisher
	cfg       *config.Store
	log       logging.Logger
}

func NewRecorder(t *Timer, publisher Publisher, cfg *config.Store, log logging.Logger) *Recorder {
	return &Recorder{timer: t, publisher: publisher, cfg: cfg, log: log.With("component", "recorder")}
}

// Record validates, implicitly pauses, persists and resets. On validation
// failure nothing is mutated; on persistence failure the timer stays paused
// with its elapsed time so the user can retry.
func (r *Recorder) Record(ctx context.Context) (*models.TimeEntry, error) {
	if r.timer.Elapsed() <= 0 {
		return nil, fmt.Errorf("%w: no time measured", common.ErrValidation)
	}
	project, workPackage := r.timer.Selection()
	if project == "" || workPackage == "" {
		return nil, fmt.Errorf("%w: no project or work package selected", common.ErrValidation)
	}

	if r.timer.State() == StateRunning {
		if err := r.timer.Pause(); err != nil {
			return nil, err
		}
	}

	entry := &models.TimeEntry{
		Date:            nowFn().Format(models.DateTimeLayout),
		Project:         project,
		WorkPackage:     workPackage,
		DurationSeconds: r.timer.Elapsed(),
	}
	if err := r.publisher.RecordAndPush(ctx, entry); err != nil {
		return nil, err
	}

	r.timer.Reset()
	if err := r.cfg.ClearBackup(); err != nil {
		r.log.Error(ctx, "failed to clear backup snapshot", "error", err)
	}
	return entry, nil
}
