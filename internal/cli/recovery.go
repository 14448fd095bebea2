package cli

import (
	"context"
	"fmt"

	"github.com/dkrasnovs/timetrack/internal/models"
	"github.com/dkrasnovs/timetrack/internal/timer"
)

// RecoverBackup offers a crash snapshot for recovery before tracking starts.
// A dismissed or failed prompt keeps the snapshot, so the question comes back
// on the next startup.
func (a *App) RecoverBackup(ctx context.Context) error {
	b, ok := a.cfg.Backup()
	if !ok {
		return nil
	}

	printlnFn(fmt.Sprintf("Unfinished session found: %s on %s / %s (saved %s)",
		formatHMS(b.ElapsedSeconds), b.Project, b.WorkPackage, b.SavedAt.Format(models.DateTimeLayout)))

	choice, err := a.prompter.Choice("Recover it?", []string{"resume", "save", "discard"})
	if err != nil {
		a.log.Warn(ctx, "recovery prompt dismissed, snapshot kept", "error", err)
		return nil
	}

	switch choice {
	case "resume":
		if err := a.timer.Restore(b.ElapsedSeconds, b.Project, b.WorkPackage); err != nil {
			printlnFn("Cannot resume:", err)
			return err
		}
		return a.Status(ctx)

	case "save":
		if err := a.timer.Restore(b.ElapsedSeconds, b.Project, b.WorkPackage); err != nil {
			printlnFn("Cannot recover:", err)
			return err
		}
		// a failed recording keeps the restored time and the snapshot
		return a.Record(ctx)

	case "discard":
		return a.cfg.ClearBackup()
	}
	return nil
}

// ConfirmShutdown guards the exit: unrecorded time must be saved, discarded
// or the shutdown cancelled. It returns true when exiting is allowed.
func (a *App) ConfirmShutdown(ctx context.Context) bool {
	if a.timer.State() == timer.StateIdle && a.timer.Elapsed() <= 0 {
		return true
	}

	printlnFn(fmt.Sprintf("Unrecorded time: %s", formatHMS(a.timer.Elapsed())))
	choice, err := a.prompter.Choice("Before exiting", []string{"save", "discard", "cancel"})
	if err != nil {
		return false
	}

	switch choice {
	case "save":
		return a.Record(ctx) == nil
	case "discard":
		a.timer.Reset()
		if err := a.cfg.ClearBackup(); err != nil {
			a.log.Error(ctx, "failed to clear backup snapshot", "error", err)
		}
		return true
	default:
		return false
	}
}
