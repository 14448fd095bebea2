package cli

import (
	"bufio"
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dkrasnovs/timetrack/internal/timer"
)

// RunTrack is the interactive tracking session: recovery prompt first, then
// the REPL with the checkpointer snapshotting progress every second.
func (a *App) RunTrack(ctx context.Context) error {
	if err := a.RecoverBackup(ctx); err != nil {
		return err
	}

	cp := timer.NewCheckpointer(a.timer, a.cfg, a.log)
	cp.Start(ctx)
	defer cp.Stop()

	runREPL(ctx, a, a.statusLine, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) statusLine() string {
	return fmt.Sprintf("[%s] %s", a.timer.State(), formatHMS(a.timer.Elapsed()))
}

// Check connects, refreshes the catalog and prints the tracked hours per
// configured work package as the tracker sees them.
func (a *App) Check(ctx context.Context, w io.Writer) error {
	api, err := a.gateway.Connect(ctx)
	if err != nil {
		return err
	}
	if err := a.engine.RefreshCatalog(ctx, false); err != nil {
		return err
	}

	remote, err := api.MyTimeEntries(ctx)
	if err != nil {
		return err
	}
	hoursByIssue := map[int64]float64{}
	for _, te := range remote {
		if te.Issue != nil {
			hoursByIssue[te.Issue.ID] += te.Hours
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, project := range a.cfg.Projects() {
		fmt.Fprintf(tw, "%s\n", project)
		for _, wp := range a.cfg.WorkPackages(project) {
			id, ok := ticketIDOf(wp)
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "\t%s\t%.2f h\n", wp, hoursByIssue[id])
		}
	}
	return nil
}

// ticketIDOf parses the numeric prefix of a "<id>: <subject>" work package.
func ticketIDOf(workPackage string) (int64, bool) {
	prefix, _, found := strings.Cut(workPackage, ":")
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Export writes the full work log as CSV.
func (a *App) Export(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "project", "work_package", "duration_seconds"}); err != nil {
		return err
	}
	for _, e := range a.ledger.AllEntries(ctx) {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Project,
			e.WorkPackage,
			strconv.FormatFloat(e.DurationSeconds, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Report prints the average duration per work package in the given unit, or
// entry counts when frequency is set.
func (a *App) Report(ctx context.Context, w io.Writer, unit string, frequency bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if frequency {
		fmt.Fprintln(tw, "work package\tentries")
		for _, c := range a.ledger.CountPerWorkPackage(ctx) {
			fmt.Fprintf(tw, "%s\t%d\n", c.WorkPackage, c.Count)
		}
		return nil
	}

	divisor := 1.0
	switch unit {
	case "seconds", "":
	case "minutes":
		divisor = 60
	case "hours":
		divisor = 3600
	default:
		return fmt.Errorf("unknown unit %q (want seconds, minutes or hours)", unit)
	}

	fmt.Fprintf(tw, "work package\tavg (%s)\n", cmp.Or(unit, "seconds"))
	for _, avg := range a.ledger.AvgDurationPerWorkPackage(ctx) {
		fmt.Fprintf(tw, "%s\t%.2f\n", avg.WorkPackage, avg.AvgSeconds/divisor)
	}
	return nil
}

// Reset wipes the ledger after an explicit confirmation.
func (a *App) Reset(ctx context.Context) error {
	ok, err := a.prompter.Confirm("Discard ALL recorded entries and cached tickets?")
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Reset cancelled")
		return nil
	}
	if err := a.ledger.ResetAll(ctx); err != nil {
		return err
	}
	printlnFn("Ledger reset")
	return nil
}
