// Package cli wires the services together and exposes them as cobra commands
// plus an interactive tracking loop.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/ledger"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/dkrasnovs/timetrack/internal/models"
	"github.com/dkrasnovs/timetrack/internal/prompt"
	"github.com/dkrasnovs/timetrack/internal/redmine"
	timesync "github.com/dkrasnovs/timetrack/internal/sync"
	"github.com/dkrasnovs/timetrack/internal/timer"

	_ "modernc.org/sqlite"
)

// printlnFn and nowFn are test seams for user-facing output and time.
var (
	printlnFn = fmt.Println
	nowFn     = time.Now
)

// Options locate the two files the application owns.
type Options struct {
	ConfigPath   string
	DatabasePath string
}

type App struct {
	cfg      *config.Store
	ledger   *ledger.Ledger
	gateway  *redmine.Gateway
	engine   *timesync.Engine
	timer    *timer.Timer
	recorder *timer.Recorder
	prompter prompt.Prompter
	log      logging.Logger
}

func NewApp(ctx context.Context, opts Options, log logging.Logger) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath, log)
	if err != nil {
		return nil, err
	}

	db, err := ledger.OpenDatabase(ctx, opts.DatabasePath)
	if err != nil {
		return nil, err
	}

	led := ledger.New(db, log)
	prompter := prompt.NewTerminal()
	gateway := redmine.NewGateway(cfg, prompter, log)
	engine := timesync.NewEngine(led, cfg, gateway, log)
	tm := timer.New()

	return &App{
		cfg:      cfg,
		ledger:   led,
		gateway:  gateway,
		engine:   engine,
		timer:    tm,
		recorder: timer.NewRecorder(tm, engine, cfg, log),
		prompter: prompter,
		log:      log,
	}, nil
}

func (a *App) Close() error {
	return a.ledger.Close()
}

// Connect establishes the tracker session interactively.
func (a *App) Connect(ctx context.Context) error {
	if _, err := a.gateway.Connect(ctx); err != nil {
		printlnFn("Not connected:", err)
		return err
	}
	printlnFn("Connected as", a.gateway.User().Login)
	return nil
}

// StartTimer starts or resumes measuring.
func (a *App) StartTimer(ctx context.Context) error {
	if err := a.timer.Start(); err != nil {
		printlnFn(err)
		return err
	}
	return a.Status(ctx)
}

// PauseTimer pauses the running timer.
func (a *App) PauseTimer(ctx context.Context) error {
	if err := a.timer.Pause(); err != nil {
		printlnFn(err)
		return err
	}
	return a.Status(ctx)
}

// Record finalizes the measured time into the ledger and pushes it.
func (a *App) Record(ctx context.Context) error {
	entry, err := a.recorder.Record(ctx)
	if err != nil {
		printlnFn("Not recorded:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Recorded %s on %s / %s (%s billable)",
		formatHMS(entry.DurationSeconds), entry.Project, entry.WorkPackage, formatBillable(entry.DurationSeconds)))
	return nil
}

// Status prints the timer state, elapsed time and selection.
func (a *App) Status(context.Context) error {
	project, workPackage := a.timer.Selection()
	if project == "" {
		project = "-"
	}
	if workPackage == "" {
		workPackage = "-"
	}
	printlnFn(fmt.Sprintf("[%s] %s  %s / %s",
		a.timer.State(), formatHMS(a.timer.Elapsed()), project, workPackage))
	return nil
}

// Forecast prints the expected duration for the current selection, derived
// from the historical average.
func (a *App) Forecast(ctx context.Context) error {
	project, workPackage := a.timer.Selection()
	if project == "" || workPackage == "" {
		printlnFn("Select a project and work package first")
		return nil
	}
	hours, ok := a.engine.Forecast(ctx, project, workPackage)
	if !ok {
		printlnFn("No historical data for", project, "/", workPackage)
		return nil
	}
	printlnFn(fmt.Sprintf("Forecast for %s / %s: %.2f h", project, workPackage, hours))
	return nil
}

// Today prints the entries recorded today with their billable hours.
func (a *App) Today(ctx context.Context) error {
	day := nowFn().Format(models.DateLayout)
	entries := a.ledger.EntriesForDay(ctx, day)
	if len(entries) == 0 {
		printlnFn("Nothing recorded today")
		return nil
	}

	var total float64
	for _, e := range entries {
		total += e.DurationSeconds
		printlnFn(fmt.Sprintf("  %-40s %-30s %s (%s)",
			e.Project, e.WorkPackage, formatHMS(e.DurationSeconds), formatBillable(e.DurationSeconds)))
	}
	printlnFn(fmt.Sprintf("Total: %s (%s)", formatHMS(total), formatBillable(total)))
	return nil
}

// ChooseProject selects the active project, clearing the work package.
func (a *App) ChooseProject(ctx context.Context) error {
	projects := a.cfg.Projects()
	if len(projects) == 0 {
		printlnFn("No projects configured")
		return nil
	}
	project, err := a.prompter.Choice("Projects", projects)
	if err != nil {
		return err
	}
	a.timer.Select(project, "")
	return a.ChoosePackage(ctx)
}

// ChoosePackage selects the active work package of the current project.
func (a *App) ChoosePackage(ctx context.Context) error {
	project, _ := a.timer.Selection()
	if project == "" {
		return a.ChooseProject(ctx)
	}
	packages := a.cfg.WorkPackages(project)
	if len(packages) == 0 {
		printlnFn("No work packages for", project)
		return nil
	}
	workPackage, err := a.prompter.Choice("Work packages of "+project, packages)
	if err != nil {
		return err
	}
	a.timer.Select(project, workPackage)
	return a.Status(ctx)
}

// AddPackage adds a custom project or work package to the catalog.
func (a *App) AddPackage(ctx context.Context) error {
	project, err := a.prompter.Line("Project")
	if err != nil {
		return err
	}
	workPackage, err := a.prompter.Line("Work package")
	if err != nil {
		return err
	}
	if project == "" || workPackage == "" {
		printlnFn("Both a project and a work package are required")
		return nil
	}
	if err := a.cfg.AddProject(project); err != nil {
		return err
	}
	return a.cfg.AddWorkPackage(project, workPackage)
}

// RemovePackage removes a work package from the catalog.
func (a *App) RemovePackage(ctx context.Context) error {
	project, err := a.prompter.Choice("Projects", a.cfg.Projects())
	if err != nil {
		return err
	}
	packages := a.cfg.WorkPackages(project)
	if len(packages) == 0 {
		printlnFn("No work packages for", project)
		return nil
	}
	workPackage, err := a.prompter.Choice("Work packages of "+project, packages)
	if err != nil {
		return err
	}
	if err := a.cfg.RemoveWorkPackage(project, workPackage); err != nil {
		return err
	}

	if len(a.cfg.WorkPackages(project)) == 0 {
		drop, err := a.prompter.Confirm("No work packages left; remove project " + project + " too?")
		if err != nil || !drop {
			return nil
		}
		return a.cfg.RemoveProject(project)
	}
	return nil
}

// SyncAll runs the full reconciliation pass: catalog, tickets, time entries.
func (a *App) SyncAll(ctx context.Context, forceRefresh bool) error {
	if err := a.engine.RefreshCatalog(ctx, forceRefresh); err != nil {
		printlnFn("Catalog refresh failed:", err)
		return err
	}
	if err := a.engine.PullTickets(ctx); err != nil {
		printlnFn("Ticket pull failed:", err)
		return err
	}
	if err := a.engine.PullTimeEntries(ctx); err != nil {
		printlnFn("Time entry pull failed:", err)
		return err
	}
	printlnFn("Sync complete")
	return nil
}
