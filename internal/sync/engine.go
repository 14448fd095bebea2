// Package sync reconciles the local ledger with the remote tracker: pushing
// recorded durations to the backup project, pulling assigned tickets and
// logged time entries back into the ledger, and refreshing the project and
// work-package catalog.
//
// Every pass is idempotent. Pushes key on the derived issue subject, ticket
// pulls upsert by remote id, time-entry pulls insert only unseen tuples, and
// the catalog refresh is additive and runs once per epoch.
package sync

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dkrasnovs/timetrack/internal/billing"
	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/ledger"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/dkrasnovs/timetrack/internal/models"
	"github.com/dkrasnovs/timetrack/internal/redmine"
)

// Comments attached to pushed time entries; "initial" marks the submission
// that created the backup ticket.
const (
	commentInitial    = "Initial time entry"
	commentAdditional = "Additional time entry"
)

// Connector hands out the authenticated tracker session.
type Connector interface {
	Connect(ctx context.Context) (redmine.API, error)
	User() *redmine.User
}

// Engine is the reconciliation service.
type Engine struct {
	ledger  *ledger.Ledger
	cfg     *config.Store
	gateway Connector
	log     logging.Logger
}

func NewEngine(l *ledger.Ledger, cfg *config.Store, gateway Connector, log logging.Logger) *Engine {
	return &Engine{ledger: l, cfg: cfg, gateway: gateway, log: log.With("component", "sync")}
}

// runLog tags all log lines of one pass with a correlation id.
func (e *Engine) runLog(pass string) logging.Logger {
	return e.log.With("pass", pass, "run_id", uuid.NewString())
}

// ticketNumber derives the ticket number from a work package: the prefix
// before the first ':', trimmed, or the whole string when there is none.
func ticketNumber(workPackage string) string {
	number, _, _ := strings.Cut(workPackage, ":")
	return strings.TrimSpace(number)
}

// subjectFor is the push idempotency key.
func subjectFor(project, workPackage string) string {
	return fmt.Sprintf("%s - Ticket %s", project, ticketNumber(workPackage))
}

// dayOf reduces a ledger date to its "2006-01-02" day part. Timer records
// carry a full timestamp, pulled entries a plain date.
func dayOf(date string) string {
	day, _, _ := strings.Cut(date, " ")
	return day
}

// RecordAndPush persists the finalized entry and then mirrors it to the
// tracker. The local write is authoritative: its failure propagates so the
// caller can keep state for retry, while a push failure is only logged.
func (e *Engine) RecordAndPush(ctx context.Context, entry *models.TimeEntry) error {
	if err := e.ledger.RecordTimeEntry(ctx, entry); err != nil {
		return err
	}
	e.Push(ctx, entry)
	return nil
}

// Push mirrors one entry to the backup project. It appends a time entry to
// the issue keyed by the derived subject, creating the issue first when it
// does not exist yet; exactly one time entry is submitted either way.
// Failures are logged and swallowed; the entry is already safe locally.
func (e *Engine) Push(ctx context.Context, entry *models.TimeEntry) {
	log := e.runLog("push")

	api, err := e.gateway.Connect(ctx)
	if err != nil {
		log.Warn(ctx, "push skipped", "error", err)
		return
	}

	backupProject := e.cfg.BackupProject()
	if backupProject == "" {
		log.Warn(ctx, "push skipped: no backup project configured")
		return
	}

	projectID, err := e.findProjectID(ctx, api, backupProject)
	if err != nil {
		log.Error(ctx, "push failed", "error", err)
		return
	}

	hours := billing.RoundQuarterHours(entry.DurationSeconds)
	subject := subjectFor(entry.Project, entry.WorkPackage)
	spentOn := dayOf(entry.Date)

	issue, err := api.FindIssueBySubject(ctx, projectID, subject)
	if err != nil {
		log.Error(ctx, "push failed: issue lookup", "subject", subject, "error", err)
		return
	}

	comment := commentAdditional
	if issue == nil {
		comment = commentInitial
		description := fmt.Sprintf("Recorded duration: %.0f seconds (%.2f hours)\nProject: %s\nTicket: %s",
			entry.DurationSeconds, hours, entry.Project, ticketNumber(entry.WorkPackage))
		issue, err = api.CreateIssue(ctx, projectID, subject, description, hours)
		if err != nil {
			log.Error(ctx, "push failed: issue creation", "subject", subject, "error", err)
			return
		}
	}

	if _, err := api.CreateTimeEntry(ctx, issue.ID, spentOn, hours, comment); err != nil {
		log.Error(ctx, "push failed: time entry submission", "issue_id", issue.ID, "error", err)
		return
	}
	log.Info(ctx, "entry pushed", "subject", subject, "issue_id", issue.ID, "hours", hours)
}

func (e *Engine) findProjectID(ctx context.Context, api redmine.API, name string) (int64, error) {
	projects, err := api.Projects(ctx)
	if err != nil {
		return 0, fmt.Errorf("project listing: %w", err)
	}
	for _, p := range projects {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("project %q not found on tracker", name)
}

// PullTickets caches every issue assigned to the authenticated user.
func (e *Engine) PullTickets(ctx context.Context) error {
	log := e.runLog("pull-tickets")

	api, err := e.gateway.Connect(ctx)
	if err != nil {
		return err
	}

	issues, err := api.MyIssues(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assigned issues: %w", err)
	}

	login := ""
	if u := e.gateway.User(); u != nil {
		login = u.Login
	}

	for i := range issues {
		is := &issues[i]
		t := &models.Ticket{
			TicketID:       is.ID,
			Subject:        is.Subject,
			Project:        is.Project.Name,
			Status:         is.Status.Name,
			EstimatedHours: is.EstimatedHours,
			UpdatedOn:      is.UpdatedOn,
			User:           login,
		}
		if err := e.ledger.UpsertTicket(ctx, t); err != nil {
			return fmt.Errorf("failed to cache ticket %d: %w", is.ID, err)
		}
	}

	log.Info(ctx, "tickets pulled", "count", len(issues))
	return nil
}

// PullTimeEntries imports the user's tracker time entries into the ledger.
// Durations come back quarter-hour rounded; an entry is inserted only when
// no identical (date, project, work package, duration) tuple exists yet.
func (e *Engine) PullTimeEntries(ctx context.Context) error {
	log := e.runLog("pull-entries")

	api, err := e.gateway.Connect(ctx)
	if err != nil {
		return err
	}

	remote, err := api.MyTimeEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list time entries: %w", err)
	}

	subjects := map[int64]string{}
	imported := 0
	for _, te := range remote {
		if te.Issue == nil {
			log.Debug(ctx, "skipping project-level time entry", "entry_id", te.ID)
			continue
		}

		subject, err := e.issueSubject(ctx, api, subjects, te.Issue.ID)
		if err != nil {
			log.Warn(ctx, "skipping entry: issue unresolvable", "issue_id", te.Issue.ID, "error", err)
			continue
		}

		entry := &models.TimeEntry{
			Date:            te.SpentOn,
			Project:         te.Project.Name,
			WorkPackage:     fmt.Sprintf("%d: %s", te.Issue.ID, subject),
			DurationSeconds: billing.RoundHours(te.Hours) * 3600,
		}
		if e.ledger.TimeEntryExists(ctx, entry.Date, entry.Project, entry.WorkPackage, entry.DurationSeconds) {
			continue
		}
		if err := e.ledger.RecordTimeEntry(ctx, entry); err != nil {
			return err
		}
		imported++
	}

	log.Info(ctx, "time entries pulled", "remote", len(remote), "imported", imported)
	return nil
}

// issueSubject resolves an issue subject through the ledger's ticket cache
// first, falling back to the tracker.
func (e *Engine) issueSubject(ctx context.Context, api redmine.API, seen map[int64]string, issueID int64) (string, error) {
	if s, ok := seen[issueID]; ok {
		return s, nil
	}
	if t, err := e.ledger.TicketByID(ctx, issueID); err == nil {
		seen[issueID] = t.Subject
		return t.Subject, nil
	}
	issue, err := api.Issue(ctx, issueID)
	if err != nil {
		return "", err
	}
	seen[issueID] = issue.Subject
	return issue.Subject, nil
}

// RefreshCatalog rebuilds the project and work-package catalog from the
// tracker, once per epoch. The merge is additive: local projects and work
// packages are never removed, remote ones are unioned in, and lists come out
// sorted. The backup project is excluded from the catalog.
func (e *Engine) RefreshCatalog(ctx context.Context, force bool) error {
	log := e.runLog("catalog")

	if e.cfg.RemoteConfigUpdated() {
		if !force {
			log.Debug(ctx, "catalog refresh skipped: already refreshed this epoch")
			return nil
		}
		if err := e.cfg.ResetRefreshFlag(); err != nil {
			return err
		}
	}

	api, err := e.gateway.Connect(ctx)
	if err != nil {
		return err
	}

	remote, err := api.Projects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	snap := e.cfg.Snapshot()
	projects := slices.Clone(snap.Projects)
	packages := snap.WorkPackages

	backupProject := e.cfg.BackupProject()
	for _, p := range remote {
		if p.Name == backupProject {
			continue
		}
		if !slices.Contains(projects, p.Name) {
			projects = append(projects, p.Name)
		}

		issues, err := api.ProjectIssues(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list issues of %q: %w", p.Name, err)
		}
		for _, is := range issues {
			wp := fmt.Sprintf("%d: %s", is.ID, is.Subject)
			if !slices.Contains(packages[p.Name], wp) {
				packages[p.Name] = append(packages[p.Name], wp)
			}
		}
	}

	slices.Sort(projects)
	for name := range packages {
		slices.Sort(packages[name])
	}

	if err := e.cfg.SetCatalog(projects, packages); err != nil {
		return err
	}
	log.Info(ctx, "catalog refreshed", "projects", len(projects))
	return nil
}

// Forecast estimates the next duration for a selection from its historical
// average, quarter-hour rounded. ok is false when there is no history.
func (e *Engine) Forecast(ctx context.Context, project, workPackage string) (hours float64, ok bool) {
	avg := e.ledger.AvgDurationFor(ctx, project, workPackage)
	if avg <= 0 {
		return 0, false
	}
	return billing.RoundQuarterHours(avg), true
}
