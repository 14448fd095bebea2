package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface is the minimal command surface the tracking loop needs. The App
// type satisfies it; tests provide a lightweight stub.
type execIface interface {
	Connect(ctx context.Context) error
	StartTimer(ctx context.Context) error
	PauseTimer(ctx context.Context) error
	Record(ctx context.Context) error
	Status(ctx context.Context) error
	Forecast(ctx context.Context) error
	Today(ctx context.Context) error
	ChooseProject(ctx context.Context) error
	ChoosePackage(ctx context.Context) error
	AddPackage(ctx context.Context) error
	RemovePackage(ctx context.Context) error
	SyncAll(ctx context.Context, forceRefresh bool) error
	ConfirmShutdown(ctx context.Context) bool
}

const replHelp = `Available commands:
  start | s       start or resume the timer
  pause | p       pause the timer
  record | r      record the measured time
  status | st     show timer state and selection
  project         choose the active project
  package         choose the active work package
  add             add a custom project / work package
  rm              remove a work package
  forecast | f    expected duration for the selection
  today           entries recorded today
  sync            reconcile with the tracker
  connect         connect to the tracker
  help            this text
  exit | quit     leave (unrecorded time is guarded)`

// runREPL reads commands line by line and dispatches to a. Handler errors
// are reported by the handlers themselves; the loop only does I/O. Exit is
// gated by ConfirmShutdown so measured time cannot be lost silently.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tt> %s > ", statusFn()))
		if !scanner.Scan() {
			_ = a.ConfirmShutdown(ctx)
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			printlnFn(replHelp)

		case "s", "start":
			_ = a.StartTimer(ctx)

		case "p", "pause":
			_ = a.PauseTimer(ctx)

		case "r", "record":
			_ = a.Record(ctx)

		case "st", "status":
			_ = a.Status(ctx)

		case "project", "projects":
			_ = a.ChooseProject(ctx)

		case "package", "packages":
			_ = a.ChoosePackage(ctx)

		case "add":
			_ = a.AddPackage(ctx)

		case "rm":
			_ = a.RemovePackage(ctx)

		case "f", "forecast":
			_ = a.Forecast(ctx)

		case "today":
			_ = a.Today(ctx)

		case "sync":
			force := len(parts) > 1 && parts[1] == "force"
			_ = a.SyncAll(ctx, force)

		case "connect":
			_ = a.Connect(ctx)

		case "exit", "quit":
			if a.ConfirmShutdown(ctx) {
				printlnFn("Bye!")
				return
			}

		default:
			printlnFn("Unknown command:", parts[0])
		}
	}
}
