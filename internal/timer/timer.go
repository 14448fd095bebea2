// Package timer holds the tracking state machine, the recorder that
// finalizes a measured duration into the ledger, and the checkpointer that
// snapshots progress for crash recovery.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkrasnovs/timetrack/internal/common"
)

// State is the tracking state. Transitions: Idle→Running (start),
// Running→Paused (pause), Paused→Running (start), any→Idle (record).
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// nowFn is a seam for tests.
var nowFn = time.Now

// Timer accumulates elapsed work time. All state is guarded by one mutex;
// the checkpointer goroutine only ever reads through the same lock.
type Timer struct {
	mu          sync.Mutex
	state       State
	accumulated float64 // seconds folded in by Pause
	startedAt   time.Time
	project     string
	workPackage string
}

func New() *Timer {
	return &Timer{}
}

// Start begins or resumes measuring.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateRunning {
		return fmt.Errorf("%w: timer is already running", common.ErrValidation)
	}
	t.startedAt = nowFn()
	t.state = StateRunning
	return nil
}

// Pause folds the running delta into the accumulated total.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return fmt.Errorf("%w: timer is not running", common.ErrValidation)
	}
	t.fold()
	return nil
}

// fold moves the running delta into accumulated and parks the timer.
// Callers must hold t.mu.
func (t *Timer) fold() {
	t.accumulated += nowFn().Sub(t.startedAt).Seconds()
	t.state = StatePaused
}

// Elapsed returns the total measured seconds, including the delta of a
// currently running stretch.
func (t *Timer) Elapsed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed()
}

func (t *Timer) elapsed() float64 {
	if t.state == StateRunning {
		return t.accumulated + nowFn().Sub(t.startedAt).Seconds()
	}
	return t.accumulated
}

// State returns the current tracking state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Select records the project and work package the measured time belongs to.
func (t *Timer) Select(project, workPackage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.project = project
	t.workPackage = workPackage
}

// Selection returns the current project and work package.
func (t *Timer) Selection() (project, workPackage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.project, t.workPackage
}

// Restore loads a recovered snapshot into an idle timer, leaving it Paused.
// Nothing is written to the ledger; recording stays an explicit action.
func (t *Timer) Restore(elapsedSeconds float64, project, workPackage string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return fmt.Errorf("%w: cannot restore into a %s timer", common.ErrValidation, t.state)
	}
	if elapsedSeconds <= 0 {
		return fmt.Errorf("%w: nothing to restore", common.ErrValidation)
	}
	t.accumulated = elapsedSeconds
	t.project = project
	t.workPackage = workPackage
	t.state = StatePaused
	return nil
}

// Reset returns the timer to Idle, discarding elapsed time but keeping the
// selection for the next stretch.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accumulated = 0
	t.startedAt = time.Time{}
	t.state = StateIdle
}
