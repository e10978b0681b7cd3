// Package progress implements the event-driven progress reporting of
// spec.md §5 ("Progress-bar updates: event-driven; the parallel
// coordinator emits progress events on each worker state change and the
// TUI consumes them with a minimum refresh interval ... and a short
// startup throttle to avoid flicker."). It is grounded on
// _examples/original_source/packages/hurl/src/parallel/progress.rs's
// ParProgress/Throttle pair, translated from Hurl's Rust TUI into
// implementations of runner.ProgressListener that runner.RunPoolWithProgress
// feeds without itself depending on any particular terminal library.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/vdobler/rq/runner"
)

// Throttle limits how often a Listener's Update is actually allowed to
// redraw, to avoid flicker on fast terminals (spec.md §5 "minimum refresh
// interval ... and a short startup throttle"). Grounded on Throttle in
// progress.rs.
type Throttle struct {
	mu            sync.Mutex
	start         time.Time
	lastUpdate    time.Time
	interval      time.Duration
	firstThrottle time.Duration
}

// NewThrottle creates a throttle with the given steady-state refresh
// interval and an initial grace period (firstThrottle) during which
// updates are allowed through immediately so the UI can stabilize.
func NewThrottle(interval, firstThrottle time.Duration) *Throttle {
	return &Throttle{start: time.Now(), interval: interval, firstThrottle: firstThrottle}
}

// DefaultThrottle matches Hurl's UPDATE_INTERVAL/FIRST_THROTTLE constants.
func DefaultThrottle() *Throttle {
	return NewThrottle(100*time.Millisecond, 16*time.Millisecond)
}

// Allowed reports whether enough time has passed since the last update
// for a redraw to be worth doing.
func (t *Throttle) Allowed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastUpdate.IsZero() {
		return true
	}
	return time.Since(t.lastUpdate) >= t.interval
}

// Update records that a redraw just happened, unless we're still inside
// the startup grace period (during which every call is a no-op, so the
// very first real redraw is never throttled away).
func (t *Throttle) Update() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if time.Since(t.start) < t.firstThrottle {
		return
	}
	t.lastUpdate = time.Now()
}

// Reset forces the next Allowed call to return true.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastUpdate = time.Time{}
}

// TextListener is a minimal runner.ProgressListener that writes one line
// per job completion and a throttled one-line progress summary, suitable
// for a plain (non-TTY) stderr stream — the Go analogue of Hurl's
// Mode::TestWithoutProgress.
type TextListener struct {
	Out      func(string)
	throttle *Throttle
}

// NewTextListener builds a TextListener writing through out.
func NewTextListener(out func(string)) *TextListener {
	return &TextListener{Out: out, throttle: DefaultThrottle()}
}

func (l *TextListener) Update(workers []runner.WorkerState, completed, total int) {
	if !l.throttle.Allowed() {
		return
	}
	l.throttle.Update()
	running := 0
	for _, w := range workers {
		if !w.Idle {
			running++
		}
	}
	percent := 0
	if total > 0 {
		percent = completed * 100 / total
	}
	l.Out(fmt.Sprintf("Executed files: %d/%d (%d%%), %d running", completed, total, percent, running))
}

func (l *TextListener) Completed(job runner.JobResult) {
	status := "Success"
	if !job.Result.Success {
		status = "Failure"
	}
	calls := 0
	for _, e := range job.Result.Entries {
		calls += len(e.Calls)
	}
	l.Out(fmt.Sprintf("%s %s (%d request(s) in %s)", status, job.Result.Path, calls, job.Result.Duration))
}

// NullListener discards every event; the default when no progress output
// was requested (spec.md §5's Mode::Default).
type NullListener struct{}

func (NullListener) Update([]runner.WorkerState, int, int) {}
func (NullListener) Completed(runner.JobResult)            {}
