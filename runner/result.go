// Package runner implements the entry runner (C18) and file runner (C19):
// the state machine that drives one entry through option resolution,
// request execution, capture, and assertion, and the loop that drives a
// whole file's entries in order (spec.md §4.16, §4.17). It is grounded on
// the teacher's (vdobler-ht) Test.Run/execute/ExecuteChecks state machine
// (ht/ht.go) and suite.Suite.Iterate (suite/suite.go), generalized from
// ht's single fixed Check list to this engine's capture/assert/retry/
// repeat model.
package runner

import (
	"time"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/scope"
)

// Status mirrors the teacher's ht.Status enum (ht/report.go). There is no
// separate retried status: EntryResult.Tries counts the attempts made.
type Status int

const (
	NotRun Status = iota
	Skipped
	Pass
	Fail
	RunnerErrorStatus
	Bogus
)

func (s Status) String() string {
	switch s {
	case NotRun:
		return "NotRun"
	case Skipped:
		return "Skipped"
	case Pass:
		return "Pass"
	case Fail:
		return "Fail"
	case RunnerErrorStatus:
		return "Error"
	case Bogus:
		return "Bogus"
	default:
		return "Unknown"
	}
}

// RunnerError is one non-assertion failure recorded against an entry: a
// transport error, an option/template evaluation error, or a capture
// failure (spec.md §3 "Entry result").
type RunnerError struct {
	Stage string // "options", "request", "capture", "delay", "retry"
	Err   error
}

// AssertResult is the outcome of one assertion: implicit version/status/
// header/body checks plus every explicit `[Asserts]` entry, in the order
// spec.md §5 "Ordering guarantees" fixes.
type AssertResult struct {
	Description string
	Sp          ast.Span
	Passed      bool
	TypeMismatch bool
	Message     string
}

// CaptureResult records one evaluated capture, success or failure.
type CaptureResult struct {
	Name string
	Sp   ast.Span
	Err  error
}

// EntryResult is the per-entry outcome (spec.md §3 "Entry result").
type EntryResult struct {
	EntryIndex int
	Source     ast.Span
	Status     Status
	Calls      []httpspec.Call
	Captures   []CaptureResult
	Asserts    []AssertResult
	Errors     []RunnerError
	Duration   time.Duration
	Tries      int

	TransferredRequestBytes  int64
	TransferredResponseBytes int64
}

// Failed reports whether the entry has any runner error or failed
// assertion — the signal the retry loop and the file runner's
// continue-on-error decision both key off.
func (r *EntryResult) Failed() bool {
	if len(r.Errors) > 0 {
		return true
	}
	for _, a := range r.Asserts {
		if !a.Passed {
			return true
		}
	}
	return false
}

// FileResult is the per-file outcome (spec.md §3 "File result").
type FileResult struct {
	Path      string
	Entries   []EntryResult
	Duration  time.Duration
	Success   bool
	Cookies   []CookieSnapshot
	Timestamp time.Time
	Variables *scope.Set
}

// CookieSnapshot is the jar-agnostic view of one persisted cookie in a
// FileResult, decoupling runner/report from the concrete cookiejar type.
type CookieSnapshot struct {
	Domain string
	Path   string
	Name   string
	Value  string
}
