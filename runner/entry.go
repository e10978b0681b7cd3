package runner

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/cookiejar"
	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/transport"
)

// EntryRunner drives one entry through the state machine of spec.md §4.16:
// Start -> EvalOptions -> [Skip?] -> Delay -> Request -> Captures -> Asserts
// -> [HasError?] -> Done/Retry/Repeat. It is grounded on the teacher's
// Test.Run/execute/ExecuteChecks trio (ht/ht.go), generalized from ht's
// fixed Check list to this engine's capture+assert+retry+repeat model.
//
// Logging keeps the teacher's four-level Verbosity gating (errorf/infof/
// debugf/tracef, ht/ht.go) but backs it with zerolog instead of the
// teacher's bare Log interface, so "entry"/"file"/"try" become real
// structured fields rather than %q-interpolated text.
type EntryRunner struct {
	Client   transport.Client
	Jar      *cookiejar.Jar
	Redactor *redact.Redactor
	FileRoot string
	FilePath string

	Logger    zerolog.Logger
	Verbosity int
}

func (r *EntryRunner) errorf(index int, format string, v ...interface{}) {
	if r.Verbosity >= 0 {
		r.Logger.Error().Str("file", r.FilePath).Int("entry", index).Msgf(format, v...)
	}
}

func (r *EntryRunner) infof(index int, format string, v ...interface{}) {
	if r.Verbosity >= 1 {
		r.Logger.Info().Str("file", r.FilePath).Int("entry", index).Msgf(format, v...)
	}
}

func (r *EntryRunner) debugf(index int, format string, v ...interface{}) {
	if r.Verbosity >= 2 {
		r.Logger.Debug().Str("file", r.FilePath).Int("entry", index).Msgf(format, v...)
	}
}

func (r *EntryRunner) tracef(index, try int, format string, v ...interface{}) {
	if r.Verbosity >= 3 {
		r.Logger.Trace().Str("file", r.FilePath).Int("entry", index).Int("try", try).Msgf(format, v...)
	}
}

// Run executes entry at index (1-based, matching spec.md §3 "Entries are
// indexed from 1") against vars, starting from globalOpts. vars is mutated
// in place by captures and `variable` options, per the linear variable flow
// of spec.md §4.17.
func (r *EntryRunner) Run(ctx context.Context, index int, entry ast.Entry, vars *scope.Set, globalOpts httpspec.Options) EntryResult {
	started := time.Now()
	result := EntryResult{EntryIndex: index, Source: entry.Sp}
	defer func() { result.Duration = time.Since(started) }()

	r.infof(index, "Running")

	evalCtx := &eval.Context{Vars: vars}
	opts, err := httpspec.ResolveOptions(evalCtx, globalOpts, entry.Request.Sections)
	if err != nil {
		r.errorf(index, "options: %s", err)
		result.Status = Bogus
		result.Errors = append(result.Errors, RunnerError{Stage: "options", Err: err})
		return result
	}

	if opts.Skip {
		r.debugf(index, "Skipped")
		result.Status = Skipped
		return result
	}

	repeats := opts.Repeat
	if repeats <= 0 {
		repeats = 1
	}
	infiniteRepeat := opts.Repeat < 0

	for iteration := int64(0); infiniteRepeat || iteration < repeats; iteration++ {
		if ctx.Err() != nil {
			result.Status = RunnerErrorStatus
			result.Errors = append(result.Errors, RunnerError{Stage: "delay", Err: ctx.Err()})
			return result
		}
		if opts.DelayMS > 0 {
			if err := sleepCtx(ctx, time.Duration(opts.DelayMS)*time.Millisecond); err != nil {
				result.Status = RunnerErrorStatus
				result.Errors = append(result.Errors, RunnerError{Stage: "delay", Err: err})
				return result
			}
		}

		attempt := r.attempt(ctx, index, evalCtx, entry, opts)
		result.Calls = append(result.Calls, attempt.calls...)
		result.Captures = append(result.Captures, attempt.captures...)
		result.Asserts = attempt.asserts // last attempt's asserts are the ones that matter
		result.Errors = append(result.Errors, attempt.errors...)
		result.Tries += attempt.tries

		if attempt.failed() {
			result.Status = RunnerErrorStatus
			if len(result.Errors) == 0 {
				result.Status = Fail
			}
			r.infof(index, "Result: %s after %d tries", result.Status, result.Tries)
			return result
		}

		result.Status = Pass
	}

	r.infof(index, "Result: %s after %d tries", result.Status, result.Tries)
	return result
}

type attemptOutcome struct {
	calls    []httpspec.Call
	captures []CaptureResult
	asserts  []AssertResult
	errors   []RunnerError
	tries    int
}

func (a attemptOutcome) failed() bool {
	if len(a.errors) > 0 {
		return true
	}
	for _, res := range a.asserts {
		if !res.Passed {
			return true
		}
	}
	return false
}

// attempt runs Request -> Captures -> Asserts, retrying per opts.Retry on
// runner error or assert failure (spec.md §4.16 "Retry").
func (r *EntryRunner) attempt(ctx context.Context, index int, evalCtx *eval.Context, entry ast.Entry, opts httpspec.Options) attemptOutcome {
	var out attemptOutcome
	retryBudget := opts.Retry
	infiniteRetry := retryBudget < 0

	for try := 1; ; try++ {
		out.tries = try
		out.calls, out.captures, out.asserts, out.errors = nil, nil, nil, nil

		spec, err := httpspec.BuildRequest(evalCtx, entry.Request, r.FileRoot, r.Redactor)
		if err != nil {
			out.errors = append(out.errors, RunnerError{Stage: "request", Err: err})
		} else {
			r.tracef(index, try, "%s %s", spec.Method, spec.URL)
			call, cookies, cerr := r.execute(ctx, spec, opts)
			if cerr != nil {
				out.errors = append(out.errors, RunnerError{Stage: "request", Err: cerr})
			} else {
				out.calls = append(out.calls, call)
				evalCtx.Call = callViewFrom(call.Response, httpCookiesFrom(cookies))

				captures := captureSections(entry.Response)
				out.captures = evaluateCaptures(evalCtx, captures, r.Redactor)
				for _, c := range out.captures {
					if c.Err != nil {
						out.errors = append(out.errors, RunnerError{Stage: "capture", Err: c.Err})
					}
				}

				out.asserts = evaluateAsserts(evalCtx, entry.Response, call, r.FileRoot, r.Redactor)
			}
		}

		if !out.failed() {
			return out
		}
		if !hasRetryableFailure(out) {
			return out
		}
		if !infiniteRetry && int64(try) > retryBudget {
			return out
		}
		r.infof(index, "Retry %d", try)
		if opts.RetryIntervalMS > 0 {
			if err := sleepCtx(ctx, time.Duration(opts.RetryIntervalMS)*time.Millisecond); err != nil {
				out.errors = append(out.errors, RunnerError{Stage: "retry", Err: err})
				return out
			}
		}
	}
}

// retryable is implemented by both eval.RuntimeError and
// transport.TransportError; only errors satisfying it are worth retrying
// (spec.md §6/§7). An assert failure with no runner error is always
// retryable — retrying gives a slow-to-converge server another chance.
type retryable interface {
	Retryable() bool
}

// hasRetryableFailure reports whether out's failure is one the retry
// policy should act on: any runner error, or any failed/mismatched
// assertion (spec.md §4.16 "if any runner error OR any assert failure
// remains"). A runner error that explicitly declares itself non-retryable
// (e.g. UnsupportedContentEncoding) stops the retry loop immediately.
func hasRetryableFailure(out attemptOutcome) bool {
	if !out.failed() {
		return false
	}
	for _, e := range out.errors {
		if r, ok := e.Err.(retryable); ok && !r.Retryable() {
			return false
		}
	}
	return true
}

func (r *EntryRunner) execute(ctx context.Context, spec httpspec.RequestSpec, opts httpspec.Options) (httpspec.Call, []*http.Cookie, error) {
	callOpts := callOptionsFrom(opts)
	outcome, err := r.Client.Execute(ctx, spec, callOpts)
	if err != nil {
		return httpspec.Call{}, nil, err
	}
	if r.Jar != nil && len(outcome.Cookies) > 0 {
		if u, perr := url.Parse(spec.URL); perr == nil {
			r.Jar.SetCookies(u, outcome.Cookies)
		}
	}
	call := httpspec.Call{
		Request:  spec,
		Response: outcome.Response,
		Timings:  outcome.Timings,
	}
	return call, outcome.Cookies, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
