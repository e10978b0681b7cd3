package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/errorlist"
	"github.com/vdobler/rq/parser"
	"github.com/vdobler/rq/progress"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/report"
	"github.com/vdobler/rq/runner"
	"github.com/vdobler/rq/transport"
)

// runRQ is rootCmd's RunE: it discovers and parses script files, runs them
// either sequentially or across a worker pool, writes every requested
// report, and maps the outcome onto the exit codes of spec.md §6.
func runRQ(cmd *cobra.Command, args []string) error {
	paths, err := resolveFiles(args)
	if err != nil {
		return exitWith(exitUsageError, err)
	}

	// Every file is parsed before bailing out, so a run across many
	// scripts reports every syntax error at once instead of only the
	// first one found (spec.md §6 "Exit codes").
	files := make([]ast.File, len(paths))
	var parseErrs errorlist.List
	for i, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			parseErrs = parseErrs.Append(fmt.Errorf("%s: %w", p, err))
			continue
		}
		f, err := parser.ParseScript(p, src)
		if err != nil {
			parseErrs = parseErrs.Append(fmt.Errorf("%s: %w", p, err))
			continue
		}
		files[i] = f
	}
	if err := parseErrs.AsError(); err != nil {
		return exitWith(exitParseError, err)
	}

	vars, secretRaw, err := loadVariables()
	if err != nil {
		return exitWith(exitUsageError, err)
	}
	redactor := redact.New(secretRaw)

	jar, err := loadCookieJar()
	if err != nil {
		return exitWith(exitUsageError, err)
	}

	logger := newLogger(redactor)
	globalOpts := globalOptionsFromFlags()

	cfg := runner.FileRunnerConfig{
		FromEntry:       flagFromEntry,
		ToEntry:         flagToEntry,
		ContinueOnError: flagContinueOnErr,
		GlobalOptions:   globalOpts,
		FileRoot:        flagFileRoot,
		Verbosity:       verbosity(),
	}

	newClient := func() transport.Client { return transport.NewHTTPClient() }

	var results []runner.FileResult
	if flagParallel {
		jobs := make([]runner.Job, len(paths))
		for i, p := range paths {
			jobs[i] = runner.Job{Index: i, Path: p, File: files[i], Vars: vars.Copy(), Cfg: cfg}
		}
		listener := progressListener()
		jobResults := runner.RunPoolWithProgress(cmd.Context(), jobs, flagJobs, newClient, redactor, listener)
		results = make([]runner.FileResult, len(jobResults))
		for i, jr := range jobResults {
			results[i] = jr.Result
		}
	} else {
		fr := &runner.FileRunner{Client: newClient(), Jar: jar, Redactor: redactor, Logger: logger}
		for i, p := range paths {
			res := fr.Run(cmd.Context(), p, files[i], vars.Copy(), cfg)
			results = append(results, res)
		}
	}

	if err := writeReports(results, redactor); err != nil {
		return exitWith(exitRuntimeError, err)
	}

	if err := writeCookieJar(jar); err != nil {
		return exitWith(exitRuntimeError, err)
	}

	if err := printResults(results, redactor); err != nil {
		return exitWith(exitRuntimeError, err)
	}

	return exitWith(exitCodeFor(results), nil)
}

// progressListener builds the runner.ProgressListener used for a parallel
// run, or a progress.NullListener (no progress output) when output has
// been suppressed.
func progressListener() runner.ProgressListener {
	if flagNoOutput || flagJSON {
		return progress.NullListener{}
	}
	return progress.NewTextListener(func(s string) { fmt.Fprintln(os.Stderr, s) })
}

func writeReports(results []runner.FileResult, redactor *redact.Redactor) error {
	if flagReportJSON != "" {
		b, err := report.JSON(results, redactor)
		if err != nil {
			return fmt.Errorf("report-json: %w", err)
		}
		if err := os.WriteFile(flagReportJSON, b, 0o644); err != nil {
			return fmt.Errorf("report-json: %w", err)
		}
	}
	if flagReportJUnit != "" {
		b, err := report.JUnit(results, redactor)
		if err != nil {
			return fmt.Errorf("report-junit: %w", err)
		}
		if err := os.WriteFile(flagReportJUnit, b, 0o644); err != nil {
			return fmt.Errorf("report-junit: %w", err)
		}
	}
	if flagReportTAP != "" {
		if err := os.WriteFile(flagReportTAP, report.TAP(results, redactor), 0o644); err != nil {
			return fmt.Errorf("report-tap: %w", err)
		}
	}
	if flagReportHTML != "" {
		if err := report.HTML(flagReportHTML, results, redactor); err != nil {
			return fmt.Errorf("report-html: %w", err)
		}
	}
	return nil
}

// printResults writes the run's stdout summary to --output (or the
// terminal), honoring --json/--no-output.
func printResults(results []runner.FileResult, redactor *redact.Redactor) error {
	if flagNoOutput {
		return nil
	}

	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if flagJSON {
		b, err := report.JSON(results, redactor)
		if err != nil {
			return err
		}
		_, err = out.Write(append(b, '\n'))
		return err
	}

	return printText(out, results, redactor)
}

func printText(w *os.File, results []runner.FileResult, redactor *redact.Redactor) error {
	color := useColor()
	for _, fr := range results {
		status := "PASS"
		c := ansiGreen
		if !fr.Success {
			status = "FAIL"
			c = ansiRed
		}
		fmt.Fprintln(w, paint(color, c, fmt.Sprintf("%-4s %s (%d entries, %s)", status, fr.Path, len(fr.Entries), fr.Duration)))
		for _, er := range fr.Entries {
			entryColor := ansiGreen
			switch er.Status {
			case runner.Fail, runner.RunnerErrorStatus, runner.Bogus:
				entryColor = ansiRed
			case runner.Skipped, runner.NotRun:
				entryColor = ansiYellow
			}
			fmt.Fprintln(w, "  "+paint(color, entryColor, fmt.Sprintf("[%d] %s", er.EntryIndex, er.Status)))
			for _, e := range er.Errors {
				fmt.Fprintf(w, "      %s: %s\n", e.Stage, redact.ApplyOrNot(redactor, e.Err.Error()))
			}
			for _, a := range er.Asserts {
				if !a.Passed {
					fmt.Fprintf(w, "      assert failed: %s: %s\n", a.Description, redact.ApplyOrNot(redactor, a.Message))
				}
			}
		}
	}
	return nil
}

const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return code + s + ansiReset
}

// exitCodeFor maps a finished run onto spec.md §6's exit code taxonomy:
// any runner error outranks a plain assertion failure.
func exitCodeFor(results []runner.FileResult) int {
	sawAssertFailure := false
	for _, fr := range results {
		for _, er := range fr.Entries {
			if len(er.Errors) > 0 {
				return exitRuntimeError
			}
			for _, a := range er.Asserts {
				if !a.Passed {
					sawAssertFailure = true
				}
			}
		}
	}
	if sawAssertFailure {
		return exitAssertFailure
	}
	return exitSuccess
}

// exitWith prints a non-nil err and terminates the process with code via
// os.Exit; it never returns. Exiting here keeps cobra from printing its
// own "Error: ..." line and from choosing the exit code through RunE's
// return value.
func exitWith(code int, err error) error {
	if err != nil {
		if el, ok := err.(errorlist.List); ok {
			for _, msg := range el.Messages() {
				fmt.Fprintln(os.Stderr, "rq:", msg)
			}
		} else {
			fmt.Fprintln(os.Stderr, "rq:", err)
		}
	}
	os.Exit(code)
	return nil
}
