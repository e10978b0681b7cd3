package report

import (
	"bytes"
	"fmt"

	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/runner"
)

// TAP renders one test per entry with ok/not ok and a diagnostic YAML
// block on failure (spec.md §6 "TAP: one test per file or entry with
// ok/not ok and diagnostic YAML."). No TAP-specific library is used
// anywhere in the example pack; the format is a handful of fixed-syntax
// lines, so plain text formatting is used directly. Diagnostic messages
// run through redactor before being written (spec.md §4.10); redactor may
// be nil.
func TAP(results []runner.FileResult, redactor *redact.Redactor) []byte {
	var buf bytes.Buffer

	total := 0
	for _, fr := range results {
		total += len(fr.Entries)
	}

	buf.WriteString("TAP version 13\n")
	fmt.Fprintf(&buf, "1..%d\n", total)

	n := 0
	for _, fr := range results {
		for _, er := range fr.Entries {
			n++
			name := fmt.Sprintf("%s entry %d", fr.Path, er.EntryIndex)
			switch er.Status {
			case runner.Pass:
				fmt.Fprintf(&buf, "ok %d - %s\n", n, name)
			case runner.Skipped, runner.NotRun:
				fmt.Fprintf(&buf, "ok %d - %s # SKIP\n", n, name)
			default:
				fmt.Fprintf(&buf, "not ok %d - %s\n", n, name)
				writeDiagnostic(&buf, er, redactor)
			}
		}
	}
	return buf.Bytes()
}

func writeDiagnostic(buf *bytes.Buffer, er runner.EntryResult, redactor *redact.Redactor) {
	buf.WriteString("  ---\n")
	fmt.Fprintf(buf, "  status: %s\n", er.Status)
	if len(er.Errors) > 0 {
		buf.WriteString("  errors:\n")
		for _, e := range er.Errors {
			fmt.Fprintf(buf, "    - stage: %s\n      message: %q\n", e.Stage, redact.ApplyOrNot(redactor, e.Err.Error()))
		}
	}
	for _, a := range er.Asserts {
		if !a.Passed {
			fmt.Fprintf(buf, "  failure: %q\n", redact.ApplyOrNot(redactor, a.Description+": "+a.Message))
		}
	}
	buf.WriteString("  ...\n")
}
