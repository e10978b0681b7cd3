package report

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/runner"
)

// JUnit renders one testsuite per file, one testcase per entry (spec.md §6
// "JUnit XML: one testsuite per file, one testcase per entry."), grounded
// on the teacher's suite.Suite.JUnit4XML (suite/report.go). No JUnit
// writer library is used anywhere in the example pack, so this stays on
// encoding/xml as the teacher itself does. Failure/error messages are run
// through redactor before being written (spec.md §4.10); redactor may be
// nil.
func JUnit(results []runner.FileResult, redactor *redact.Redactor) ([]byte, error) {
	type errorMsg struct {
		Message string `xml:"message,attr"`
		Typ     string `xml:"type,attr"`
	}
	type testcase struct {
		XMLName   xml.Name  `xml:"testcase"`
		Name      string    `xml:"name,attr"`
		Classname string    `xml:"classname,attr"`
		Time      float64   `xml:"time,attr"`
		Skipped   *struct{} `xml:"skipped,omitempty"`
		Error     *errorMsg `xml:"error,omitempty"`
		Failure   *errorMsg `xml:"failure,omitempty"`
	}
	type testsuite struct {
		XMLName   xml.Name   `xml:"testsuite"`
		Name      string     `xml:"name,attr"`
		Tests     int        `xml:"tests,attr"`
		Errors    int        `xml:"errors,attr"`
		Failures  int        `xml:"failures,attr"`
		Skipped   int        `xml:"skipped,attr"`
		Time      float64    `xml:"time,attr"`
		Timestamp string     `xml:"timestamp,attr"`
		Testcase  []testcase `xml:"testcase"`
	}
	type testsuites struct {
		XMLName   xml.Name    `xml:"testsuites"`
		Testsuite []testsuite `xml:"testsuite"`
	}

	out := testsuites{}
	for _, fr := range results {
		ts := testsuite{
			Name:      fr.Path,
			Time:      durationMS(fr.Duration) / 1000,
			Timestamp: fr.Timestamp.Format("2006-01-02T15:04:05"),
		}
		for _, er := range fr.Entries {
			tc := testcase{
				Name:      fmt.Sprintf("entry-%d", er.EntryIndex),
				Classname: fr.Path,
				Time:      durationMS(er.Duration) / 1000,
			}
			switch er.Status {
			case runner.Skipped, runner.NotRun:
				tc.Skipped = &struct{}{}
				ts.Skipped++
			case runner.Pass:
				// nothing to mark
			case runner.Fail:
				tc.Failure = &errorMsg{Message: redact.ApplyOrNot(redactor, firstFailureMessage(er)), Typ: "assertion"}
				ts.Failures++
			case runner.RunnerErrorStatus, runner.Bogus:
				tc.Error = &errorMsg{Message: redact.ApplyOrNot(redactor, firstErrorMessage(er)), Typ: "runner"}
				ts.Errors++
			}
			ts.Tests++
			ts.Testcase = append(ts.Testcase, tc)
		}
		out.Testsuite = append(out.Testsuite, ts)
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(data)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func firstFailureMessage(er runner.EntryResult) string {
	for _, a := range er.Asserts {
		if !a.Passed {
			return a.Description + ": " + a.Message
		}
	}
	return "assertion failed"
}

func firstErrorMessage(er runner.EntryResult) string {
	for _, e := range er.Errors {
		return e.Stage + ": " + e.Err.Error()
	}
	return "runner error"
}
