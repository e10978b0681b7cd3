// Package report renders runner.FileResult values into the output formats
// spec.md §6 "Reporter contracts" names: a JSON array of per-file records,
// JUnit XML (one testsuite per file), TAP, and a static HTML report with a
// waterfall per entry. It is grounded on the teacher's (vdobler-ht)
// suite/report.go, generalized from ht's fixed Test/CheckResult shape to
// this engine's Call/Capture/Assert shape.
package report

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/runner"
)

// jsonHeader mirrors one httpspec.HeaderField for JSON output.
type jsonHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// jsonCall is the JSON-stable view of one httpspec.Call.
type jsonCall struct {
	Request struct {
		Method  string       `json:"method"`
		URL     string       `json:"url"`
		Headers []jsonHeader `json:"headers,omitempty"`
	} `json:"request"`
	Response struct {
		Version       string       `json:"version"`
		Status        int          `json:"status"`
		Headers       []jsonHeader `json:"headers,omitempty"`
		Body          string       `json:"body,omitempty"`
		DurationMS    float64      `json:"durationMs"`
		RedirectCount int          `json:"redirectCount"`
	} `json:"response"`
}

type jsonCapture struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

type jsonAssert struct {
	Description  string `json:"description"`
	Passed       bool   `json:"passed"`
	TypeMismatch bool   `json:"typeMismatch,omitempty"`
	Message      string `json:"message,omitempty"`
}

type jsonError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// jsonEntry is the JSON-stable view of one runner.EntryResult.
type jsonEntry struct {
	Index      int           `json:"index"`
	Status     string        `json:"status"`
	Calls      []jsonCall    `json:"calls,omitempty"`
	Captures   []jsonCapture `json:"captures,omitempty"`
	Asserts    []jsonAssert  `json:"asserts,omitempty"`
	Errors     []jsonError   `json:"errors,omitempty"`
	DurationMS float64       `json:"durationMs"`
	Tries      int           `json:"tries"`
}

// jsonFile is the JSON-stable view of one runner.FileResult (spec.md §6
// "JSON report: array of per-file records with entries, calls, captures,
// asserts, errors, timings. Stable field names.").
type jsonFile struct {
	Path       string      `json:"path"`
	Success    bool        `json:"success"`
	DurationMS float64     `json:"durationMs"`
	Timestamp  string      `json:"timestamp"`
	Entries    []jsonEntry `json:"entries"`
}

// JSON renders results as the spec.md §6 array of per-file records. Every
// header, body, capture, assert, and error message value is passed through
// redactor before it is marshaled, so a secret variable never reaches a
// report file in clear text (spec.md §4.10); redactor may be nil.
func JSON(results []runner.FileResult, redactor *redact.Redactor) ([]byte, error) {
	files := make([]jsonFile, 0, len(results))
	for _, fr := range results {
		files = append(files, toJSONFile(fr, redactor))
	}
	return sonic.Marshal(files)
}

func toJSONFile(fr runner.FileResult, redactor *redact.Redactor) jsonFile {
	jf := jsonFile{
		Path:       fr.Path,
		Success:    fr.Success,
		DurationMS: durationMS(fr.Duration),
		Timestamp:  fr.Timestamp.Format(time.RFC3339),
	}
	for _, er := range fr.Entries {
		jf.Entries = append(jf.Entries, toJSONEntry(er, redactor))
	}
	return jf
}

func toJSONEntry(er runner.EntryResult, redactor *redact.Redactor) jsonEntry {
	je := jsonEntry{
		Index:      er.EntryIndex,
		Status:     er.Status.String(),
		DurationMS: durationMS(er.Duration),
		Tries:      er.Tries,
	}
	for _, c := range er.Calls {
		jc := jsonCall{}
		jc.Request.Method = c.Request.Method
		jc.Request.URL = redact.ApplyOrNot(redactor, c.Request.URL)
		for _, h := range c.Request.Headers {
			jc.Request.Headers = append(jc.Request.Headers, jsonHeader{Name: h.Name, Value: redact.ApplyOrNot(redactor, h.Value)})
		}
		jc.Response.Version = c.Response.Version
		jc.Response.Status = c.Response.Status
		for _, h := range c.Response.Headers {
			jc.Response.Headers = append(jc.Response.Headers, jsonHeader{Name: h.Name, Value: redact.ApplyOrNot(redactor, h.Value)})
		}
		jc.Response.Body = redact.ApplyOrNot(redactor, string(c.Response.Body))
		jc.Response.DurationMS = durationMS(c.Response.Duration)
		jc.Response.RedirectCount = c.Response.RedirectCount
		je.Calls = append(je.Calls, jc)
	}
	for _, cr := range er.Captures {
		jcap := jsonCapture{Name: cr.Name}
		if cr.Err != nil {
			jcap.Error = redact.ApplyOrNot(redactor, cr.Err.Error())
		}
		je.Captures = append(je.Captures, jcap)
	}
	for _, a := range er.Asserts {
		je.Asserts = append(je.Asserts, jsonAssert{
			Description:  a.Description,
			Passed:       a.Passed,
			TypeMismatch: a.TypeMismatch,
			Message:      redact.ApplyOrNot(redactor, a.Message),
		})
	}
	for _, e := range er.Errors {
		je.Errors = append(je.Errors, jsonError{Stage: e.Stage, Message: redact.ApplyOrNot(redactor, e.Err.Error())})
	}
	return je
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
