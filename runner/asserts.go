package runner

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/redact"
)

// evaluateAsserts runs every assertion for one call against its response
// spec, in the fixed order spec.md §5 mandates: implicit version, implicit
// status, implicit headers (declared order), implicit body, then explicit
// `[Asserts]` entries in declared order. All asserts run regardless of
// earlier failures (spec.md §4.16).
func evaluateAsserts(ctx *eval.Context, resp *ast.ResponseSpec, call httpspec.Call, fileRoot string, redactor *redact.Redactor) []AssertResult {
	if resp == nil {
		return nil
	}
	var out []AssertResult
	out = append(out, assertVersion(resp.Version, call.Response.Version))
	out = append(out, assertStatus(resp.Status, call.Response.Status))
	for _, h := range resp.Headers {
		out = append(out, assertImplicitHeader(ctx, h, call.Response))
	}
	if resp.Body != nil {
		out = append(out, assertImplicitBody(ctx, *resp.Body, call.Response.Body, fileRoot, redactor))
	}
	for _, sec := range resp.Sections {
		if sec.Kind != ast.SectionAsserts {
			continue
		}
		for _, a := range sec.Asserts {
			out = append(out, evaluateExplicitAssert(ctx, a))
		}
	}
	return out
}

func assertVersion(m ast.VersionMatcher, actual string) AssertResult {
	if m.Any {
		return AssertResult{Description: "version: *", Passed: true}
	}
	ok := strings.Contains(actual, m.Version)
	return AssertResult{
		Description: "version " + m.Version,
		Passed:      ok,
		Message:     fmt.Sprintf("got %q, want version containing %q", actual, m.Version),
	}
}

func assertStatus(m ast.StatusMatcher, actual int) AssertResult {
	if m.Any {
		return AssertResult{Description: "status: *", Passed: true}
	}
	ok := actual == m.Status
	return AssertResult{
		Description: "status " + strconv.Itoa(m.Status),
		Passed:      ok,
		Message:     fmt.Sprintf("got %d, want %d", actual, m.Status),
	}
}

func assertImplicitHeader(ctx *eval.Context, h ast.Header, resp httpspec.Response) AssertResult {
	name, err := eval.EvalTemplate(ctx, h.Name)
	if err != nil {
		return AssertResult{Description: "header (unevaluated)", Message: err.Error()}
	}
	want, err := eval.EvalTemplate(ctx, h.Value)
	if err != nil {
		return AssertResult{Description: "header " + name.Text, Message: err.Error()}
	}
	for _, got := range resp.HeaderValues(name.Text) {
		if strings.Contains(got, want.Text) {
			return AssertResult{Description: "header " + name.Text, Passed: true}
		}
	}
	return AssertResult{
		Description: "header " + name.Text,
		Message:     fmt.Sprintf("no %q header value contains %q", name.Text, want.Text),
	}
}

func assertImplicitBody(ctx *eval.Context, expected ast.Body, actual []byte, fileRoot string, redactor *redact.Redactor) AssertResult {
	want, _, err := httpspec.EvalResponseBody(ctx, expected, fileRoot, redactor)
	if err != nil {
		return AssertResult{Description: "body", Message: err.Error()}
	}
	if expected.Kind == ast.BodyJSON {
		eq, err := jsonBytesEqual(want, actual)
		if err != nil {
			return AssertResult{Description: "body (json)", Message: err.Error()}
		}
		return AssertResult{Description: "body (json)", Passed: eq, Message: "response body does not deep-equal expected JSON"}
	}
	ok := bytes.Equal(want, actual)
	return AssertResult{Description: "body", Passed: ok, Message: "response body does not match expected bytes"}
}

// jsonBytesEqual deep-compares two JSON documents value-by-value rather
// than byte-by-byte, so insignificant whitespace never fails an implicit
// body assertion (spec.md §4.16, "JSON deep-equal with placeholders
// evaluated").
func jsonBytesEqual(a, b []byte) (bool, error) {
	var va, vb interface{}
	if err := sonic.Unmarshal(a, &va); err != nil {
		return false, err
	}
	if err := sonic.Unmarshal(b, &vb); err != nil {
		return false, err
	}
	return reflect.DeepEqual(va, vb), nil
}

func evaluateExplicitAssert(ctx *eval.Context, a ast.Assert) AssertResult {
	desc := describeQuery(a.Query)
	actual, err := eval.EvalQuery(ctx, a.Query)
	if err != nil {
		return AssertResult{Description: desc, Message: err.Error()}
	}
	filtered, err := eval.EvalFilterChain(ctx, actual, a.Filters)
	if err != nil {
		return AssertResult{Description: desc, Message: err.Error()}
	}
	outcome, err := eval.EvalPredicate(ctx, filtered, a.Predicate)
	if err != nil {
		return AssertResult{Description: desc, Message: err.Error()}
	}
	if outcome.TypeMismatch {
		return AssertResult{Description: desc, TypeMismatch: true, Message: "predicate type mismatch"}
	}
	return AssertResult{Description: desc, Passed: outcome.Success}
}

func describeQuery(q ast.Query) string {
	return fmt.Sprintf("query(kind=%d)", q.Kind)
}

// evaluateCaptures runs every [Captures] entry in declared order, inserting
// each result into ctx.Vars immediately so later captures (and all
// asserts) observe it (spec.md §4.16).
func evaluateCaptures(ctx *eval.Context, captures []ast.Capture, redactor *redact.Redactor) []CaptureResult {
	var out []CaptureResult
	for _, c := range captures {
		res := CaptureResult{Name: c.Name, Sp: c.Sp}
		v, err := eval.EvalQuery(ctx, c.Query)
		if err == nil {
			v, err = eval.EvalFilterChain(ctx, v, c.Filters)
		}
		if err != nil {
			res.Err = err
			out = append(out, res)
			continue
		}
		ctx.Vars.Set(c.Name, v, c.Redacted)
		if c.Redacted && redactor != nil {
			if s, ok := v.String(); ok {
				redactor.Add(s)
			}
		}
		out = append(out, res)
	}
	return out
}

// captureSections returns the captures of every [Captures] section of resp
// in source order, or nil if resp is nil.
func captureSections(resp *ast.ResponseSpec) []ast.Capture {
	if resp == nil {
		return nil
	}
	var out []ast.Capture
	for _, sec := range resp.Sections {
		if sec.Kind == ast.SectionCaptures {
			out = append(out, sec.Captures...)
		}
	}
	return out
}
