package eval

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

// jsonpath.go hand-writes the JSONPath subset of spec.md §4.5 over a
// generic JSON tree decoded by sonic. No pack library implements the
// single-match-collapse rule spec.md §9 requires (a single match returns
// a scalar, not a one-element list), so matching is hand-rolled here;
// sonic is still used as the fast JSON decode/encode substrate.

type jpSelector struct {
	kind      jpKind
	name      string   // child, recursive-child
	wildcard  bool     // recursive-wildcard or plain wildcard
	indices   []int    // multi-index
	sliceFrom int
	sliceTo   int
	hasFrom   bool
	hasTo     bool
	filterKey string
	filterOp  string
	filterVal interface{}
	filterExistsOnly bool
}

type jpKind int

const (
	jpChild jpKind = iota
	jpWildcard
	jpRecursive
	jpIndex
	jpSlice
	jpFilter
)

func parseJSONPath(expr string) ([]jpSelector, error) {
	if !strings.HasPrefix(expr, "$") {
		return nil, errNotRooted
	}
	rest := expr[1:]
	var sels []jpSelector
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest, ".."):
			rest = rest[2:]
			if strings.HasPrefix(rest, "*") {
				sels = append(sels, jpSelector{kind: jpRecursive, wildcard: true})
				rest = rest[1:]
				continue
			}
			name, remain := takeName(rest)
			sels = append(sels, jpSelector{kind: jpRecursive, name: name})
			rest = remain
		case strings.HasPrefix(rest, "."):
			rest = rest[1:]
			if strings.HasPrefix(rest, "*") {
				sels = append(sels, jpSelector{kind: jpWildcard})
				rest = rest[1:]
				continue
			}
			name, remain := takeName(rest)
			sels = append(sels, jpSelector{kind: jpChild, name: name})
			rest = remain
		case strings.HasPrefix(rest, "["):
			sel, remain, err := parseBracket(rest)
			if err != nil {
				return nil, err
			}
			sels = append(sels, sel)
			rest = remain
		default:
			return nil, errUnexpected
		}
	}
	return sels, nil
}

var errNotRooted = &jpError{"jsonpath must start with $"}
var errUnexpected = &jpError{"unexpected character in jsonpath"}

type jpError struct{ msg string }

func (e *jpError) Error() string { return e.msg }

func takeName(s string) (string, string) {
	if strings.HasPrefix(s, "['") {
		end := strings.Index(s[2:], "']")
		if end < 0 {
			return s[2:], ""
		}
		return s[2 : 2+end], s[2+end+2:]
	}
	i := 0
	for i < len(s) && s[i] != '.' && s[i] != '[' {
		i++
	}
	return s[:i], s[i:]
}

func parseBracket(s string) (jpSelector, string, error) {
	end := strings.Index(s, "]")
	if end < 0 {
		return jpSelector{}, "", &jpError{"unterminated ["}
	}
	inner := s[1:end]
	remain := s[end+1:]

	if strings.HasPrefix(inner, "'") && strings.HasSuffix(inner, "'") {
		return jpSelector{kind: jpChild, name: inner[1 : len(inner)-1]}, remain, nil
	}
	if inner == "*" {
		return jpSelector{kind: jpWildcard}, remain, nil
	}
	if strings.HasPrefix(inner, "?(") && strings.HasSuffix(inner, ")") {
		sel, err := parseFilterExpr(inner[2 : len(inner)-1])
		return sel, remain, err
	}
	if strings.Contains(inner, ":") {
		parts := strings.SplitN(inner, ":", 2)
		sel := jpSelector{kind: jpSlice}
		if parts[0] != "" {
			n, err := strconv.Atoi(parts[0])
			if err != nil {
				return jpSelector{}, "", &jpError{"invalid slice start"}
			}
			sel.sliceFrom, sel.hasFrom = n, true
		}
		if parts[1] != "" {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return jpSelector{}, "", &jpError{"invalid slice end"}
			}
			sel.sliceTo, sel.hasTo = n, true
		}
		return sel, remain, nil
	}
	if strings.Contains(inner, ",") {
		parts := strings.Split(inner, ",")
		sel := jpSelector{kind: jpIndex}
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return jpSelector{}, "", &jpError{"invalid index"}
			}
			sel.indices = append(sel.indices, n)
		}
		return sel, remain, nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return jpSelector{}, "", &jpError{"invalid bracket content"}
	}
	return jpSelector{kind: jpIndex, indices: []int{n}}, remain, nil
}

func parseFilterExpr(inner string) (jpSelector, error) {
	inner = strings.TrimSpace(inner)
	if !strings.HasPrefix(inner, "@.") {
		return jpSelector{}, &jpError{"filter must reference @.key"}
	}
	rest := inner[2:]
	for _, op := range []string{"==", "!=", ">=", "<=", ">", "<"} {
		if idx := strings.Index(rest, op); idx >= 0 {
			key := strings.TrimSpace(rest[:idx])
			rhs := strings.TrimSpace(rest[idx+len(op):])
			val, err := parseFilterLiteral(rhs)
			if err != nil {
				return jpSelector{}, err
			}
			return jpSelector{kind: jpFilter, filterKey: key, filterOp: op, filterVal: val}, nil
		}
	}
	return jpSelector{kind: jpFilter, filterKey: strings.TrimSpace(rest), filterExistsOnly: true}, nil
}

func parseFilterLiteral(s string) (interface{}, error) {
	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s[1 : len(s)-1], nil
	}
	if s == "true" {
		return true, nil
	}
	if s == "false" {
		return false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &jpError{"invalid filter literal"}
	}
	return f, nil
}

// evalJSONPath runs sels against root, returning every matched node in
// document order.
func evalJSONPath(root interface{}, sels []jpSelector) []interface{} {
	cur := []interface{}{root}
	for _, sel := range sels {
		var next []interface{}
		for _, node := range cur {
			next = append(next, applySelector(node, sel)...)
		}
		cur = next
	}
	return cur
}

func applySelector(node interface{}, sel jpSelector) []interface{} {
	switch sel.kind {
	case jpChild:
		if m, ok := node.(map[string]interface{}); ok {
			if v, ok := m[sel.name]; ok {
				return []interface{}{v}
			}
		}
		return nil
	case jpWildcard:
		return children(node)
	case jpRecursive:
		var out []interface{}
		walkRecursive(node, sel, &out)
		return out
	case jpIndex:
		list, ok := node.([]interface{})
		if !ok {
			return nil
		}
		var out []interface{}
		for _, i := range sel.indices {
			idx := i
			if idx < 0 {
				idx += len(list)
			}
			if idx >= 0 && idx < len(list) {
				out = append(out, list[idx])
			}
		}
		return out
	case jpSlice:
		list, ok := node.([]interface{})
		if !ok {
			return nil
		}
		from, to := 0, len(list)
		if sel.hasFrom {
			from = normalizeIdx(sel.sliceFrom, len(list))
		}
		if sel.hasTo {
			to = normalizeIdx(sel.sliceTo, len(list))
		}
		if from < 0 {
			from = 0
		}
		if to > len(list) {
			to = len(list)
		}
		if from >= to {
			return nil
		}
		out := make([]interface{}, to-from)
		copy(out, list[from:to])
		return out
	case jpFilter:
		list, ok := node.([]interface{})
		if !ok {
			return nil
		}
		var out []interface{}
		for _, item := range list {
			if filterMatches(item, sel) {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

func normalizeIdx(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

func children(node interface{}) []interface{} {
	switch n := node.(type) {
	case map[string]interface{}:
		var out []interface{}
		for _, v := range n {
			out = append(out, v)
		}
		return out
	case []interface{}:
		return n
	}
	return nil
}

func walkRecursive(node interface{}, sel jpSelector, out *[]interface{}) {
	switch n := node.(type) {
	case map[string]interface{}:
		if sel.wildcard {
			for _, v := range n {
				*out = append(*out, v)
				walkRecursive(v, sel, out)
			}
			return
		}
		if v, ok := n[sel.name]; ok {
			*out = append(*out, v)
		}
		for _, v := range n {
			walkRecursive(v, sel, out)
		}
	case []interface{}:
		for _, v := range n {
			if sel.wildcard {
				*out = append(*out, v)
			}
			walkRecursive(v, sel, out)
		}
	}
}

func filterMatches(item interface{}, sel jpSelector) bool {
	m, ok := item.(map[string]interface{})
	if !ok {
		return false
	}
	v, present := m[sel.filterKey]
	if sel.filterExistsOnly {
		return present
	}
	if !present {
		return false
	}
	switch rhs := sel.filterVal.(type) {
	case string:
		s, ok := v.(string)
		return ok && compareStrOp(s, rhs, sel.filterOp)
	case bool:
		b, ok := v.(bool)
		return ok && compareBoolOp(b, rhs, sel.filterOp)
	case float64:
		f, ok := toFloat(v)
		return ok && compareFloatOp(f, rhs, sel.filterOp)
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func compareStrOp(a, b, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}

func compareBoolOp(a, b bool, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}

func compareFloatOp(a, b float64, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}

// evalJSONPathOnText parses text as JSON then applies expr, collapsing a
// single match to a scalar Value, multiple matches to a List, and no
// match to Null (spec.md §9 open question, resolved in favor of the
// source's collapsing behavior).
func evalJSONPathOnText(text, expr string, sp ast.Span) (value.Value, error) {
	var root interface{}
	if err := sonic.UnmarshalString(text, &root); err != nil {
		return value.Null, errf(ErrFilterInvalidInput, sp, "invalid JSON input")
	}
	sels, err := parseJSONPath(expr)
	if err != nil {
		return value.Null, errf(ErrFilterInvalidInput, sp, err.Error())
	}
	matches := evalJSONPath(root, sels)
	return collapseMatches(matches), nil
}

func collapseMatches(matches []interface{}) value.Value {
	switch len(matches) {
	case 0:
		return value.Null
	case 1:
		return goToValue(matches[0])
	default:
		out := make([]value.Value, len(matches))
		for i, m := range matches {
			out[i] = goToValue(m)
		}
		return value.List(out)
	}
}

func goToValue(v interface{}) value.Value {
	switch n := v.(type) {
	case nil:
		return value.Null
	case bool:
		return value.Bool(n)
	case float64:
		if n == float64(int64(n)) {
			return value.Integer(int64(n))
		}
		return value.Float(n)
	case string:
		return value.String(n)
	case []interface{}:
		out := make([]value.Value, len(n))
		for i, e := range n {
			out[i] = goToValue(e)
		}
		return value.List(out)
	case map[string]interface{}:
		entries := make([]value.Entry, 0, len(n))
		for k, v := range n {
			entries = append(entries, value.Entry{Name: k, Value: goToValue(v)})
		}
		return value.Object(entries)
	}
	return value.Null
}
