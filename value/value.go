// Package value implements the typed runtime value sum type used
// throughout capture, filter and predicate evaluation.
//
// A Value is produced by a query, reshaped by a filter chain and finally
// compared by a predicate. Keeping one closed type for all three stages
// means numeric promotion and stringification rules live in one place
// instead of being duplicated at each consumer.
package value

import (
	"fmt"
	"sort"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindBigInteger
	KindFloat
	KindString
	KindBytes
	KindList
	KindObject
	KindNodeset
	KindDate
	KindRegex
	KindUnit
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindBigInteger:
		return "big_integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindNodeset:
		return "nodeset"
	case KindDate:
		return "date"
	case KindRegex:
		return "regex"
	case KindUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// Entry is one name/value pair of an Object, kept ordered.
type Entry struct {
	Name  string
	Value Value
}

// Nodeset is an opaque handle to a set of matched document nodes, e.g. the
// result of an XPath query that selects more than a single scalar.
type Nodeset struct {
	Size   int
	Handle interface{}
}

// Value is the immutable, typed runtime value every query, filter and
// predicate operates on. Exactly one of the typed fields is meaningful,
// selected by Kind; this mirrors a tagged union without resorting to an
// interface{} for every call site.
type Value struct {
	kind    Kind
	b       bool
	i       int64
	big     string // decimal-string representation, arbitrary precision
	f       float64
	s       string
	bytes   []byte
	list    []Value
	object  []Entry
	nodeset Nodeset
	date    Date
	regex   string
}

// Kind returns the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// TypeName returns the spec-level type name of v, used in error messages
// (QueryInvalidInput, FilterInvalidInput, ExpressionInvalidType).
func (v Value) TypeName() string { return v.kind.String() }

// Null is the absence of a value, e.g. a capture query that found nothing.
var Null = Value{kind: KindNull}

// Unit represents "no meaningful value" for filters like count that always
// succeed but don't apply to a Null input the way most filters expect.
var Unit = Value{kind: KindUnit}

func Bool(b bool) Value                 { return Value{kind: KindBool, b: b} }
func Integer(i int64) Value             { return Value{kind: KindInteger, i: i} }
func BigInteger(decimal string) Value   { return Value{kind: KindBigInteger, big: decimal} }
func Float(f float64) Value             { return Value{kind: KindFloat, f: f} }
func String(s string) Value             { return Value{kind: KindString, s: s} }
func Bytes(b []byte) Value              { return Value{kind: KindBytes, bytes: b} }
func List(vs []Value) Value             { return Value{kind: KindList, list: vs} }
func NodesetValue(n Nodeset) Value      { return Value{kind: KindNodeset, nodeset: n} }
func DateValue(d Date) Value            { return Value{kind: KindDate, date: d} }
func Regex(pattern string) Value        { return Value{kind: KindRegex, regex: pattern} }

// Object builds an ordered object value from entries, preserving the order
// given (insertion order matters for JSON re-serialization, not for
// equality, see Equal below).
func Object(entries []Entry) Value { return Value{kind: KindObject, object: entries} }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)         { return v.b, v.kind == KindBool }
func (v Value) Integer() (int64, bool)     { return v.i, v.kind == KindInteger }
func (v Value) BigInteger() (string, bool) { return v.big, v.kind == KindBigInteger }
func (v Value) Float() (float64, bool)     { return v.f, v.kind == KindFloat }
func (v Value) String() (string, bool)     { return v.s, v.kind == KindString }
func (v Value) Bytes() ([]byte, bool)      { return v.bytes, v.kind == KindBytes }
func (v Value) List() ([]Value, bool)      { return v.list, v.kind == KindList }
func (v Value) Object() ([]Entry, bool)    { return v.object, v.kind == KindObject }
func (v Value) Nodeset() (Nodeset, bool)   { return v.nodeset, v.kind == KindNodeset }
func (v Value) Date() (Date, bool)         { return v.date, v.kind == KindDate }
func (v Value) RegexPattern() (string, bool) { return v.regex, v.kind == KindRegex }

// Len returns the length used by the count filter and IsEmpty predicate.
// ok is false for kinds with no notion of length.
func (v Value) Len() (n int, ok bool) {
	switch v.kind {
	case KindList:
		return len(v.list), true
	case KindObject:
		return len(v.object), true
	case KindString:
		return len([]rune(v.s)), true
	case KindBytes:
		return len(v.bytes), true
	case KindNodeset:
		return v.nodeset.Size, true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is Integer, Float or BigInteger, the three
// kinds accepted by the IsNumber predicate and by numeric promotion.
func (v Value) IsNumber() bool {
	return v.kind == KindInteger || v.kind == KindFloat || v.kind == KindBigInteger
}

// AsFloat promotes any numeric kind to float64 for ordering comparisons.
// BigInteger is parsed with a best-effort decimal scan; values exceeding
// float64 precision lose precision here exactly as a Rust f64 cast would.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindBigInteger:
		f, ok := parseDecimalFloat(v.big)
		return f, ok
	default:
		return 0, false
	}
}

func parseDecimalFloat(s string) (float64, bool) {
	var f float64
	n, err := fmt.Sscanf(s, "%g", &f)
	if err != nil || n != 1 {
		return 0, false
	}
	return f, true
}

// Equal implements the Equal predicate's comparison semantics (spec.md
// §4.12): numeric cross-type comparison by mathematical value, code-point
// comparison for strings, order-sensitive comparison for lists and
// order-insensitive (same keys, equal values) comparison for objects.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		af, aok := a.AsFloat()
		bf, bok := b.AsFloat()
		return aok && bok && af == bf
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull, KindUnit:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindBytes:
		return string(a.bytes) == string(b.bytes)
	case KindRegex:
		return a.regex == b.regex
	case KindDate:
		return a.date.Equal(b.date)
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.object) != len(b.object) {
			return false
		}
		am := objectMap(a.object)
		bm := objectMap(b.object)
		if len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindNodeset:
		return a.nodeset.Size == b.nodeset.Size
	default:
		return false
	}
}

func objectMap(entries []Entry) map[string]Value {
	m := make(map[string]Value, len(entries))
	for _, e := range entries {
		m[e.Name] = e.Value
	}
	return m
}

// Less implements strict ordering for GreaterThan/LessThan and their
// or-equal variants. ok is false on a type mismatch (string vs number,
// or any kind without a defined order).
func Less(a, b Value) (less bool, ok bool) {
	if a.IsNumber() && b.IsNumber() {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af < bf, true
	}
	if a.kind == KindDate && b.kind == KindDate {
		return a.date.Before(b.date), true
	}
	return false, false
}

// SortedKeys is a convenience for deterministic test output of objects.
func SortedKeys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Name
	}
	sort.Strings(keys)
	return keys
}
