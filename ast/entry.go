package ast

// Method is the request method token. Any uppercase ASCII word is legal,
// not just the well-known verbs (spec.md §4.8).
type Method string

// Header is a single templated header line, in source order.
type Header struct {
	Name  Template
	Value Template
	Sp    Span
}

// SectionKind discriminates the bracketed `[Name]` blocks attachable to a
// request or response (spec.md §3, §4.8).
type SectionKind int

const (
	SectionOptions SectionKind = iota
	SectionQueryStringParams
	SectionFormParams
	SectionMultipartFormData
	SectionCookies
	SectionBasicAuth
	SectionCaptures
	SectionAsserts
)

// KeyValue is a templated `name: value` pair as used by QueryStringParams,
// FormParams, and Cookies sections.
type KeyValue struct {
	Name  Template
	Value Template
	Sp    Span
}

// MultipartField is one entry of a [MultipartFormData] section: either a
// plain templated value or a file part (`name: file,path;[contenttype]`).
type MultipartField struct {
	Name        Template
	Value       Template
	IsFile      bool
	FileName    Template
	ContentType Template
	HasCType    bool
	Sp          Span
}

// BasicAuth carries the single `user:password` pair of a [BasicAuth]
// section.
type BasicAuth struct {
	User     Template
	Password Template
	Sp       Span
}

// Option is one `key: value` line of an [Options] section. Raw keeps the
// unparsed value template; typed conversion (duration/count/bool) happens
// in the options resolver (C17), since several options accept placeholders
// resolved only at entry time.
type Option struct {
	Key   string
	Value Template
	Sp    Span
}

// Section is a tagged union over the eight section kinds. Only the field
// matching Kind is populated.
type Section struct {
	Kind SectionKind

	Options     []Option
	KeyValues   []KeyValue // QueryStringParams, FormParams, Cookies
	Multipart   []MultipartField
	BasicAuth   BasicAuth
	Captures    []Capture
	Asserts     []Assert

	Sp Span
}

func (s Section) Span() Span { return s.Sp }

// BodyKind discriminates the body encodings of spec.md §4.8.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyXML
	BodyMultilineString
	BodyOnelineString
	BodyBase64
	BodyHex
	BodyFile
)

// JSONValue is the JSON sub-parser's output (C4): standard JSON augmented
// so any string token is itself a Template, and a value position may be a
// bare placeholder.
type JSONValue struct {
	// Kind mirrors value.Kind but only the subset JSON can produce:
	// Null, Bool, Integer, Float, String, List, Object. A whole-value
	// placeholder is represented with IsPlaceholder set and Placeholder
	// populated instead of a literal shape.
	IsPlaceholder bool
	Placeholder   Expression

	IsNull  bool
	Bool    bool
	HasBool bool
	Number  string // decimal source text; "" if not a number
	IsFloat bool
	Str     Template
	HasStr  bool
	List    []JSONValue
	HasList bool
	Object  []JSONObjectEntry
	HasObj  bool

	// LeadingSpace/TrailingSpace preserve whitespace inside objects and
	// arrays for source-faithful re-rendering.
	LeadingSpace  string
	TrailingSpace string

	Sp Span
}

// JSONObjectEntry is one `"key": value` member, key itself a template.
type JSONObjectEntry struct {
	Key   Template
	Value JSONValue
	Sp    Span
}

// Body is the optional request/response body.
type Body struct {
	Kind BodyKind

	JSON JSONValue // BodyJSON
	Text Template  // BodyXML, BodyMultilineString, BodyOnelineString

	// Multiline string attributes.
	Language   string // "", "json", "xml", "graphql"
	Escape     bool
	NoVariable bool

	// Base64/Hex: raw source characters, whitespace already stripped.
	Base64 string
	Hex    string

	// File body.
	FileName Template

	Sp Span
}

func (b Body) Span() Span { return b.Sp }

// VersionMatcher discriminates the response version matcher (`*`, or an
// explicit version).
type VersionMatcher struct {
	Any     bool
	Version string // "1.0", "1.1", "2", "3"
}

// StatusMatcher discriminates the response status matcher (`*` or a
// literal integer).
type StatusMatcher struct {
	Any    bool
	Status int
}

// Request is the AST for the request half of an Entry (spec.md §3).
type Request struct {
	Method  Method
	URL     Template
	Headers []Header
	Sections []Section
	Body    *Body

	Sp Span
}

// ResponseSpec is the AST for the optional expected-response half of an
// Entry.
type ResponseSpec struct {
	Version VersionMatcher
	Status  StatusMatcher
	Headers []Header // implicit contains-assertions, evaluated against the actual response
	Sections []Section
	Body    *Body

	Sp Span
}

// Entry is one request/response pair. Entries are indexed from 1 at parse
// completion, not stored here (index is positional in File.Entries).
type Entry struct {
	Request  Request
	Response *ResponseSpec

	Sp Span
}

func (e Entry) Span() Span { return e.Sp }

// File is the parse result for one script: zero or more entries.
type File struct {
	Entries []Entry
}

// Capture is a named extraction attached to a [Captures] section.
type Capture struct {
	Name     string
	Query    Query
	Filters  []Filter
	Redacted bool

	Sp Span
}

func (c Capture) Span() Span { return c.Sp }

// Assert is a query+filter+predicate combination attached to an [Asserts]
// section.
type Assert struct {
	Query     Query
	Filters   []Filter
	Predicate Predicate

	Sp Span
}

func (a Assert) Span() Span { return a.Sp }
