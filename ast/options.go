package ast

// KnownOptions is the enumerated set of [Options] keys recognized by the
// parser (spec.md §4.8). Any other key is a fatal UnknownOption parse
// error.
var KnownOptions = map[string]bool{
	"aws-sigv4":       true,
	"cacert":          true,
	"cert":            true,
	"key":             true,
	"compressed":      true,
	"connect-to":      true,
	"connect-timeout": true,
	"delay":           true,
	"http1.0":         true,
	"http1.1":         true,
	"http2":           true,
	"http3":           true,
	"insecure":        true,
	"ipv4":            true,
	"ipv6":            true,
	"limit-rate":      true,
	"location":        true,
	"location-trusted": true,
	"max-redirs":      true,
	"max-time":        true,
	"netrc":           true,
	"netrc-file":      true,
	"netrc-optional":  true,
	"output":          true,
	"path-as-is":      true,
	"proxy":           true,
	"repeat":          true,
	"resolve":         true,
	"retry":           true,
	"retry-interval":  true,
	"skip":            true,
	"unix-socket":     true,
	"user":            true,
	"variable":        true,
	"verbose":         true,
	"very-verbose":    true,
}

// DurationUnit is the optional suffix on a duration literal.
type DurationUnit int

const (
	UnitMillisecond DurationUnit = iota
	UnitSecond
	UnitMinute
	UnitHour
)

// DurationLiteral is a non-negative integer with an optional unit suffix
// (spec.md §4.8). Value is always stored in the literal's own unit; the
// options resolver (C17) converts to a canonical duration using the
// per-option default unit when Unit is absent.
type DurationLiteral struct {
	Value    int64
	Unit     DurationUnit
	HasUnit  bool
	Template Template // populated when IsTemplate is set: a placeholder, evaluated at entry time
	IsTemplate bool

	Sp Span
}

// CountLiteral is an integer count: -1 means infinite, 0 means zero
// (equivalent to skip for repeat), positive means that many (spec.md
// §4.8).
type CountLiteral struct {
	Value      int64
	Template   Template
	IsTemplate bool

	Sp Span
}
