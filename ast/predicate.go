package ast

// PredicateFunc discriminates the predicate shapes of spec.md §3/§4.12.
type PredicateFunc int

const (
	PredEqual PredicateFunc = iota
	PredNotEqual
	PredGreaterThan
	PredGreaterThanOrEqual
	PredLessThan
	PredLessThanOrEqual
	PredStartsWith
	PredEndsWith
	PredContains
	PredIncludes
	PredMatches
	PredExist
	PredIsEmpty
	PredIsInteger
	PredIsFloat
	PredIsBool
	PredIsString
	PredIsCollection
	PredIsDate
	PredIsIsoDate
	PredIsNumber
)

// LiteralKind tags the typed RHS literal of a predicate (spec.md §4.6).
type LiteralKind int

const (
	LitNone LiteralKind = iota
	LitNumber
	LitBool
	LitNull
	LitString // template, base64, hex, multiline or file all render to a string template
	LitRegex
)

// Literal RHS of a predicate: exactly one of Template/Number/Bool/Regex is
// meaningful depending on LitKind.
type PredicateLiteral struct {
	Kind     LiteralKind
	Template Template // for LitString
	Number   string   // decimal source text, for LitNumber (keeps int/float/bigint distinction to eval time)
	Bool     bool
	Regex    string

	Sp Span
}

// Predicate is `[not] func [literal]`. OperatorSyntax records whether the
// source used the symbolic operator (`==`) or the keyword (`equals`) purely
// for faithful re-formatting; it carries no semantic weight (spec.md §4.6).
type Predicate struct {
	Not            bool
	Func           PredicateFunc
	OperatorSyntax bool
	Literal        PredicateLiteral

	Sp Span
}

func (p Predicate) Span() Span { return p.Sp }
