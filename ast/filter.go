package ast

// FilterKind discriminates the filter union of spec.md §3/§4.11.
type FilterKind int

const (
	FilterCount FilterKind = iota
	FilterHtmlEscape
	FilterHtmlUnescape
	FilterUrlEncode
	FilterUrlDecode
	FilterToInt
	FilterToFloat
	FilterToDate
	FilterDaysAfterNow
	FilterDaysBeforeNow
	FilterDecode
	FilterFormat
	FilterJsonPath
	FilterNth
	FilterRegex
	FilterReplace
	FilterReplaceRegex
	FilterSplit
	FilterXPath
	FilterBase64Encode
	FilterBase64Decode
	FilterBase64UrlSafeEncode
	FilterBase64UrlSafeDecode
	FilterFirst
	FilterLast
	FilterLocation
	FilterToHex
	FilterToString
	FilterUtf8Encode
	FilterUtf8Decode
	FilterUrlQueryParam
)

// Filter is one step of a filter pipeline (spec.md §4.11). Exactly the
// fields relevant to Kind are populated; the rest are zero.
type Filter struct {
	Kind FilterKind

	// ToDate/Format: strftime-ish format string.
	FormatArg Template

	// Decode: target text encoding name, e.g. "gb2312".
	EncodingArg Template

	// JsonPath/XPath/Regex/Split(sep)/UrlQueryParam: the filter's single
	// string/template argument.
	Arg Template

	// Nth: zero-based index.
	Index int64

	// Replace/ReplaceRegex: old/new; both compile Old as a regex pattern.
	Old Template
	New Template

	Sp Span
}

func (f Filter) Span() Span { return f.Sp }
