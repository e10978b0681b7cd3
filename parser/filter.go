package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

var filterNames = map[string]ast.FilterKind{
	"count":                    ast.FilterCount,
	"htmlEscape":               ast.FilterHtmlEscape,
	"htmlUnescape":             ast.FilterHtmlUnescape,
	"urlEncode":                ast.FilterUrlEncode,
	"urlDecode":                ast.FilterUrlDecode,
	"toInt":                    ast.FilterToInt,
	"toFloat":                  ast.FilterToFloat,
	"toDate":                   ast.FilterToDate,
	"daysAfterNow":             ast.FilterDaysAfterNow,
	"daysBeforeNow":            ast.FilterDaysBeforeNow,
	"decode":                   ast.FilterDecode,
	"format":                   ast.FilterFormat,
	"jsonpath":                 ast.FilterJsonPath,
	"nth":                      ast.FilterNth,
	"regex":                    ast.FilterRegex,
	"replace":                  ast.FilterReplace,
	"replaceRegex":             ast.FilterReplaceRegex,
	"split":                    ast.FilterSplit,
	"xpath":                    ast.FilterXPath,
	"base64Encode":             ast.FilterBase64Encode,
	"base64Decode":             ast.FilterBase64Decode,
	"base64UrlSafeEncode":      ast.FilterBase64UrlSafeEncode,
	"base64UrlSafeDecode":      ast.FilterBase64UrlSafeDecode,
	"first":                    ast.FilterFirst,
	"last":                     ast.FilterLast,
	"location":                 ast.FilterLocation,
	"toHex":                    ast.FilterToHex,
	"toString":                 ast.FilterToString,
	"utf8Encode":               ast.FilterUtf8Encode,
	"utf8Decode":               ast.FilterUtf8Decode,
	"urlQueryParam":            ast.FilterUrlQueryParam,
}

// ParseFilterChain parses a whitespace-separated chain of filters,
// stopping (without error) at the first token that is not a known filter
// identifier (spec.md §4.7).
func ParseFilterChain(r *lex.Reader) ([]ast.Filter, error) {
	var out []ast.Filter
	for {
		mark := r.Mark()
		lex.Whitespace(r)
		f, ok, err := parseOneFilter(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.Seek(mark)
			return out, nil
		}
		out = append(out, f)
	}
}

func parseOneFilter(r *lex.Reader) (ast.Filter, bool, error) {
	start := r.Mark()
	name, err := identifier(r)
	if err != nil {
		r.Seek(start)
		return ast.Filter{}, false, nil
	}
	kind, ok := filterNames[name]
	if !ok {
		r.Seek(start)
		return ast.Filter{}, false, nil
	}
	f := ast.Filter{Kind: kind}
	switch kind {
	case ast.FilterToDate, ast.FilterFormat:
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "format string")
		}
		f.FormatArg = arg
	case ast.FilterDecode:
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "encoding name")
		}
		f.EncodingArg = arg
	case ast.FilterJsonPath, ast.FilterXPath, ast.FilterRegex, ast.FilterReplaceRegex, ast.FilterSplit, ast.FilterUrlQueryParam:
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "filter argument")
		}
		if kind == ast.FilterReplaceRegex {
			f.Old = arg
			lex.Whitespace(r)
			newArg, err := ParseQuotedTemplate(r)
			if err != nil {
				return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "replacement string")
			}
			f.New = newArg
		} else {
			f.Arg = arg
		}
	case ast.FilterReplace:
		lex.Whitespace(r)
		oldArg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "old string")
		}
		f.Old = oldArg
		lex.Whitespace(r)
		newArg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "new string")
		}
		f.New = newArg
	case ast.FilterNth:
		lex.Whitespace(r)
		n, err := lex.Integer(r)
		if err != nil {
			return ast.Filter{}, false, lex.Fatal(r, lex.ErrExpecting, "index")
		}
		f.Index = n
	}
	f.Sp = r.Span(start)
	return f, true, nil
}
