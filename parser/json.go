package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

// ParseJSONValue parses one JSON value, extended so any string token is
// itself a template and a top-level value may be a bare `{{expr}}`
// placeholder (spec.md §4.4).
func ParseJSONValue(r *lex.Reader) (ast.JSONValue, error) {
	start := r.Mark()
	lead := jsonWhitespace(r)

	if b, ok := r.Peek(); ok && b == '{' && peekDouble(r) {
		ph, err := parsePlaceholder(r)
		if err == nil {
			return ast.JSONValue{IsPlaceholder: true, Placeholder: ph.Expr, LeadingSpace: lead, Sp: r.Span(start)}, nil
		}
	}

	b, ok := r.Peek()
	if !ok {
		return ast.JSONValue{}, lex.Fatal(r, lex.ErrJson, "unexpected end of input")
	}
	var v ast.JSONValue
	var err error
	switch {
	case b == '{':
		v, err = parseJSONObject(r)
	case b == '[':
		v, err = parseJSONArray(r)
	case b == '"':
		var tmpl ast.Template
		tmpl, err = ParseQuotedTemplate(r)
		v = ast.JSONValue{Str: tmpl, HasStr: true}
	case b == 't' || b == 'f':
		var bv bool
		bv, err = lex.Boolean(r)
		v = ast.JSONValue{Bool: bv, HasBool: true}
	case b == 'n':
		err = lex.Null(r)
		v = ast.JSONValue{IsNull: true}
	case b == '-' || (b >= '0' && b <= '9'):
		var num string
		var isFloat bool
		num, isFloat, err = lex.Number(r)
		v = ast.JSONValue{Number: num, IsFloat: isFloat}
	default:
		return ast.JSONValue{}, lex.Fatal(r, lex.ErrJson, "unexpected character")
	}
	if err != nil {
		return ast.JSONValue{}, err
	}
	v.LeadingSpace = lead
	v.Sp = r.Span(start)
	return v, nil
}

func peekDouble(r *lex.Reader) bool {
	b, ok := r.PeekAt(1)
	return ok && b == '{'
}

func jsonWhitespace(r *lex.Reader) string {
	start := r.Mark()
	r.ReadWhile(func(b byte) bool {
		return b == ' ' || b == '\t' || b == '\n' || b == '\r'
	})
	return r.ReadFrom(start)
}

func parseJSONObject(r *lex.Reader) (ast.JSONValue, error) {
	if err := lex.Literal(r, "{"); err != nil {
		return ast.JSONValue{}, err
	}
	var entries []ast.JSONObjectEntry
	for {
		trail := jsonWhitespace(r)
		if b, ok := r.Peek(); ok && b == '}' {
			r.Read()
			if len(entries) > 0 {
				entries[len(entries)-1].Value.TrailingSpace = trail
			}
			break
		}
		if len(entries) > 0 {
			if err := lex.Literal(r, ","); err != nil {
				return ast.JSONValue{}, lex.Fatal(r, lex.ErrJson, "expected , or }")
			}
			jsonWhitespace(r)
		}
		entryStart := r.Mark()
		key, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.JSONValue{}, lex.Fatal(r, lex.ErrJson, "expected object key")
		}
		jsonWhitespace(r)
		if err := lex.Literal(r, ":"); err != nil {
			return ast.JSONValue{}, lex.Fatal(r, lex.ErrJson, "expected :")
		}
		val, err := ParseJSONValue(r)
		if err != nil {
			return ast.JSONValue{}, err
		}
		entries = append(entries, ast.JSONObjectEntry{Key: key, Value: val, Sp: r.Span(entryStart)})
	}
	return ast.JSONValue{Object: entries, HasObj: true}, nil
}

func parseJSONArray(r *lex.Reader) (ast.JSONValue, error) {
	if err := lex.Literal(r, "["); err != nil {
		return ast.JSONValue{}, err
	}
	var items []ast.JSONValue
	for {
		trail := jsonWhitespace(r)
		if b, ok := r.Peek(); ok && b == ']' {
			r.Read()
			if len(items) > 0 {
				items[len(items)-1].TrailingSpace = trail
			}
			break
		}
		if len(items) > 0 {
			if err := lex.Literal(r, ","); err != nil {
				return ast.JSONValue{}, lex.Fatal(r, lex.ErrJson, "expected , or ]")
			}
		}
		v, err := ParseJSONValue(r)
		if err != nil {
			return ast.JSONValue{}, err
		}
		items = append(items, v)
	}
	return ast.JSONValue{List: items, HasList: true}, nil
}
