package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

// ParseFile parses a complete script into an ast.File: zero or more
// entries (spec.md §4.8).
func ParseFile(r *lex.Reader) (ast.File, error) {
	var entries []ast.Entry
	for {
		skipBlankLines(r)
		if r.AtEOF() {
			break
		}
		e, err := parseEntry(r)
		if err != nil {
			return ast.File{}, err
		}
		entries = append(entries, e)
	}
	return ast.File{Entries: entries}, nil
}

func skipBlankLines(r *lex.Reader) {
	for {
		mark := r.Mark()
		lex.Whitespace(r)
		if err := lex.LineTerminator(r); err != nil {
			r.Seek(mark)
			return
		}
		if r.Mark() == mark {
			return
		}
	}
}

func parseEntry(r *lex.Reader) (ast.Entry, error) {
	start := r.Mark()
	req, err := parseRequest(r)
	if err != nil {
		return ast.Entry{}, err
	}
	skipBlankLines(r)
	var resp *ast.ResponseSpec
	mark := r.Mark()
	if isAtWord(r, "HTTP") {
		rs, err := parseResponseSpec(r)
		if err != nil {
			return ast.Entry{}, err
		}
		resp = &rs
	} else {
		r.Seek(mark)
	}
	return ast.Entry{Request: req, Response: resp, Sp: r.Span(start)}, nil
}

func isAtWord(r *lex.Reader, word string) bool {
	mark := r.Mark()
	defer r.Seek(mark)
	return lex.TryLiteral(r, word) == nil
}

func parseRequest(r *lex.Reader) (ast.Request, error) {
	start := r.Mark()
	method, err := parseMethod(r)
	if err != nil {
		return ast.Request{}, err
	}
	lex.Whitespace(r)
	url, err := ParseUndelimitedTemplate(r)
	if err != nil {
		return ast.Request{}, err
	}
	if err := lex.LineTerminator(r); err != nil {
		return ast.Request{}, err
	}

	headers, err := parseHeaderLines(r)
	if err != nil {
		return ast.Request{}, err
	}

	sections, err := parseSections(r, requestSectionKinds)
	if err != nil {
		return ast.Request{}, err
	}

	body, err := parseOptionalBody(r)
	if err != nil {
		return ast.Request{}, err
	}

	return ast.Request{Method: ast.Method(method), URL: url, Headers: headers, Sections: sections, Body: body, Sp: r.Span(start)}, nil
}

func parseMethod(r *lex.Reader) (string, error) {
	start := r.Mark()
	m := r.ReadWhile(func(b byte) bool { return b >= 'A' && b <= 'Z' })
	if m == "" {
		r.Seek(start)
		return "", lex.Fatal(r, lex.ErrMethod, "expected uppercase method token")
	}
	return m, nil
}

func parseResponseSpec(r *lex.Reader) (ast.ResponseSpec, error) {
	start := r.Mark()
	if err := lex.Literal(r, "HTTP"); err != nil {
		return ast.ResponseSpec{}, err
	}
	var vm ast.VersionMatcher
	if b, ok := r.Peek(); ok && b == '/' {
		r.Read()
		v, err := parseVersionToken(r)
		if err != nil {
			return ast.ResponseSpec{}, err
		}
		vm.Version = v
	} else {
		vm.Any = true
	}
	lex.Whitespace(r)
	sm, err := parseStatusToken(r)
	if err != nil {
		return ast.ResponseSpec{}, err
	}
	if err := lex.LineTerminator(r); err != nil {
		return ast.ResponseSpec{}, err
	}

	headers, err := parseHeaderLines(r)
	if err != nil {
		return ast.ResponseSpec{}, err
	}
	sections, err := parseSections(r, responseSectionKinds)
	if err != nil {
		return ast.ResponseSpec{}, err
	}
	body, err := parseOptionalBody(r)
	if err != nil {
		return ast.ResponseSpec{}, err
	}
	return ast.ResponseSpec{Version: vm, Status: sm, Headers: headers, Sections: sections, Body: body, Sp: r.Span(start)}, nil
}

func parseVersionToken(r *lex.Reader) (string, error) {
	for _, v := range []string{"1.0", "1.1", "2", "3"} {
		if lex.TryLiteral(r, v) == nil {
			return v, nil
		}
	}
	return "", lex.Fatal(r, lex.ErrVersion, "expected 1.0, 1.1, 2, or 3")
}

func parseStatusToken(r *lex.Reader) (ast.StatusMatcher, error) {
	if lex.TryLiteral(r, "*") == nil {
		return ast.StatusMatcher{Any: true}, nil
	}
	n, err := lex.Natural(r)
	if err != nil {
		return ast.StatusMatcher{}, lex.Fatal(r, lex.ErrStatus, "expected * or status code")
	}
	return ast.StatusMatcher{Status: int(n)}, nil
}

// parseHeaderLines consumes zero or more `name: value` lines, stopping
// before a `[Section]` line, a blank line, or a line that can't be a
// header (next entry boundary).
func parseHeaderLines(r *lex.Reader) ([]ast.Header, error) {
	var out []ast.Header
	for {
		mark := r.Mark()
		lex.Whitespace(r)
		if b, ok := r.Peek(); !ok || b == '\n' || b == '[' {
			r.Seek(mark)
			return out, nil
		}
		h, ok, err := tryParseHeaderLine(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.Seek(mark)
			return out, nil
		}
		out = append(out, h)
	}
}

func tryParseHeaderLine(r *lex.Reader) (ast.Header, bool, error) {
	start := r.Mark()
	name, err := lex.KeyString(r)
	if err != nil {
		r.Seek(start)
		return ast.Header{}, false, nil
	}
	if err := lex.Literal(r, ":"); err != nil {
		r.Seek(start)
		return ast.Header{}, false, nil
	}
	lex.Whitespace(r)
	value, err := ParseUndelimitedTemplate(r)
	if err != nil {
		return ast.Header{}, false, err
	}
	if err := lex.LineTerminator(r); err != nil {
		return ast.Header{}, false, err
	}
	nameTmpl := ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: name, SourceText: name}}, Sp: r.Span(start)}
	return ast.Header{Name: nameTmpl, Value: value, Sp: r.Span(start)}, true, nil
}

var requestSectionKinds = map[string]ast.SectionKind{
	"Options":          ast.SectionOptions,
	"QueryStringParams": ast.SectionQueryStringParams,
	"FormParams":        ast.SectionFormParams,
	"MultipartFormData": ast.SectionMultipartFormData,
	"Cookies":           ast.SectionCookies,
	"BasicAuth":         ast.SectionBasicAuth,
}

var responseSectionKinds = map[string]ast.SectionKind{
	"Captures": ast.SectionCaptures,
	"Asserts":  ast.SectionAsserts,
}

func parseSections(r *lex.Reader, allowed map[string]ast.SectionKind) ([]ast.Section, error) {
	var out []ast.Section
	seen := map[ast.SectionKind]bool{}
	for {
		skipBlankLines(r)
		mark := r.Mark()
		if b, ok := r.Peek(); !ok || b != '[' {
			r.Seek(mark)
			return out, nil
		}
		name, ok, err := tryParseSectionName(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.Seek(mark)
			return out, nil
		}
		kind, known := allowed[name]
		if !known {
			r.Seek(mark)
			return out, nil
		}
		if seen[kind] {
			return nil, lex.Fatal(r, lex.ErrDuplicateSection, name)
		}
		seen[kind] = true
		sec, err := parseSectionBody(r, kind, mark)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
}

func tryParseSectionName(r *lex.Reader) (string, bool, error) {
	start := r.Mark()
	if err := lex.Literal(r, "["); err != nil {
		return "", false, nil
	}
	name := r.ReadWhile(func(b byte) bool { return b != ']' && b != '\n' })
	if err := lex.Literal(r, "]"); err != nil {
		r.Seek(start)
		return "", false, nil
	}
	if err := lex.LineTerminator(r); err != nil {
		return "", false, err
	}
	return name, true, nil
}

func parseSectionBody(r *lex.Reader, kind ast.SectionKind, start lex.Cursor) (ast.Section, error) {
	switch kind {
	case ast.SectionOptions:
		opts, err := parseOptionLines(r)
		if err != nil {
			return ast.Section{}, err
		}
		return ast.Section{Kind: kind, Options: opts, Sp: r.Span(start)}, nil
	case ast.SectionQueryStringParams, ast.SectionFormParams, ast.SectionCookies:
		kvs, err := parseKeyValueLines(r)
		if err != nil {
			return ast.Section{}, err
		}
		return ast.Section{Kind: kind, KeyValues: kvs, Sp: r.Span(start)}, nil
	case ast.SectionMultipartFormData:
		fields, err := parseMultipartLines(r)
		if err != nil {
			return ast.Section{}, err
		}
		return ast.Section{Kind: kind, Multipart: fields, Sp: r.Span(start)}, nil
	case ast.SectionBasicAuth:
		ba, err := parseBasicAuthLine(r)
		if err != nil {
			return ast.Section{}, err
		}
		return ast.Section{Kind: kind, BasicAuth: ba, Sp: r.Span(start)}, nil
	case ast.SectionCaptures:
		caps, err := parseCaptureLines(r)
		if err != nil {
			return ast.Section{}, err
		}
		return ast.Section{Kind: kind, Captures: caps, Sp: r.Span(start)}, nil
	case ast.SectionAsserts:
		asserts, err := parseAssertLines(r)
		if err != nil {
			return ast.Section{}, err
		}
		return ast.Section{Kind: kind, Asserts: asserts, Sp: r.Span(start)}, nil
	}
	return ast.Section{}, lex.Fatal(r, lex.ErrExpecting, "known section kind")
}

// isLineEnd reports whether the cursor sits at a section/blank/EOF
// boundary, used by every section's line-consuming loop.
func isLineEnd(r *lex.Reader) bool {
	mark := r.Mark()
	lex.Whitespace(r)
	b, ok := r.Peek()
	r.Seek(mark)
	return !ok || b == '\n' || b == '['
}

func parseOptionLines(r *lex.Reader) ([]ast.Option, error) {
	var out []ast.Option
	for {
		if isLineEnd(r) {
			return out, nil
		}
		if isAtWord(r, "HTTP") {
			return out, nil
		}
		start := r.Mark()
		key, err := lex.KeyString(r)
		if err != nil {
			return out, nil
		}
		if !ast.KnownOptions[key] {
			return nil, lex.Fatal(r, lex.ErrUnknownOption, key)
		}
		if err := lex.Literal(r, ":"); err != nil {
			return nil, lex.Fatal(r, lex.ErrExpecting, "':'")
		}
		lex.Whitespace(r)
		val, err := ParseUndelimitedTemplate(r)
		if err != nil {
			return nil, err
		}
		if err := lex.LineTerminator(r); err != nil {
			return nil, err
		}
		out = append(out, ast.Option{Key: key, Value: val, Sp: r.Span(start)})
	}
}

func parseKeyValueLines(r *lex.Reader) ([]ast.KeyValue, error) {
	var out []ast.KeyValue
	for {
		if isLineEnd(r) {
			return out, nil
		}
		start := r.Mark()
		name, err := lex.KeyString(r)
		if err != nil {
			return out, nil
		}
		if err := lex.Literal(r, ":"); err != nil {
			return nil, lex.Fatal(r, lex.ErrExpecting, "':'")
		}
		lex.Whitespace(r)
		val, err := ParseUndelimitedTemplate(r)
		if err != nil {
			return nil, err
		}
		if err := lex.LineTerminator(r); err != nil {
			return nil, err
		}
		nameTmpl := ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: name, SourceText: name}}}
		out = append(out, ast.KeyValue{Name: nameTmpl, Value: val, Sp: r.Span(start)})
	}
}

func parseMultipartLines(r *lex.Reader) ([]ast.MultipartField, error) {
	var out []ast.MultipartField
	for {
		if isLineEnd(r) {
			return out, nil
		}
		start := r.Mark()
		name, err := lex.KeyString(r)
		if err != nil {
			return out, nil
		}
		if err := lex.Literal(r, ":"); err != nil {
			return nil, lex.Fatal(r, lex.ErrExpecting, "':'")
		}
		lex.Whitespace(r)
		nameTmpl := ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: name, SourceText: name}}}
		if mark := r.Mark(); lex.TryLiteral(r, "file,") == nil {
			fname := r.ReadWhile(func(b byte) bool { return b != ';' })
			if err := lex.Literal(r, ";"); err != nil {
				return nil, lex.Fatal(r, lex.ErrExpecting, "';'")
			}
			var ctype ast.Template
			hasCType := false
			lex.Whitespace(r)
			if b, ok := r.Peek(); ok && b != '\n' {
				ct, err := ParseUndelimitedTemplate(r)
				if err != nil {
					return nil, err
				}
				ctype = ct
				hasCType = true
			}
			if err := lex.LineTerminator(r); err != nil {
				return nil, err
			}
			out = append(out, ast.MultipartField{
				Name: nameTmpl, IsFile: true,
				FileName:    ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: fname, SourceText: fname}}},
				ContentType: ctype, HasCType: hasCType, Sp: r.Span(start),
			})
			continue
		} else {
			r.Seek(mark)
		}
		val, err := ParseUndelimitedTemplate(r)
		if err != nil {
			return nil, err
		}
		if err := lex.LineTerminator(r); err != nil {
			return nil, err
		}
		out = append(out, ast.MultipartField{Name: nameTmpl, Value: val, Sp: r.Span(start)})
	}
}

func parseBasicAuthLine(r *lex.Reader) (ast.BasicAuth, error) {
	if isLineEnd(r) {
		return ast.BasicAuth{}, nil
	}
	start := r.Mark()
	user, err := lex.KeyString(r)
	if err != nil {
		return ast.BasicAuth{}, lex.Fatal(r, lex.ErrExpecting, "user")
	}
	if err := lex.Literal(r, ":"); err != nil {
		return ast.BasicAuth{}, lex.Fatal(r, lex.ErrExpecting, "':'")
	}
	lex.Whitespace(r)
	pass, err := ParseUndelimitedTemplate(r)
	if err != nil {
		return ast.BasicAuth{}, err
	}
	if err := lex.LineTerminator(r); err != nil {
		return ast.BasicAuth{}, err
	}
	userTmpl := ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: user, SourceText: user}}}
	return ast.BasicAuth{User: userTmpl, Password: pass, Sp: r.Span(start)}, nil
}

func parseCaptureLines(r *lex.Reader) ([]ast.Capture, error) {
	var out []ast.Capture
	for {
		if isLineEnd(r) {
			return out, nil
		}
		start := r.Mark()
		name, err := lex.KeyString(r)
		if err != nil {
			return out, nil
		}
		if err := lex.Literal(r, ":"); err != nil {
			return nil, lex.Fatal(r, lex.ErrExpecting, "':'")
		}
		lex.Whitespace(r)
		q, err := ParseQuery(r)
		if err != nil {
			return nil, err
		}
		filters, err := ParseFilterChain(r)
		if err != nil {
			return nil, err
		}
		if err := lex.LineTerminator(r); err != nil {
			return nil, err
		}
		out = append(out, ast.Capture{Name: name, Query: q, Filters: filters, Sp: r.Span(start)})
	}
}

func parseAssertLines(r *lex.Reader) ([]ast.Assert, error) {
	var out []ast.Assert
	for {
		if isLineEnd(r) {
			return out, nil
		}
		start := r.Mark()
		q, err := ParseQuery(r)
		if err != nil {
			return out, nil
		}
		lex.Whitespace(r)
		filters, err := ParseFilterChain(r)
		if err != nil {
			return nil, err
		}
		lex.Whitespace(r)
		p, err := ParsePredicate(r)
		if err != nil {
			return nil, err
		}
		if err := lex.LineTerminator(r); err != nil {
			return nil, err
		}
		out = append(out, ast.Assert{Query: q, Filters: filters, Predicate: p, Sp: r.Span(start)})
	}
}
