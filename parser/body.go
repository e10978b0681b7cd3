package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

// parseOptionalBody recognizes the body encodings of spec.md §4.8:
// JSON, XML, multiline string, oneline string, base64, hex, or file. A
// missing body (next entry, EOF, or blank line straight to EOF) is not an
// error.
func parseOptionalBody(r *lex.Reader) (*ast.Body, error) {
	skipBlankLines(r)
	mark := r.Mark()
	if r.AtEOF() {
		return nil, nil
	}
	b, _ := r.Peek()

	switch {
	case b == '{' || b == '[':
		start := r.Mark()
		v, err := ParseJSONValue(r)
		if err != nil {
			r.Seek(mark)
			return nil, nil
		}
		lex.LineTerminator(r)
		return &ast.Body{Kind: ast.BodyJSON, JSON: v, Sp: r.Span(start)}, nil
	case b == '<':
		start := r.Mark()
		t, err := ParseUndelimitedTemplate(r)
		if err != nil {
			return nil, err
		}
		lex.LineTerminator(r)
		return &ast.Body{Kind: ast.BodyXML, Text: t, Sp: r.Span(start)}, nil
	case b == '`' && isAtWord(r, "```"):
		return parseMultilineBody(r)
	case isAtWord(r, "base64,"):
		return parseBase64Body(r)
	case isAtWord(r, "hex,"):
		return parseHexBody(r)
	case isAtWord(r, "file,"):
		return parseFileBody(r)
	case b == '"':
		start := r.Mark()
		t, err := ParseQuotedTemplate(r)
		if err != nil {
			r.Seek(mark)
			return nil, nil
		}
		lex.LineTerminator(r)
		return &ast.Body{Kind: ast.BodyOnelineString, Text: t, Sp: r.Span(start)}, nil
	}
	r.Seek(mark)
	return nil, nil
}

func parseMultilineBody(r *lex.Reader) (*ast.Body, error) {
	start := r.Mark()
	if err := lex.Literal(r, "```"); err != nil {
		return nil, err
	}
	language := r.ReadWhile(func(b byte) bool {
		return b != '\n'
	})
	escape, novar := false, false
	switch language {
	case "escape":
		escape = true
		language = ""
	case "novariable":
		novar = true
		language = ""
	case "json", "xml", "graphql":
	case "":
	default:
		language = ""
	}
	if err := lex.LineTerminator(r); err != nil {
		return nil, err
	}
	bodyStart := r.Mark()
	for {
		if isAtWord(r, "```") {
			text := r.ReadFrom(bodyStart)
			// drop the newline immediately preceding the closing fence
			if len(text) > 0 && text[len(text)-1] == '\n' {
				text = text[:len(text)-1]
			}
			if err := lex.Literal(r, "```"); err != nil {
				return nil, err
			}
			if err := lex.LineTerminator(r); err != nil {
				return nil, err
			}
			tmpl, err := reTemplateMultiline(r, text, bodyStart)
			if err != nil {
				return nil, err
			}
			return &ast.Body{
				Kind: ast.BodyMultilineString, Text: tmpl,
				Language: language, Escape: escape, NoVariable: novar,
				Sp: r.Span(start),
			}, nil
		}
		if r.AtEOF() {
			return nil, lex.Fatal(r, lex.ErrExpecting, "closing ```")
		}
		r.ReadWhile(func(b byte) bool { return b != '\n' })
		if !r.AtEOF() {
			r.Read()
		}
	}
}

// reTemplateMultiline re-parses the raw multiline body text as a template
// so `{{placeholder}}` substitutions inside it are recognized, without
// re-walking the reader (the span has already been consumed above).
func reTemplateMultiline(outer *lex.Reader, text string, bodySpan lex.Cursor) (ast.Template, error) {
	sub := lex.NewReader(outer.File, []byte(text))
	t, err := parseTemplate(sub, 0, func(r *lex.Reader) bool { return r.AtEOF() })
	if err != nil {
		return ast.Template{}, err
	}
	return t, nil
}

func parseBase64Body(r *lex.Reader) (*ast.Body, error) {
	start := r.Mark()
	if err := lex.Literal(r, "base64,"); err != nil {
		return nil, err
	}
	data := r.ReadWhile(func(b byte) bool { return b != ';' })
	if err := lex.Literal(r, ";"); err != nil {
		return nil, lex.Fatal(r, lex.ErrExpecting, "';'")
	}
	lex.LineTerminator(r)
	return &ast.Body{Kind: ast.BodyBase64, Base64: data, Sp: r.Span(start)}, nil
}

func parseHexBody(r *lex.Reader) (*ast.Body, error) {
	start := r.Mark()
	if err := lex.Literal(r, "hex,"); err != nil {
		return nil, err
	}
	data := r.ReadWhile(func(b byte) bool { return b != ';' })
	if err := lex.Literal(r, ";"); err != nil {
		return nil, lex.Fatal(r, lex.ErrExpecting, "';'")
	}
	lex.LineTerminator(r)
	return &ast.Body{Kind: ast.BodyHex, Hex: data, Sp: r.Span(start)}, nil
}

func parseFileBody(r *lex.Reader) (*ast.Body, error) {
	start := r.Mark()
	if err := lex.Literal(r, "file,"); err != nil {
		return nil, err
	}
	name := r.ReadWhile(func(b byte) bool { return b != ';' })
	if err := lex.Literal(r, ";"); err != nil {
		return nil, lex.Fatal(r, lex.ErrExpecting, "';'")
	}
	lex.LineTerminator(r)
	tmpl := ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: name, SourceText: name}}}
	return &ast.Body{Kind: ast.BodyFile, FileName: tmpl, Sp: r.Span(start)}, nil
}
