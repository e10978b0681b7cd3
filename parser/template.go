// Package parser implements the hand-written recursive-descent parser of
// scripts into ast.File: template parsing (C3), the JSON sub-parser (C4),
// query/predicate/filter parsing (C5–C7), and entry/section parsing (C8).
package parser

import (
	"strconv"
	"unicode/utf8"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

// stopFunc tells the template scanner when to stop consuming literal text.
type stopFunc func(r *lex.Reader) bool

func stopAtByte(delim byte) stopFunc {
	return func(r *lex.Reader) bool {
		b, ok := r.Peek()
		return ok && b == delim
	}
}

func stopUndelimited(r *lex.Reader) bool {
	b, ok := r.Peek()
	if !ok {
		return true
	}
	return b == '\n' || b == '#'
}

// parseTemplate scans a template body until stop holds (or EOF), producing
// literal chunks and `{{ expr }}` placeholders. delim is 0 for an
// undelimited template, else the quote byte used purely for Template.Delim
// bookkeeping (the caller consumes the surrounding quotes itself).
func parseTemplate(r *lex.Reader, delim byte, stop stopFunc) (ast.Template, error) {
	start := r.Mark()
	var elems []ast.TemplateElement

	var litBuf []byte
	litStart := r.Mark()
	flushLiteral := func() {
		if len(litBuf) == 0 {
			return
		}
		elems = append(elems, ast.Literal{
			Value:      string(litBuf),
			SourceText: r.ReadFrom(litStart),
			Sp:         r.Span(litStart),
		})
		litBuf = litBuf[:0]
	}

	for {
		if stop(r) || r.AtEOF() {
			break
		}
		b, _ := r.Peek()
		if b == '{' {
			if nxt, ok := r.PeekAt(1); ok && nxt == '{' {
				flushLiteral()
				ph, err := parsePlaceholder(r)
				if err != nil {
					return ast.Template{}, err
				}
				elems = append(elems, ph)
				litStart = r.Mark()
				continue
			}
		}
		if b == '\\' {
			decoded, err := decodeEscape(r)
			if err != nil {
				return ast.Template{}, err
			}
			litBuf = append(litBuf, decoded...)
			continue
		}
		r.Read()
		litBuf = append(litBuf, b)
	}
	flushLiteral()

	return ast.Template{Elements: elems, Delim: delim, Sp: r.Span(start)}, nil
}

// ParseQuotedTemplate parses a `"..."` template, consuming both quotes.
func ParseQuotedTemplate(r *lex.Reader) (ast.Template, error) {
	if err := lex.Literal(r, "\""); err != nil {
		return ast.Template{}, err
	}
	t, err := parseTemplate(r, '"', stopAtByte('"'))
	if err != nil {
		return ast.Template{}, err
	}
	if err := lex.Literal(r, "\""); err != nil {
		return ast.Template{}, lex.Fatal(r, lex.ErrExpecting, "closing quote")
	}
	return t, nil
}

// ParseBacktickTemplate parses a `` `...` `` template (used for filenames
// and other contexts that allow embedded quotes).
func ParseBacktickTemplate(r *lex.Reader) (ast.Template, error) {
	if err := lex.Literal(r, "`"); err != nil {
		return ast.Template{}, err
	}
	t, err := parseTemplate(r, '`', stopAtByte('`'))
	if err != nil {
		return ast.Template{}, err
	}
	if err := lex.Literal(r, "`"); err != nil {
		return ast.Template{}, lex.Fatal(r, lex.ErrExpecting, "closing backtick")
	}
	return t, nil
}

// ParseUndelimitedTemplate parses a template that runs to end of line or a
// `#` comment, with no surrounding quotes (used for URLs and bare header
// values).
func ParseUndelimitedTemplate(r *lex.Reader) (ast.Template, error) {
	return parseTemplate(r, 0, stopUndelimited)
}

func parsePlaceholder(r *lex.Reader) (ast.Placeholder, error) {
	start := r.Mark()
	if err := lex.Literal(r, "{{"); err != nil {
		return ast.Placeholder{}, err
	}
	lex.Whitespace(r)
	expr, err := parseExpression(r)
	if err != nil {
		return ast.Placeholder{}, err
	}
	lex.Whitespace(r)
	if err := lex.Literal(r, "}}"); err != nil {
		return ast.Placeholder{}, lex.Fatal(r, lex.ErrExpecting, "closing }}")
	}
	return ast.Placeholder{Expr: expr, Sp: r.Span(start)}, nil
}

func parseExpression(r *lex.Reader) (ast.Expression, error) {
	start := r.Mark()
	name, err := identifier(r)
	if err != nil {
		return ast.Expression{}, lex.Fatal(r, lex.ErrExpecting, "variable or function name")
	}
	if b, ok := r.Peek(); ok && b == '(' {
		r.Read()
		lex.Whitespace(r)
		var arg string
		switch name {
		case "getEnv":
			tmpl, err := ParseQuotedTemplate(r)
			if err != nil {
				return ast.Expression{}, err
			}
			s, ok := tmpl.IsPlainString()
			if !ok {
				return ast.Expression{}, lex.Fatal(r, lex.ErrExpecting, "literal string argument to getEnv")
			}
			arg = s
		case "newDate", "newUuid":
			// no arguments expected
		default:
			return ast.Expression{}, lex.Fatal(r, lex.ErrExpecting, "known function name")
		}
		lex.Whitespace(r)
		if err := lex.Literal(r, ")"); err != nil {
			return ast.Expression{}, lex.Fatal(r, lex.ErrExpecting, "closing )")
		}
		var kind ast.FunctionKind
		switch name {
		case "newDate":
			kind = ast.FuncNewDate
		case "newUuid":
			kind = ast.FuncNewUuid
		case "getEnv":
			kind = ast.FuncGetEnv
		}
		return ast.FunctionExpr(kind, arg, r.Span(start)), nil
	}
	return ast.VariableExpr(name, r.Span(start)), nil
}

func identifier(r *lex.Reader) (string, error) {
	start := r.Mark()
	b, ok := r.Peek()
	if !ok || !(isIdentStart(b)) {
		r.Seek(start)
		return "", lex.Recoverable(r, "identifier")
	}
	name := r.ReadWhile(isIdentCont)
	return name, nil
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// decodeEscape reads a backslash escape sequence and returns its decoded
// UTF-8 bytes. Unknown escapes are fatal.
func decodeEscape(r *lex.Reader) ([]byte, error) {
	start := r.Mark()
	if err := lex.Literal(r, "\\"); err != nil {
		return nil, err
	}
	b, ok := r.Peek()
	if !ok {
		return nil, lex.Fatal(r, lex.ErrEscapeChar, "unterminated escape")
	}
	switch b {
	case '\\':
		r.Read()
		return []byte("\\"), nil
	case '"':
		r.Read()
		return []byte("\""), nil
	case '`':
		r.Read()
		return []byte("`"), nil
	case 'n':
		r.Read()
		return []byte("\n"), nil
	case 't':
		r.Read()
		return []byte("\t"), nil
	case 'r':
		r.Read()
		return []byte("\r"), nil
	case '\n':
		// line continuation inside a multiline string with `escape`
		r.Read()
		return []byte{}, nil
	case 'u':
		r.Read()
		return decodeUnicodeEscape(r)
	default:
		r.Seek(start)
		return nil, lex.Fatal(r, lex.ErrEscapeChar, string(b))
	}
}

func decodeUnicodeEscape(r *lex.Reader) ([]byte, error) {
	if err := lex.Literal(r, "{"); err != nil {
		return nil, lex.Fatal(r, lex.ErrUnicode, "expected {")
	}
	var digits []byte
	for {
		b, ok := r.Peek()
		if ok && b == '}' {
			break
		}
		hb, err := lex.HexDigit(r)
		if err != nil {
			return nil, lex.Fatal(r, lex.ErrUnicode, "expected hex digit")
		}
		digits = append(digits, hb)
		if len(digits) > 6 {
			return nil, lex.Fatal(r, lex.ErrUnicode, "too many hex digits")
		}
	}
	if len(digits) == 0 {
		return nil, lex.Fatal(r, lex.ErrUnicode, "empty escape")
	}
	if err := lex.Literal(r, "}"); err != nil {
		return nil, lex.Fatal(r, lex.ErrUnicode, "expected }")
	}
	cp, err := strconv.ParseInt(string(digits), 16, 32)
	if err != nil || cp > utf8.MaxRune {
		return nil, lex.Fatal(r, lex.ErrUnicode, string(digits))
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, rune(cp))
	return buf[:n], nil
}
