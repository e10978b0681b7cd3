package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

var cookieAttrNames = map[string]ast.CookieAttr{
	"Value":    ast.CookieValue,
	"Expires":  ast.CookieExpires,
	"MaxAge":   ast.CookieMaxAge,
	"Domain":   ast.CookieDomain,
	"Path":     ast.CookiePath,
	"Secure":   ast.CookieSecure,
	"HttpOnly": ast.CookieHTTPOnly,
	"SameSite": ast.CookieSameSite,
}

var certAttrNames = map[string]ast.CertificateAttr{
	"Subject":      ast.CertSubject,
	"Issuer":       ast.CertIssuer,
	"StartDate":    ast.CertStartDate,
	"ExpireDate":   ast.CertExpireDate,
	"SerialNumber": ast.CertSerialNumber,
}

// ParseQuery recognizes a query keyword and its argument (spec.md §4.5).
func ParseQuery(r *lex.Reader) (ast.Query, error) {
	start := r.Mark()
	kw, err := identifier(r)
	if err != nil {
		return ast.Query{}, lex.Recoverable(r, "query keyword")
	}
	switch kw {
	case "status":
		return ast.Query{Kind: ast.QueryStatus, Sp: r.Span(start)}, nil
	case "url":
		return ast.Query{Kind: ast.QueryURL, Sp: r.Span(start)}, nil
	case "body":
		return ast.Query{Kind: ast.QueryBody, Sp: r.Span(start)}, nil
	case "bytes":
		return ast.Query{Kind: ast.QueryBytes, Sp: r.Span(start)}, nil
	case "sha256":
		return ast.Query{Kind: ast.QuerySha256, Sp: r.Span(start)}, nil
	case "md5":
		return ast.Query{Kind: ast.QueryMd5, Sp: r.Span(start)}, nil
	case "ip":
		return ast.Query{Kind: ast.QueryIP, Sp: r.Span(start)}, nil
	case "redirects":
		return ast.Query{Kind: ast.QueryRedirects, Sp: r.Span(start)}, nil
	case "version":
		return ast.Query{Kind: ast.QueryVersion, Sp: r.Span(start)}, nil
	case "duration":
		return ast.Query{Kind: ast.QueryDuration, Sp: r.Span(start)}, nil
	case "header":
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "header name")
		}
		return ast.Query{Kind: ast.QueryHeader, Arg: arg, Sp: r.Span(start)}, nil
	case "xpath":
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "xpath expression")
		}
		return ast.Query{Kind: ast.QueryXPath, Arg: arg, Sp: r.Span(start)}, nil
	case "jsonpath":
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "jsonpath expression")
		}
		return ast.Query{Kind: ast.QueryJSONPath, Arg: arg, Sp: r.Span(start)}, nil
	case "regex":
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "regex pattern")
		}
		return ast.Query{Kind: ast.QueryRegex, Arg: arg, Sp: r.Span(start)}, nil
	case "variable":
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "variable name")
		}
		return ast.Query{Kind: ast.QueryVariable, Arg: arg, Sp: r.Span(start)}, nil
	case "certificate":
		lex.Whitespace(r)
		arg, err := ParseQuotedTemplate(r)
		if err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "certificate attribute")
		}
		name, ok := arg.IsPlainString()
		if !ok {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "literal certificate attribute")
		}
		attr, ok := certAttrNames[name]
		if !ok {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "known certificate attribute")
		}
		return ast.Query{Kind: ast.QueryCertificate, CertAttr: attr, Sp: r.Span(start)}, nil
	case "cookie":
		lex.Whitespace(r)
		return parseCookieQuery(r, start)
	default:
		r.Seek(start)
		return ast.Query{}, lex.Recoverable(r, "query keyword")
	}
}

// parseCookieQuery parses `cookie "name[Attr]"`: the quoted string itself
// encodes the optional bracketed attribute (spec.md §4.5).
func parseCookieQuery(r *lex.Reader, start lex.Cursor) (ast.Query, error) {
	if err := lex.Literal(r, "\""); err != nil {
		return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "quoted cookie path")
	}
	name, err := parseTemplate(r, '"', stopAtByteOrOpenBracket)
	if err != nil {
		return ast.Query{}, err
	}
	q := ast.Query{Kind: ast.QueryCookie, CookieName: name}
	if b, ok := r.Peek(); ok && b == '[' {
		r.Read()
		attrStart := r.Mark()
		attrName := r.ReadWhile(func(b byte) bool { return b != ']' })
		attr, ok := cookieAttrNames[attrName]
		if !ok {
			r.Seek(attrStart)
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "known cookie attribute")
		}
		if err := lex.Literal(r, "]"); err != nil {
			return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "closing ]")
		}
		q.CookieAttr = attr
		q.HasAttr = true
	}
	if err := lex.Literal(r, "\""); err != nil {
		return ast.Query{}, lex.Fatal(r, lex.ErrExpecting, "closing quote")
	}
	q.Sp = r.Span(start)
	return q, nil
}

func stopAtByteOrOpenBracket(r *lex.Reader) bool {
	b, ok := r.Peek()
	return ok && (b == '"' || b == '[')
}
