package httpspec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/value"
)

// BuildRequest renders req against ctx into a fully-evaluated RequestSpec
// (spec.md §4.14). fileRoot resolves file-valued bodies and multipart file
// parts, matching the teacher's `@file:` convention generalized to every
// file reference (SPEC_FULL.md Supplemented features #5). Every rendered
// value drawn from a `secret`-tainted variable (spec.md §4.10) is added to
// redactor as it is produced, so a secret used in a header, query param,
// form field, cookie, multipart field, or auth credential is already known
// to the redactor before the request is ever logged or reported.
func BuildRequest(ctx *eval.Context, req ast.Request, fileRoot string, redactor *redact.Redactor) (RequestSpec, error) {
	method := strings.ToUpper(string(req.Method))

	urlText, err := eval.EvalTemplate(ctx, req.URL)
	if err != nil {
		return RequestSpec{}, err
	}
	addSecret(redactor, urlText)
	parsed, err := url.Parse(urlText.Text)
	if err != nil {
		return RequestSpec{}, &eval.RuntimeError{Kind: eval.ErrInvalidUrl, Name: urlText.Text, Span: req.URL.Sp}
	}

	spec := RequestSpec{Method: method}

	for _, h := range req.Headers {
		name, err := eval.EvalTemplate(ctx, h.Name)
		if err != nil {
			return RequestSpec{}, err
		}
		val, err := eval.EvalTemplate(ctx, h.Value)
		if err != nil {
			return RequestSpec{}, err
		}
		addSecret(redactor, val)
		spec.Headers = append(spec.Headers, HeaderField{Name: name.Text, Value: val.Text})
	}

	for _, sec := range req.Sections {
		switch sec.Kind {
		case ast.SectionQueryStringParams:
			for _, kv := range sec.KeyValues {
				n, v, err := evalKV(ctx, kv, redactor)
				if err != nil {
					return RequestSpec{}, err
				}
				spec.QueryString = append(spec.QueryString, KV{Name: n, Value: v})
			}
		case ast.SectionFormParams:
			for _, kv := range sec.KeyValues {
				n, v, err := evalKV(ctx, kv, redactor)
				if err != nil {
					return RequestSpec{}, err
				}
				spec.Form = append(spec.Form, KV{Name: n, Value: v})
			}
		case ast.SectionCookies:
			for _, kv := range sec.KeyValues {
				n, v, err := evalKV(ctx, kv, redactor)
				if err != nil {
					return RequestSpec{}, err
				}
				spec.Cookies = append(spec.Cookies, KV{Name: n, Value: v})
			}
		case ast.SectionMultipartFormData:
			for _, f := range sec.Multipart {
				part, err := evalMultipart(ctx, f, fileRoot, redactor)
				if err != nil {
					return RequestSpec{}, err
				}
				spec.Multipart = append(spec.Multipart, part)
			}
		case ast.SectionBasicAuth:
			user, err := eval.EvalTemplate(ctx, sec.BasicAuth.User)
			if err != nil {
				return RequestSpec{}, err
			}
			pass, err := eval.EvalTemplate(ctx, sec.BasicAuth.Password)
			if err != nil {
				return RequestSpec{}, err
			}
			addSecret(redactor, user)
			addSecret(redactor, pass)
			if !hasHeader(spec.Headers, "Authorization") {
				token := base64.StdEncoding.EncodeToString([]byte(user.Text + ":" + pass.Text))
				spec.Headers = append(spec.Headers, HeaderField{Name: "Authorization", Value: "Basic " + token})
				addSecretRaw(redactor, token, user.Secret || pass.Secret)
			}
		}
	}

	if len(spec.QueryString) > 0 {
		q := parsed.Query()
		for _, kv := range spec.QueryString {
			q.Add(kv.Name, kv.Value)
		}
		parsed.RawQuery = q.Encode()
	}
	spec.URL = parsed.String()

	if req.Body != nil {
		body, implicitCT, err := evalBody(ctx, *req.Body, fileRoot, redactor)
		if err != nil {
			return RequestSpec{}, err
		}
		spec.Body = body
		spec.ImplicitContentType = implicitCT
	} else if len(spec.Form) > 0 {
		vals := url.Values{}
		for _, kv := range spec.Form {
			vals.Add(kv.Name, kv.Value)
		}
		spec.Body = []byte(vals.Encode())
		spec.ImplicitContentType = "application/x-www-form-urlencoded"
	} else if len(spec.Multipart) > 0 {
		spec.ImplicitContentType = "multipart/form-data"
	}

	return spec, nil
}

func hasHeader(headers []HeaderField, name string) bool {
	for _, h := range headers {
		if equalFoldASCII(h.Name, name) {
			return true
		}
	}
	return false
}

// addSecret feeds r.Text into redactor when r came from a secret-tainted
// template (spec.md §4.10), so later log lines and reports never show it
// in clear text. redactor may be nil, in which case nothing is recorded;
// both args are safe to pass unconditionally from every call site.
func addSecret(redactor *redact.Redactor, r eval.EvalResult) {
	addSecretRaw(redactor, r.Text, r.Secret)
}

func addSecretRaw(redactor *redact.Redactor, s string, secret bool) {
	if redactor != nil && secret {
		redactor.Add(s)
	}
}

func evalKV(ctx *eval.Context, kv ast.KeyValue, redactor *redact.Redactor) (string, string, error) {
	n, err := eval.EvalTemplate(ctx, kv.Name)
	if err != nil {
		return "", "", err
	}
	v, err := eval.EvalTemplate(ctx, kv.Value)
	if err != nil {
		return "", "", err
	}
	addSecret(redactor, v)
	return n.Text, v.Text, nil
}

func evalMultipart(ctx *eval.Context, f ast.MultipartField, fileRoot string, redactor *redact.Redactor) (MultipartPart, error) {
	name, err := eval.EvalTemplate(ctx, f.Name)
	if err != nil {
		return MultipartPart{}, err
	}
	if !f.IsFile {
		v, err := eval.EvalTemplate(ctx, f.Value)
		if err != nil {
			return MultipartPart{}, err
		}
		addSecret(redactor, v)
		return MultipartPart{Name: name.Text, Value: v.Text}, nil
	}
	fname, err := eval.EvalTemplate(ctx, f.FileName)
	if err != nil {
		return MultipartPart{}, err
	}
	data, err := readContextFile(fileRoot, fname.Text, f.Sp)
	if err != nil {
		return MultipartPart{}, err
	}
	ct := "application/octet-stream"
	if f.HasCType {
		ctVal, err := eval.EvalTemplate(ctx, f.ContentType)
		if err != nil {
			return MultipartPart{}, err
		}
		ct = ctVal.Text
	}
	return MultipartPart{Name: name.Text, Value: string(data), IsFile: true, FileName: fname.Text, ContentType: ct}, nil
}

func readContextFile(fileRoot, name string, sp ast.Span) ([]byte, error) {
	path := name
	if fileRoot != "" && !filepath.IsAbs(name) {
		path = filepath.Join(fileRoot, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &eval.RuntimeError{Kind: eval.ErrOutput, Name: err.Error(), Span: sp}
	}
	return data, nil
}

// EvalResponseBody renders an expected [ResponseSpec] body the same way a
// request body is rendered, for the entry runner's implicit body assertion
// (spec.md §4.16 "Asserts", implicit body match).
func EvalResponseBody(ctx *eval.Context, b ast.Body, fileRoot string, redactor *redact.Redactor) ([]byte, string, error) {
	return evalBody(ctx, b, fileRoot, redactor)
}

// evalBody renders an AST body into raw bytes plus the implicit
// Content-Type it entails (spec.md §4.14 step 9-10).
func evalBody(ctx *eval.Context, b ast.Body, fileRoot string, redactor *redact.Redactor) ([]byte, string, error) {
	switch b.Kind {
	case ast.BodyJSON:
		raw, err := evalJSONValueJSON(ctx, b.JSON, redactor)
		if err != nil {
			return nil, "", err
		}
		return raw, "application/json", nil
	case ast.BodyXML:
		r, err := eval.EvalTemplate(ctx, b.Text)
		if err != nil {
			return nil, "", err
		}
		addSecret(redactor, r)
		return []byte(r.Text), "application/xml", nil
	case ast.BodyMultilineString:
		r, err := eval.EvalTemplate(ctx, b.Text)
		if err != nil {
			return nil, "", err
		}
		addSecret(redactor, r)
		ct := ""
		switch b.Language {
		case "json":
			ct = "application/json"
		case "xml":
			ct = "application/xml"
		case "graphql":
			ct = "application/json"
		}
		return []byte(r.Text), ct, nil
	case ast.BodyOnelineString:
		r, err := eval.EvalTemplate(ctx, b.Text)
		if err != nil {
			return nil, "", err
		}
		addSecret(redactor, r)
		return []byte(r.Text), "", nil
	case ast.BodyBase64:
		data, err := base64.StdEncoding.DecodeString(strings.Map(stripWhitespace, b.Base64))
		if err != nil {
			return nil, "", &eval.RuntimeError{Kind: eval.ErrExpressionInvalidType, Name: "base64", Span: b.Sp}
		}
		return data, "", nil
	case ast.BodyHex:
		data, err := hex.DecodeString(strings.Map(stripWhitespace, b.Hex))
		if err != nil {
			return nil, "", &eval.RuntimeError{Kind: eval.ErrExpressionInvalidType, Name: "hex", Span: b.Sp}
		}
		return data, "", nil
	case ast.BodyFile:
		name, err := eval.EvalTemplate(ctx, b.FileName)
		if err != nil {
			return nil, "", err
		}
		data, err := readContextFile(fileRoot, name.Text, b.Sp)
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	}
	return nil, "", nil
}

func stripWhitespace(r rune) rune {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return -1
	}
	return r
}

// evalJSONValueJSON evaluates jv, substituting every template and
// placeholder, and re-serializes it with sonic (DOMAIN STACK: JSON
// re-serialization, grounded on SPEC_FULL.md's sonic binding). Object key
// order is preserved by hand-writing the object/array framing rather than
// round-tripping through a Go map.
func evalJSONValueJSON(ctx *eval.Context, jv ast.JSONValue, redactor *redact.Redactor) ([]byte, error) {
	var buf []byte
	var err error
	buf, err = appendJSONValue(ctx, buf, jv, redactor)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func appendJSONValue(ctx *eval.Context, buf []byte, jv ast.JSONValue, redactor *redact.Redactor) ([]byte, error) {
	if jv.IsPlaceholder {
		v, secret, err := eval.EvalExpressionValue(ctx, jv.Placeholder)
		if err != nil {
			return nil, err
		}
		if s, ok := v.String(); ok {
			addSecretRaw(redactor, s, secret)
		}
		return appendValueJSON(buf, v, jv.Sp)
	}
	switch {
	case jv.IsNull:
		return append(buf, "null"...), nil
	case jv.HasBool:
		if jv.Bool {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case jv.Number != "":
		return append(buf, jv.Number...), nil
	case jv.HasStr:
		r, err := eval.EvalTemplate(ctx, jv.Str)
		if err != nil {
			return nil, err
		}
		addSecret(redactor, r)
		enc, err := sonic.Marshal(r.Text)
		if err != nil {
			return nil, err
		}
		return append(buf, enc...), nil
	case jv.HasList:
		buf = append(buf, '[')
		for i, el := range jv.List {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendJSONValue(ctx, buf, el, redactor)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case jv.HasObj:
		buf = append(buf, '{')
		for i, entry := range jv.Object {
			if i > 0 {
				buf = append(buf, ',')
			}
			key, err := eval.EvalTemplate(ctx, entry.Key)
			if err != nil {
				return nil, err
			}
			encKey, err := sonic.Marshal(key.Text)
			if err != nil {
				return nil, err
			}
			buf = append(buf, encKey...)
			buf = append(buf, ':')
			buf, err = appendJSONValue(ctx, buf, entry.Value, redactor)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	}
	return append(buf, "null"...), nil
}

func appendValueJSON(buf []byte, v value.Value, sp ast.Span) ([]byte, error) {
	switch v.Kind() {
	case value.KindNull:
		return append(buf, "null"...), nil
	case value.KindBool:
		b, _ := v.Bool()
		if b {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case value.KindInteger:
		n, _ := v.Integer()
		return append(buf, strconv.FormatInt(n, 10)...), nil
	case value.KindBigInteger:
		s, _ := v.BigInteger()
		return append(buf, s...), nil
	case value.KindFloat:
		f, _ := v.Float()
		return append(buf, strconv.FormatFloat(f, 'g', -1, 64)...), nil
	case value.KindString:
		s, _ := v.String()
		enc, err := sonic.Marshal(s)
		if err != nil {
			return nil, err
		}
		return append(buf, enc...), nil
	case value.KindList:
		list, _ := v.List()
		buf = append(buf, '[')
		for i, item := range list {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendValueJSON(buf, item, sp)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case value.KindObject:
		entries, _ := v.Object()
		buf = append(buf, '{')
		for i, e := range entries {
			if i > 0 {
				buf = append(buf, ',')
			}
			encKey, err := sonic.Marshal(e.Name)
			if err != nil {
				return nil, err
			}
			buf = append(buf, encKey...)
			buf = append(buf, ':')
			buf, err = appendValueJSON(buf, e.Value, sp)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, &eval.RuntimeError{Kind: eval.ErrExpressionInvalidType, Name: fmt.Sprintf("cannot place a %s in a JSON body", v.TypeName()), Span: sp}
	}
}
