package eval

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

// EvalFilterChain applies filters in order to v, per the semantics table
// of spec.md §4.11.
func EvalFilterChain(ctx *Context, v value.Value, filters []ast.Filter) (value.Value, error) {
	cur := v
	for _, f := range filters {
		next, err := evalFilter(ctx, cur, f)
		if err != nil {
			return value.Null, err
		}
		cur = next
	}
	return cur, nil
}

func evalFilter(ctx *Context, v value.Value, f ast.Filter) (value.Value, error) {
	switch f.Kind {
	case ast.FilterCount:
		n, ok := v.Len()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.Integer(int64(n)), nil

	case ast.FilterNth:
		list, ok := v.List()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		i := f.Index
		if i < 0 || i >= int64(len(list)) {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "index out of bounds")
		}
		return list[i], nil

	case ast.FilterFirst:
		list, ok := v.List()
		if !ok || len(list) == 0 {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "empty list")
		}
		return list[0], nil

	case ast.FilterLast:
		list, ok := v.List()
		if !ok || len(list) == 0 {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "empty list")
		}
		return list[len(list)-1], nil

	case ast.FilterSplit:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		sep, err := evalStringArg(ctx, f.Arg)
		if err != nil {
			return value.Null, err
		}
		parts := strings.Split(s, sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return value.List(out), nil

	case ast.FilterReplace:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		oldStr, err := evalStringArg(ctx, f.Old)
		if err != nil {
			return value.Null, err
		}
		newStr, err := evalStringArg(ctx, f.New)
		if err != nil {
			return value.Null, err
		}
		re, err := regexp.Compile(oldStr)
		if err != nil {
			return value.Null, errf(ErrInvalidRegex, f.Sp, err.Error())
		}
		return value.String(re.ReplaceAllString(s, newStr)), nil

	case ast.FilterReplaceRegex:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		pattern, err := evalStringArg(ctx, f.Old)
		if err != nil {
			return value.Null, err
		}
		newStr, err := evalStringArg(ctx, f.New)
		if err != nil {
			return value.Null, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return value.Null, errf(ErrInvalidRegex, f.Sp, err.Error())
		}
		return value.String(re.ReplaceAllString(s, newStr)), nil

	case ast.FilterRegex:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		pattern, err := evalStringArg(ctx, f.Arg)
		if err != nil {
			return value.Null, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return value.Null, errf(ErrInvalidRegex, f.Sp, err.Error())
		}
		m := re.FindStringSubmatch(s)
		if len(m) < 2 {
			if m == nil {
				return value.Null, errf(ErrFilterInvalidInput, f.Sp, "no match")
			}
			return value.Null, errf(ErrFilterRegexNoCapture, f.Sp, "")
		}
		return value.String(m[1]), nil

	case ast.FilterToInt:
		return filterToInt(f, v)

	case ast.FilterToFloat:
		return filterToFloat(f, v)

	case ast.FilterToDate:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		format, err := evalStringArg(ctx, f.FormatArg)
		if err != nil {
			return value.Null, err
		}
		d, err := value.ParseDate(s, format)
		if err != nil {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "date")
		}
		return value.DateValue(d), nil

	case ast.FilterFormat:
		d, ok := v.Date()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		format, err := evalStringArg(ctx, f.FormatArg)
		if err != nil {
			return value.Null, err
		}
		return value.String(d.Format(format)), nil

	case ast.FilterDaysAfterNow, ast.FilterDaysBeforeNow:
		d, ok := v.Date()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		now := time.Now().UTC()
		var diffHours float64
		if f.Kind == ast.FilterDaysAfterNow {
			diffHours = d.Time().Sub(now).Hours()
		} else {
			diffHours = now.Sub(d.Time()).Hours()
		}
		days := int64(math.Floor(diffHours / 24))
		return value.Integer(days), nil

	case ast.FilterDecode:
		b, ok := v.Bytes()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		enc, err := evalStringArg(ctx, f.EncodingArg)
		if err != nil {
			return value.Null, err
		}
		s, err := decodeBytes(b, enc)
		if err != nil {
			return value.Null, errf(ErrFilterDecode, f.Sp, err.Error())
		}
		return value.String(s), nil

	case ast.FilterUrlEncode:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(urlEncodeNonUnreserved(s)), nil

	case ast.FilterUrlDecode:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		dec, err := url.QueryUnescape(s)
		if err != nil {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "percent-encoding")
		}
		return value.String(dec), nil

	case ast.FilterHtmlEscape:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(html.EscapeString(s)), nil

	case ast.FilterHtmlUnescape:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(html.UnescapeString(s)), nil

	case ast.FilterBase64Encode:
		b, sok := bytesOrString(v)
		if !sok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(base64.StdEncoding.EncodeToString(b)), nil

	case ast.FilterBase64Decode:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "base64")
		}
		return value.Bytes(b), nil

	case ast.FilterBase64UrlSafeEncode:
		b, sok := bytesOrString(v)
		if !sok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(base64.RawURLEncoding.EncodeToString(b)), nil

	case ast.FilterBase64UrlSafeDecode:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		b, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "base64url")
		}
		return value.Bytes(b), nil

	case ast.FilterToHex:
		b, ok := v.Bytes()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(hex.EncodeToString(b)), nil

	case ast.FilterToString:
		s, ok := stringifyForTemplate(v)
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.String(s), nil

	case ast.FilterUtf8Encode:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		return value.Bytes([]byte(s)), nil

	case ast.FilterUtf8Decode:
		b, ok := v.Bytes()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		if !utf8.Valid(b) {
			return value.Null, errf(ErrFilterDecode, f.Sp, "invalid utf-8")
		}
		return value.String(string(b)), nil

	case ast.FilterJsonPath:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		expr, err := evalStringArg(ctx, f.Arg)
		if err != nil {
			return value.Null, err
		}
		return evalJSONPathOnText(s, expr, f.Sp)

	case ast.FilterXPath:
		var doc []byte
		switch {
		case v.Kind() == value.KindBytes:
			doc, _ = v.Bytes()
		case v.Kind() == value.KindString:
			s, _ := v.String()
			doc = []byte(s)
		default:
			return value.Null, typeErr(f.Sp, v)
		}
		expr, err := evalStringArg(ctx, f.Arg)
		if err != nil {
			return value.Null, err
		}
		return evalXPathOnDoc(doc, expr, f.Sp)

	case ast.FilterLocation:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		u, err := url.Parse(s)
		if err != nil {
			return value.Null, errf(ErrInvalidUrl, f.Sp, s)
		}
		return value.String(u.String()), nil

	case ast.FilterUrlQueryParam:
		s, ok := v.String()
		if !ok {
			return value.Null, typeErr(f.Sp, v)
		}
		name, err := evalStringArg(ctx, f.Arg)
		if err != nil {
			return value.Null, err
		}
		u, err := url.Parse(s)
		if err != nil {
			return value.Null, errf(ErrInvalidUrl, f.Sp, s)
		}
		qv := u.Query().Get(name)
		return value.String(qv), nil
	}
	return value.Null, errf(ErrFilterInvalidInput, f.Sp, "unknown filter")
}

func typeErr(sp ast.Span, v value.Value) error {
	return errf(ErrFilterInvalidInput, sp, v.TypeName())
}

func bytesOrString(v value.Value) ([]byte, bool) {
	if b, ok := v.Bytes(); ok {
		return b, true
	}
	if s, ok := v.String(); ok {
		return []byte(s), true
	}
	return nil, false
}

func evalStringArg(ctx *Context, t ast.Template) (string, error) {
	r, err := EvalTemplate(ctx, t)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

func filterToInt(f ast.Filter, v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindInteger:
		i, _ := v.Integer()
		return value.Integer(i), nil
	case value.KindFloat:
		fv, _ := v.Float()
		return value.Integer(int64(fv)), nil
	case value.KindString:
		s, _ := v.String()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "not a decimal integer")
		}
		return value.Integer(i), nil
	default:
		return value.Null, typeErr(f.Sp, v)
	}
}

func filterToFloat(f ast.Filter, v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindInteger:
		i, _ := v.Integer()
		return value.Float(float64(i)), nil
	case value.KindFloat:
		fv, _ := v.Float()
		return value.Float(fv), nil
	case value.KindString:
		s, _ := v.String()
		fv, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Null, errf(ErrFilterInvalidInput, f.Sp, "not a float")
		}
		return value.Float(fv), nil
	default:
		return value.Null, typeErr(f.Sp, v)
	}
}

func urlEncodeNonUnreserved(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

func decodeBytes(b []byte, enc string) (string, error) {
	var e encoding.Encoding
	switch strings.ToLower(enc) {
	case "utf-8", "utf8":
		if !utf8.Valid(b) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(b), nil
	case "iso-8859-1", "latin1":
		e = charmap.ISO8859_1
	case "us-ascii", "ascii":
		for _, c := range b {
			if c > 127 {
				return "", fmt.Errorf("byte %#x outside US-ASCII range", c)
			}
		}
		return string(b), nil
	case "shift_jis", "shiftjis", "sjis":
		e = japanese.ShiftJIS
	case "gbk", "gb2312":
		e = simplifiedchinese.GBK
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
