package eval

import (
	"crypto/md5"
	"crypto/sha256"
	"net"
	"regexp"
	"strings"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

// EvalQuery executes q against ctx.Call and ctx.Vars (spec.md §4.13).
func EvalQuery(ctx *Context, q ast.Query) (value.Value, error) {
	switch q.Kind {
	case ast.QueryVariable:
		name, err := evalStringArg(ctx, q.Arg)
		if err != nil {
			return value.Null, err
		}
		v, ok := ctx.Vars.Get(name)
		if !ok {
			return value.Null, nil
		}
		return v.Value, nil
	}

	if ctx.Call == nil {
		return value.Null, errf(ErrQueryInvalidInput, q.Sp, "no response available")
	}
	c := ctx.Call

	switch q.Kind {
	case ast.QueryStatus:
		return value.Integer(int64(c.Status)), nil
	case ast.QueryVersion:
		return value.String(c.Version), nil
	case ast.QueryURL:
		return value.String(c.FinalURL), nil
	case ast.QueryDuration:
		return value.Integer(c.Duration.Milliseconds()), nil
	case ast.QueryIP:
		if c.RemoteAddr == "" {
			return value.Null, nil
		}
		return value.String(stripPort(c.RemoteAddr)), nil
	case ast.QueryRedirects:
		return value.Integer(int64(c.RedirectCount)), nil
	case ast.QueryBody:
		if c.BodyIsText {
			return value.String(string(c.Body)), nil
		}
		return value.Bytes(c.Body), nil
	case ast.QueryBytes:
		return value.Bytes(c.Body), nil
	case ast.QuerySha256:
		sum := sha256.Sum256(c.Body)
		return value.Bytes(sum[:]), nil
	case ast.QueryMd5:
		sum := md5.Sum(c.Body)
		return value.Bytes(sum[:]), nil
	case ast.QueryHeader:
		name, err := evalStringArg(ctx, q.Arg)
		if err != nil {
			return value.Null, err
		}
		vals := headerValues(c.Headers, name)
		switch len(vals) {
		case 0:
			return value.Null, nil
		case 1:
			return value.String(vals[0]), nil
		default:
			out := make([]value.Value, len(vals))
			for i, v := range vals {
				out[i] = value.String(v)
			}
			return value.List(out), nil
		}
	case ast.QueryCookie:
		name, err := evalStringArg(ctx, q.CookieName)
		if err != nil {
			return value.Null, err
		}
		return evalCookieQuery(c, name, q), nil
	case ast.QueryRegex:
		pattern, err := evalStringArg(ctx, q.Arg)
		if err != nil {
			return value.Null, err
		}
		body := string(c.Body)
		return evalRegexQuery(body, pattern, q.Sp)
	case ast.QueryJSONPath:
		expr, err := evalStringArg(ctx, q.Arg)
		if err != nil {
			return value.Null, err
		}
		return evalJSONPathOnText(string(c.Body), expr, q.Sp)
	case ast.QueryXPath:
		expr, err := evalStringArg(ctx, q.Arg)
		if err != nil {
			return value.Null, err
		}
		return evalXPathOnDoc(c.Body, expr, q.Sp)
	case ast.QueryCertificate:
		if c.Certificate == nil {
			return value.Null, nil
		}
		switch q.CertAttr {
		case ast.CertSubject:
			return value.String(c.Certificate.Subject), nil
		case ast.CertIssuer:
			return value.String(c.Certificate.Issuer), nil
		case ast.CertStartDate:
			return value.DateValue(value.NewDate(c.Certificate.StartDate)), nil
		case ast.CertExpireDate:
			return value.DateValue(value.NewDate(c.Certificate.ExpireDate)), nil
		case ast.CertSerialNumber:
			return value.String(c.Certificate.SerialNumber), nil
		}
	}
	return value.Null, errf(ErrQueryInvalidInput, q.Sp, "unsupported query")
}

// stripPort drops the :port suffix net.Conn.RemoteAddr().String() always
// carries, so the Ip query returns a bare address (spec.md §4.13).
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func headerValues(headers []HeaderKV, name string) []string {
	var out []string
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

func evalCookieQuery(c *CallView, name string, q ast.Query) value.Value {
	var found *CookieView
	for i := range c.Cookies {
		if c.Cookies[i].Name == name {
			found = &c.Cookies[i]
			break
		}
	}
	if found == nil {
		return value.Null
	}
	if !q.HasAttr {
		return value.String(found.Value)
	}
	switch q.CookieAttr {
	case ast.CookieValue:
		return value.String(found.Value)
	case ast.CookieExpires:
		if !found.HasExpires {
			return value.Null
		}
		return value.DateValue(value.NewDate(found.Expires))
	case ast.CookieMaxAge:
		if !found.HasMaxAge {
			return value.Null
		}
		return value.Integer(int64(found.MaxAge))
	case ast.CookieDomain:
		return value.String(found.Domain)
	case ast.CookiePath:
		return value.String(found.Path)
	case ast.CookieSecure:
		return value.Bool(found.Secure)
	case ast.CookieHTTPOnly:
		return value.Bool(found.HTTPOnly)
	case ast.CookieSameSite:
		return value.String(found.SameSite)
	}
	return value.Null
}

func evalRegexQuery(body, pattern string, sp ast.Span) (value.Value, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return value.Null, errf(ErrInvalidRegex, sp, err.Error())
	}
	m := re.FindStringSubmatch(body)
	if m == nil {
		return value.Null, nil
	}
	if len(m) > 1 {
		return value.String(m[1]), nil
	}
	return value.String(m[0]), nil
}
