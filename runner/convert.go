package runner

import (
	"net/http"
	"time"

	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/transport"
)

// httpCookiesFrom narrows the transport layer's raw *http.Cookie slice
// into the eval package's CookieView mirror inputs.
func httpCookiesFrom(cookies []*http.Cookie) []httpCookie {
	out := make([]httpCookie, len(cookies))
	for i, c := range cookies {
		out[i] = httpCookie{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Secure: c.Secure, HTTPOnly: c.HttpOnly,
		}
	}
	return out
}

// callViewFrom narrows an httpspec.Response into the eval package's
// CallView mirror, keeping eval import-free of httpspec (see eval.Context's
// doc comment for why).
func callViewFrom(resp httpspec.Response, cookies []httpCookie) *eval.CallView {
	headers := make([]eval.HeaderKV, len(resp.Headers))
	for i, h := range resp.Headers {
		headers[i] = eval.HeaderKV{Name: h.Name, Value: h.Value}
	}
	cv := &eval.CallView{
		Version:       resp.Version,
		Status:        resp.Status,
		Headers:       headers,
		Body:          resp.Body,
		BodyIsText:    isLikelyText(resp.Body),
		Duration:      resp.Duration,
		FinalURL:      resp.FinalURL,
		RedirectCount: resp.RedirectCount,
		RemoteAddr:    resp.RemoteAddr,
	}
	if resp.Certificate != nil {
		cv.Certificate = &eval.CertView{
			Subject:      resp.Certificate.Subject,
			Issuer:       resp.Certificate.Issuer,
			StartDate:    resp.Certificate.StartDate,
			ExpireDate:   resp.Certificate.ExpireDate,
			SerialNumber: resp.Certificate.SerialNumber,
		}
	}
	for _, c := range cookies {
		cv.Cookies = append(cv.Cookies, eval.CookieView{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return cv
}

// httpCookie is the narrow cookie shape runner threads from net/http's
// *http.Cookie into the eval CallView.
type httpCookie struct {
	Name, Value, Domain, Path string
	Secure, HTTPOnly          bool
}

// isLikelyText reports whether body looks like printable text, used to
// set CallView.BodyIsText for the Body query's String/Bytes collapse
// (spec.md §4.13).
func isLikelyText(body []byte) bool {
	for _, b := range body {
		if b == 0 {
			return false
		}
	}
	return true
}

// callOptionsFrom maps the resolved httpspec.Options for an entry into the
// transport.CallOptions the HTTP client consumes (spec.md §6).
func callOptionsFrom(opts httpspec.Options) transport.CallOptions {
	co := transport.CallOptions{
		ConnectTimeout: msToDuration(opts.ConnectTimeoutMS),
		Timeout:        msToDuration(opts.MaxTimeMS),
		FollowLocation: opts.FollowLocation,
		MaxRedirects:   opts.MaxRedirects,
		Insecure:       opts.Insecure,
		Proxy:          opts.Proxy,
		UnixSocket:     opts.UnixSocket,
		Compressed:     opts.Compressed,
		ClientCert:     opts.Cert,
		ClientKey:      opts.Key,
		CABundle:       opts.CACert,
		ReuseConnection: !opts.VersionPinned,
		MaxSendRateBps:  opts.LimitRateBytesPerS,
		MaxRecvRateBps:  opts.LimitRateBytesPerS,
		Netrc: transport.NetrcConfig{
			Enabled:  opts.Netrc,
			File:     opts.NetrcFile,
			Optional: opts.NetrcOptional,
		},
	}
	switch opts.HTTPVersion {
	case httpspec.HTTPVersion1_0:
		co.HTTPVersion = "1.0"
	case httpspec.HTTPVersion1_1:
		co.HTTPVersion = "1.1"
	case httpspec.HTTPVersion2:
		co.HTTPVersion = "2"
	case httpspec.HTTPVersion3:
		co.HTTPVersion = "3"
	}
	for _, r := range opts.ResolveOverrides {
		co.Resolve = append(co.Resolve, transport.ResolveOverride{Host: r.Host, Port: r.Port, Addr: r.Addr})
	}
	for _, r := range opts.ConnectTo {
		co.ConnectTo = append(co.ConnectTo, transport.ResolveOverride{Host: r.Host, Port: r.Port, Addr: r.Addr})
	}
	if opts.AWSSigV4.Enabled {
		co.AWSSigV4 = &transport.AWSSigV4Options{Region: opts.AWSSigV4.Region, Service: opts.AWSSigV4.Service}
	}
	if opts.User != "" {
		co.HasBasicAuth = true
		co.BasicAuthUser, co.BasicAuthPass = splitUserPass(opts.User)
	}
	return co
}

func splitUserPass(s string) (user, pass string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
