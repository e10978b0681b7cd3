// Package transport implements the abstract HTTP client interface of
// spec.md §6 (execute(RequestSpec, CallOptions) -> CallOutcome) on top of
// net/http, generalizing the teacher's (vdobler-ht) shared, tunable
// *http.Transport (ht/ht.go lines 43-60) into the fuller CallOptions shape
// spec.md §6 demands.
package transport

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent mirrors the teacher's own default, kept as the engine's
// default so scripts that don't set one still send something identifiable.
var DefaultUserAgent = "rq/1.0 (+https://github.com/vdobler/rq)"

// sharedDialer is the package-level dialer every per-call *http.Transport
// dials through unless a connect timeout replaces it, following the
// teacher's single tunable package-level Transport (ht/ht.go).
var sharedDialer = &net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
}

func newHTTPTransport(opts CallOptions) *http.Transport {
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           sharedDialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: opts.Insecure},
		DisableCompression:    true, // readBody decodes Content-Encoding itself (spec.md §9)
	}
	if opts.ConnectTimeout > 0 {
		dialer := &net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: 30 * time.Second}
		t.DialContext = dialer.DialContext
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err == nil {
			t.Proxy = http.ProxyURL(proxyURL)
		}
	}
	if !opts.ReuseConnection {
		t.DisableKeepAlives = true
	}
	return t
}
