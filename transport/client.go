package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/vdobler/rq/httpspec"
)

// Client is the abstract HTTP client interface the core consumes
// (spec.md §6): execute(RequestSpec, CallOptions) -> (CallOutcome,
// TransportError).
type Client interface {
	Execute(ctx context.Context, req httpspec.RequestSpec, opts CallOptions) (CallOutcome, error)
}

// CallOutcome is the result of one Execute call: the final response, the
// full redirect chain as individual Call records, cookies observed,
// timings, and certificate info (spec.md §6).
type CallOutcome struct {
	Response      httpspec.Response
	Redirects     []httpspec.Call
	Cookies       []*http.Cookie
	Timings       httpspec.Timings
	Certificate   *httpspec.Certificate
}

// HTTPClient is the net/http-backed implementation of Client, generalizing
// the teacher's prepareRequest/executeRequest pair (ht/ht.go) into the
// fuller CallOptions contract of spec.md §6.
type HTTPClient struct {
	UserAgent string
}

// NewHTTPClient builds an HTTPClient with the engine default User-Agent.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{UserAgent: DefaultUserAgent}
}

// callTrace records the curl-style sub-phase timings and the peer address
// of one HTTP round trip by hooking net/http/httptrace (spec.md §3's "call
// timings": begin/end plus name-lookup/connect/app-connect/pre-transfer/
// start-transfer durations, all measured from request begin).
type callTrace struct {
	begin         time.Time
	nameLookup    time.Duration
	connect       time.Duration
	appConnect    time.Duration
	preTransfer   time.Duration
	startTransfer time.Duration
	remoteAddr    string
}

func newCallTrace(begin time.Time) *callTrace {
	return &callTrace{begin: begin}
}

func (t *callTrace) since() time.Duration {
	return time.Since(t.begin)
}

func (t *callTrace) clientTrace() *httptrace.ClientTrace {
	var dnsStart, connectStart, tlsStart time.Time
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone: func(httptrace.DNSDoneInfo) {
			if !dnsStart.IsZero() {
				t.nameLookup = t.since()
			}
		},
		ConnectStart: func(string, string) {
			if connectStart.IsZero() {
				connectStart = time.Now()
			}
		},
		ConnectDone: func(string, string, error) {
			t.connect = t.since()
			if t.nameLookup == 0 {
				t.nameLookup = t.connect
			}
		},
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			if !tlsStart.IsZero() {
				t.appConnect = t.since()
			}
		},
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Conn != nil {
				t.remoteAddr = info.Conn.RemoteAddr().String()
			}
			if t.connect == 0 {
				// reused connection: no DNS/connect phase happened here.
				t.connect = t.since()
				t.nameLookup = t.connect
			}
			if t.appConnect == 0 {
				t.appConnect = t.connect
			}
			t.preTransfer = t.since()
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			if t.preTransfer == 0 {
				t.preTransfer = t.since()
			}
		},
		GotFirstResponseByte: func() {
			t.startTransfer = t.since()
		},
	}
}

func (c *HTTPClient) Execute(ctx context.Context, spec httpspec.RequestSpec, opts CallOptions) (CallOutcome, error) {
	begin := time.Now()
	trace := newCallTrace(begin)
	traceCtx := httptrace.WithClientTrace(ctx, trace.clientTrace())

	httpReq, err := c.buildHTTPRequest(traceCtx, spec, opts)
	if err != nil {
		return CallOutcome{}, err
	}

	httpClient := &http.Client{
		Transport: newHTTPTransport(opts),
		Timeout:   opts.Timeout,
	}

	var redirects []httpspec.Call
	if opts.FollowLocation {
		maxRedirs := opts.MaxRedirects
		if maxRedirs <= 0 {
			maxRedirs = 50
		}
		httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirs {
				return &TransportError{Kind: ErrTooManyRedirects, Detail: req.URL.String()}
			}
			redirects = append(redirects, httpspec.Call{
				Request: httpspec.RequestSpec{Method: req.Method, URL: req.URL.String()},
			})
			if opts.HasBasicAuth {
				req.SetBasicAuth(opts.BasicAuthUser, opts.BasicAuthPass)
			}
			return nil
		}
	} else {
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return CallOutcome{}, classifyError(err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp, opts)
	if err != nil {
		return CallOutcome{}, err
	}
	end := time.Now()

	timings := httpspec.Timings{
		Begin:         begin,
		End:           end,
		NameLookup:    trace.nameLookup,
		Connect:       trace.connect,
		AppConnect:    trace.appConnect,
		PreTransfer:   trace.preTransfer,
		StartTransfer: trace.startTransfer,
		Total:         end.Sub(begin),
	}

	var cert *httpspec.Certificate
	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		cert = certificateFrom(resp.TLS.PeerCertificates[0])
	}

	outResp := httpspec.Response{
		Version:       resp.Proto,
		Status:        resp.StatusCode,
		Headers:       flattenHeaders(resp.Header),
		Body:          body,
		Certificate:   cert,
		Duration:      timings.Total,
		FinalURL:      resp.Request.URL.String(),
		RedirectCount: len(redirects),
		RemoteAddr:    trace.remoteAddr,
	}

	return CallOutcome{
		Response:    outResp,
		Redirects:   redirects,
		Cookies:     resp.Cookies(),
		Timings:     timings,
		Certificate: cert,
	}, nil
}

func (c *HTTPClient) buildHTTPRequest(ctx context.Context, spec httpspec.RequestSpec, opts CallOptions) (*http.Request, error) {
	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	} else if len(spec.Multipart) > 0 {
		buf, contentType, err := encodeMultipart(spec.Multipart)
		if err != nil {
			return nil, err
		}
		body = buf
		spec.ImplicitContentType = contentType
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, body)
	if err != nil {
		return nil, classifyError(err)
	}

	for _, h := range spec.Headers {
		req.Header.Add(h.Name, h.Value)
	}
	if req.Header.Get("Content-Type") == "" && spec.ImplicitContentType != "" {
		req.Header.Set("Content-Type", spec.ImplicitContentType)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if opts.Compressed && req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	for _, kv := range spec.Cookies {
		req.AddCookie(&http.Cookie{Name: kv.Name, Value: kv.Value})
	}
	if opts.HasBasicAuth {
		req.SetBasicAuth(opts.BasicAuthUser, opts.BasicAuthPass)
	}
	if opts.AWSSigV4 != nil {
		signAWSSigV4(req, spec.Body, *opts.AWSSigV4)
	}
	return req, nil
}

func readBody(resp *http.Response, opts CallOptions) ([]byte, error) {
	var reader io.ReadCloser = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &TransportError{Kind: ErrUnsupportedContentEncoding, Detail: err.Error(), Wrapped: err}
		}
		reader = gz
	default:
		return nil, &TransportError{Kind: ErrUnsupportedContentEncoding, Detail: resp.Header.Get("Content-Encoding")}
	}

	var limit int64 = opts.MaxFileSize
	var r io.Reader = reader
	if limit > 0 {
		r = io.LimitReader(reader, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyError(err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, &TransportError{Kind: ErrAllowedResponseSizeExceeded, Detail: resp.Request.URL.String()}
	}
	return data, nil
}

func flattenHeaders(h http.Header) []httpspec.HeaderField {
	var out []httpspec.HeaderField
	for name, values := range h {
		for _, v := range values {
			out = append(out, httpspec.HeaderField{Name: name, Value: v})
		}
	}
	return out
}

func certificateFrom(cert *x509.Certificate) *httpspec.Certificate {
	return &httpspec.Certificate{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		StartDate:    cert.NotBefore,
		ExpireDate:   cert.NotAfter,
		SerialNumber: cert.SerialNumber.String(),
	}
}

func classifyError(err error) *TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &TransportError{Kind: ErrTimeout, Detail: urlErr.Error(), Wrapped: err}
		}
		var dnsErr *net.DNSError
		if errors.As(urlErr.Err, &dnsErr) {
			return &TransportError{Kind: ErrCouldNotResolveHost, Detail: dnsErr.Error(), Wrapped: err}
		}
		var certErr *tls.CertificateVerificationError
		if errors.As(urlErr.Err, &certErr) {
			return &TransportError{Kind: ErrSslCertificate, Detail: certErr.Error(), Wrapped: err}
		}
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return &TransportError{Kind: ErrFailToConnect, Detail: opErr.Error(), Wrapped: err}
		}
	}
	return &TransportError{Kind: ErrFailToConnect, Detail: err.Error(), Wrapped: err}
}
