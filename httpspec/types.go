// Package httpspec builds runtime HTTP request specs from the AST (C16)
// and resolves entry options (C17). It defines the runtime Request/
// Response/Call types shared by the transport and runner packages.
package httpspec

import "time"

// RequestSpec is the fully-evaluated request handed to the HTTP client
// (spec.md §3). Every template has already been rendered to a plain
// string by the time a RequestSpec exists.
type RequestSpec struct {
	Method      string
	URL         string
	Headers     []HeaderField
	QueryString []KV
	Form        []KV
	Multipart   []MultipartPart
	Cookies     []KV
	Body        []byte
	// ImplicitContentType is the Content-Type the body encoding implies
	// (application/json, application/xml, etc.) used only when the
	// script did not set an explicit Content-Type header.
	ImplicitContentType string
}

// HeaderField is one rendered request header; multiple fields may share
// a Name.
type HeaderField struct {
	Name  string
	Value string
}

// KV is a rendered name/value pair (query string, form, cookie).
type KV struct {
	Name  string
	Value string
}

// MultipartPart is one rendered [MultipartFormData] field.
type MultipartPart struct {
	Name        string
	Value       string
	IsFile      bool
	FileName    string
	ContentType string
}

// Response is the runtime response produced by the transport (spec.md
// §3).
type Response struct {
	Version       string
	Status        int
	Headers       []HeaderField
	Body          []byte
	Certificate   *Certificate
	Duration      time.Duration
	FinalURL      string
	RedirectCount int
	// RemoteAddr is the peer address of the connection the final call of
	// the chain was served over (spec.md §4.13, the `ip` query), empty
	// when the transport never established a connection.
	RemoteAddr string
}

// HeaderValues performs a case-insensitive lookup, returning every value
// set under name in response order.
func (r *Response) HeaderValues(name string) []string {
	var out []string
	for _, h := range r.Headers {
		if equalFoldASCII(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Certificate is the subset of an X.509 peer certificate the certificate
// query/filters expose.
type Certificate struct {
	Subject      string
	Issuer       string
	StartDate    time.Time
	ExpireDate   time.Time
	SerialNumber string
}

// Timings holds the monotonic durations from request begin, plus the
// absolute begin/end instants (spec.md §3).
type Timings struct {
	Begin        time.Time
	End          time.Time
	NameLookup   time.Duration
	Connect      time.Duration
	AppConnect   time.Duration
	PreTransfer  time.Duration
	StartTransfer time.Duration
	Total        time.Duration
}

// Call is one HTTP round trip belonging to an entry (an entry may produce
// several Calls across redirects and retries).
type Call struct {
	Request  RequestSpec
	Response Response
	Timings  Timings
}
