package eval

import (
	"time"

	"github.com/vdobler/rq/scope"
)

// Context bundles everything template, expression, query, filter, and
// predicate evaluation needs: the live variable set and a view of the
// most recent HTTP call. Call is nil before the first response of an
// entry is available (e.g. while evaluating [Options]).
//
// CallView is a narrow mirror of httpspec.Response rather than that type
// itself, so this package never needs to import httpspec: the options
// resolver in httpspec imports eval to evaluate option templates, and a
// two-way import would cycle.
type Context struct {
	Vars *scope.Set
	Call *CallView
}

// HeaderKV is one header name/value as seen by the query evaluator.
type HeaderKV struct {
	Name  string
	Value string
}

// CallView is the subset of an HTTP call the query evaluator (C15)
// operates on.
type CallView struct {
	Version       string
	Status        int
	Headers       []HeaderKV
	Cookies       []CookieView
	Body          []byte
	BodyIsText    bool
	Certificate   *CertView
	Duration      time.Duration
	FinalURL      string
	RedirectCount int
	// RemoteAddr is the peer address of the connection the last call was
	// served over, mirroring httpspec.Response.RemoteAddr (the Ip query,
	// spec.md §4.13).
	RemoteAddr string
}

// CookieView is one cookie attached to the response, as needed by the
// Cookie query.
type CookieView struct {
	Name     string
	Value    string
	Expires  time.Time
	HasExpires bool
	MaxAge   int
	HasMaxAge bool
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// CertView is the subset of an X.509 peer certificate the Certificate
// query exposes.
type CertView struct {
	Subject      string
	Issuer       string
	StartDate    time.Time
	ExpireDate   time.Time
	SerialNumber string
}
