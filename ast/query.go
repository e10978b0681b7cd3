package ast

// QueryKind discriminates the query union of spec.md §3.
type QueryKind int

const (
	QueryStatus QueryKind = iota
	QueryURL
	QueryHeader
	QueryCookie
	QueryBody
	QueryXPath
	QueryJSONPath
	QueryRegex
	QueryVariable
	QueryDuration
	QueryBytes
	QuerySha256
	QueryMd5
	QueryCertificate
	QueryIP
	QueryRedirects
	QueryVersion
)

// CookieAttr enumerates the bracketed cookie-path attributes of spec.md §4.5.
type CookieAttr int

const (
	CookieValue CookieAttr = iota
	CookieExpires
	CookieMaxAge
	CookieDomain
	CookiePath
	CookieSecure
	CookieHTTPOnly
	CookieSameSite
)

// CertificateAttr enumerates certificate query attributes (spec.md §4.5).
type CertificateAttr int

const (
	CertSubject CertificateAttr = iota
	CertIssuer
	CertStartDate
	CertExpireDate
	CertSerialNumber
)

// Query is a single extraction expression, as produced by the query parser
// (C5) and consumed by the query evaluator (C15).
type Query struct {
	Kind QueryKind

	// Header/Variable/Regex/XPath/JSONPath carry their argument as a
	// template so `header "{{name}}"` style indirection is possible.
	Arg Template

	// CookieName/CookieAttrSet are used only for QueryCookie.
	CookieName   Template
	CookieAttr   CookieAttr
	HasAttr      bool
	CertAttr     CertificateAttr

	Sp Span
}

func (q Query) Span() Span { return q.Sp }
