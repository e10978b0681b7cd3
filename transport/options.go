package transport

import "time"

// CallOptions carries every per-call tunable spec.md §6 lists, resolved
// from httpspec.Options by the runner before a request is executed.
type CallOptions struct {
	Timeout         time.Duration
	ConnectTimeout  time.Duration
	FollowLocation  bool
	MaxRedirects    int
	Insecure        bool
	HTTPVersion     string // "", "1.0", "1.1", "2", "3"
	Proxy           string
	UnixSocket      string
	Netrc           NetrcConfig
	Compressed      bool
	Resolve         []ResolveOverride
	ConnectTo       []ResolveOverride
	ClientCert      string
	ClientKey       string
	CABundle        string
	MaxFileSize     int64
	MaxSendRateBps  int64
	MaxRecvRateBps  int64
	ReuseConnection bool
	AWSSigV4        *AWSSigV4Options
	BasicAuthUser   string
	BasicAuthPass   string
	HasBasicAuth    bool
}

// NetrcConfig mirrors the `netrc`/`netrc-file`/`netrc-optional` option
// trio (spec.md §4.8).
type NetrcConfig struct {
	Enabled  bool
	File     string
	Optional bool
}

// ResolveOverride is one `resolve`/`connect-to` HOST:PORT:ADDR triple.
type ResolveOverride struct {
	Host string
	Port string
	Addr string
}

// AWSSigV4Options carries the region/service the transport needs to sign
// a request with AWS Signature V4 (SPEC_FULL.md Supplemented features
// #1); credentials are resolved from the process environment at sign
// time, never stored here.
type AWSSigV4Options struct {
	Region  string
	Service string
}
