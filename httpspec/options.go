package httpspec

import (
	"strconv"
	"strings"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/value"
)

// HTTPVersion is the requested protocol version for a Call (spec.md
// §4.15).
type HTTPVersion int

const (
	HTTPVersionAny HTTPVersion = iota
	HTTPVersion1_0
	HTTPVersion1_1
	HTTPVersion2
	HTTPVersion3
)

// AWSSigV4 carries the opaque region/service pair of the `aws-sigv4`
// option (SPEC_FULL.md Supplemented features #1); credentials themselves
// are resolved from the environment by the transport at call time.
type AWSSigV4 struct {
	Enabled bool
	Region  string
	Service string
}

// Resolve carries a `resolve HOST:PORT:ADDR` override.
type Resolve struct {
	Host string
	Port string
	Addr string
}

// Options is the effective, fully-resolved option set for one entry
// (spec.md §4.15): a defensive copy of the file's global options with
// each `[Options]` entry of the request applied in parse order.
type Options struct {
	HTTPVersion        HTTPVersion
	VersionPinned      bool // an explicit http1.0/1.1/2/3 was set; marks the connection non-reusable
	Insecure           bool
	FollowLocation     bool
	LocationTrusted    bool
	MaxRedirects       int
	ConnectTimeoutMS   int64
	MaxTimeMS          int64
	DelayMS            int64
	Retry              int64 // -1 infinite, 0 none, n finite
	RetryIntervalMS    int64
	Repeat             int64 // -1 infinite, 0 == Skip, n finite
	Skip               bool
	Verbose            bool
	VeryVerbose        bool
	Output             string
	HasOutput          bool
	Compressed         bool
	PathAsIs           bool
	Proxy              string
	UnixSocket         string
	Netrc              bool
	NetrcFile          string
	NetrcOptional      bool
	IPv4Only           bool
	IPv6Only           bool
	LimitRateBytesPerS int64
	CACert             string
	Cert               string
	Key                string
	User               string
	ConnectTo          []Resolve
	ResolveOverrides   []Resolve
	AWSSigV4           AWSSigV4
}

// DefaultOptions is the baseline before any `[Options]` section is
// applied: follow redirects, up to 50, no retry, no repeat beyond the one
// run, millisecond defaults per spec.md §4.8.
func DefaultOptions() Options {
	return Options{
		HTTPVersion:    HTTPVersionAny,
		FollowLocation: true,
		MaxRedirects:   50,
		MaxTimeMS:      0, // 0 means no timeout
		Repeat:         1,
	}
}

// ResolveOptions applies the file's global options, then the entry's own
// `[Options]` sections in parse order, evaluating every value template
// against ctx (spec.md §4.15). `variable` options mutate ctx.Vars in
// place as they're applied, exactly as later sections of the same entry
// and all following entries expect to observe them.
func ResolveOptions(ctx *eval.Context, global Options, sections []ast.Section) (Options, error) {
	opts := global
	for _, sec := range sections {
		if sec.Kind != ast.SectionOptions {
			continue
		}
		for _, opt := range sec.Options {
			if err := applyOption(ctx, &opts, opt); err != nil {
				return Options{}, err
			}
		}
	}
	if opts.Repeat == 0 {
		opts.Skip = true
	}
	return opts, nil
}

func applyOption(ctx *eval.Context, opts *Options, opt ast.Option) error {
	text, err := evalOptionString(ctx, opt)
	if err != nil {
		return err
	}

	switch opt.Key {
	case "http1.0":
		setHTTPVersion(opts, text, HTTPVersion1_0, HTTPVersionAny)
	case "http1.1":
		setHTTPVersion(opts, text, HTTPVersion1_1, HTTPVersion1_0)
	case "http2":
		setHTTPVersion(opts, text, HTTPVersion2, HTTPVersion1_1)
	case "http3":
		setHTTPVersion(opts, text, HTTPVersion3, HTTPVersion2)
	case "insecure":
		opts.Insecure = parseBool(text)
	case "location":
		opts.FollowLocation = parseBool(text)
	case "location-trusted":
		opts.LocationTrusted = parseBool(text)
		if opts.LocationTrusted {
			opts.FollowLocation = true
		}
	case "max-redirs":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return optionErr(opt, "max-redirs")
		}
		opts.MaxRedirects = int(n)
	case "connect-timeout":
		opts.ConnectTimeoutMS = parseDurationMillis(text, 1)
	case "max-time":
		opts.MaxTimeMS = parseDurationMillis(text, 1000)
	case "delay":
		opts.DelayMS = parseDurationMillis(text, 1)
	case "retry":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return optionErr(opt, "retry")
		}
		opts.Retry = n
	case "retry-interval":
		opts.RetryIntervalMS = parseDurationMillis(text, 1)
	case "repeat":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return optionErr(opt, "repeat")
		}
		opts.Repeat = n
	case "skip":
		opts.Skip = parseBool(text)
	case "verbose":
		opts.Verbose = parseBool(text)
	case "very-verbose":
		opts.VeryVerbose = parseBool(text)
		if opts.VeryVerbose {
			opts.Verbose = true
		}
	case "output":
		opts.Output = text
		opts.HasOutput = true
	case "compressed":
		opts.Compressed = parseBool(text)
	case "path-as-is":
		opts.PathAsIs = parseBool(text)
	case "proxy":
		opts.Proxy = text
	case "unix-socket":
		opts.UnixSocket = text
	case "netrc":
		opts.Netrc = parseBool(text)
	case "netrc-file":
		opts.NetrcFile = text
		opts.Netrc = true
	case "netrc-optional":
		opts.NetrcOptional = parseBool(text)
	case "ipv4":
		opts.IPv4Only = parseBool(text)
	case "ipv6":
		opts.IPv6Only = parseBool(text)
	case "limit-rate":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return optionErr(opt, "limit-rate")
		}
		opts.LimitRateBytesPerS = n
	case "cacert":
		opts.CACert = text
	case "cert":
		opts.Cert = text
	case "key":
		opts.Key = text
	case "user":
		opts.User = text
	case "connect-to":
		r, err := parseResolveTriple(text)
		if err != nil {
			return optionErr(opt, "connect-to")
		}
		opts.ConnectTo = append(opts.ConnectTo, r)
	case "resolve":
		r, err := parseResolveTriple(text)
		if err != nil {
			return optionErr(opt, "resolve")
		}
		opts.ResolveOverrides = append(opts.ResolveOverrides, r)
	case "aws-sigv4":
		opts.AWSSigV4 = parseAWSSigV4(text)
	case "variable":
		name, v, secret, err := parseVariableAssignment(text)
		if err != nil {
			return optionErr(opt, "variable")
		}
		ctx.Vars.Set(name, v, secret)
	}
	return nil
}

func setHTTPVersion(opts *Options, text string, version, downgrade HTTPVersion) {
	opts.VersionPinned = true
	if parseBool(text) {
		opts.HTTPVersion = version
	} else {
		opts.HTTPVersion = downgrade
	}
}

func evalOptionString(ctx *eval.Context, opt ast.Option) (string, error) {
	r, err := eval.EvalTemplate(ctx, opt.Value)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return s != "false" && s != "0" && s != ""
}

// parseDurationMillis parses a bare integer (assumed in defaultUnitMS
// units) or an integer with a ms/s/m/h suffix (spec.md §4.8).
func parseDurationMillis(s string, defaultUnitMS int64) int64 {
	s = strings.TrimSpace(s)
	mult := defaultUnitMS
	switch {
	case strings.HasSuffix(s, "ms"):
		mult = 1
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "s"):
		mult = 1000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "m"):
		mult = 60_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "h"):
		mult = 3_600_000
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n * mult
}

func parseResolveTriple(s string) (Resolve, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Resolve{}, errBadTriple
	}
	return Resolve{Host: parts[0], Port: parts[1], Addr: parts[2]}, nil
}

func parseAWSSigV4(s string) AWSSigV4 {
	sig := AWSSigV4{Enabled: true}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) >= 1 {
		sig.Service = parts[0]
	}
	if len(parts) == 2 {
		sig.Region = parts[1]
	}
	return sig
}

func parseVariableAssignment(s string) (name string, v value.Value, secret bool, err error) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return "", value.Null, false, errBadAssignment
	}
	name = s[:idx]
	raw := s[idx+1:]
	return name, value.String(raw), false, nil
}

var errBadTriple = optionParseError{"expected HOST:PORT:ADDR"}
var errBadAssignment = optionParseError{"expected name=value"}

type optionParseError struct{ msg string }

func (e optionParseError) Error() string { return e.msg }

func optionErr(opt ast.Option, what string) error {
	return &eval.RuntimeError{Kind: eval.ErrExpressionInvalidType, Name: what, Span: opt.Sp}
}
