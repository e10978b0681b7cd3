package main

import (
	"time"

	"github.com/vdobler/rq/httpspec"
)

// globalOptionsFromFlags builds the baseline httpspec.Options every
// entry's own `[Options]` section is layered on top of (spec.md §4.15),
// from the CLI flags that mirror spec.md §4.8 option names 1:1.
func globalOptionsFromFlags() httpspec.Options {
	opts := httpspec.DefaultOptions()

	opts.Insecure = flagInsecure
	opts.FollowLocation = flagLocation
	opts.LocationTrusted = flagLocationTrusted
	if flagLocationTrusted {
		opts.FollowLocation = true
	}
	opts.MaxRedirects = flagMaxRedirs
	opts.ConnectTimeoutMS = durationFlagMS(flagConnectTimeout)
	opts.MaxTimeMS = durationFlagMS(flagMaxTime)
	opts.Retry = flagRetry
	opts.RetryIntervalMS = durationFlagMS(flagRetryInterval)
	opts.Repeat = flagRepeat
	opts.Verbose = flagVerbose
	opts.VeryVerbose = flagVeryVerbose
	if flagVeryVerbose {
		opts.Verbose = true
	}
	opts.Compressed = flagCompressed
	opts.Proxy = flagProxy
	opts.UnixSocket = flagUnixSocket
	opts.Netrc = flagNetrc
	opts.NetrcFile = flagNetrcFile
	if flagNetrcFile != "" {
		opts.Netrc = true
	}
	opts.NetrcOptional = flagNetrcOptional
	opts.IPv4Only = flagIPv4
	opts.IPv6Only = flagIPv6
	opts.LimitRateBytesPerS = flagLimitRate
	opts.CACert = flagCACert
	opts.Cert = flagCert
	opts.Key = flagKey
	opts.User = flagUser

	return opts
}

// durationFlagMS parses a duration flag value (e.g. "5s", "500ms") into
// milliseconds, the unit httpspec.Options carries every timing field in.
// An empty or unparseable value yields 0 ("no timeout"/"no delay"), the
// same default DefaultOptions already assumes.
func durationFlagMS(s string) int64 {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d.Milliseconds()
}

// verbosity maps --verbose/--very-verbose onto the runner's zerolog
// Verbosity gate (SPEC_FULL.md AMBIENT STACK "Logging").
func verbosity() int {
	switch {
	case flagVeryVerbose:
		return 3
	case flagVerbose:
		return 2
	default:
		return 1
	}
}

// useColor reports whether text output should be colorized, letting
// --no-color/--no-pretty override their positive counterparts.
func useColor() bool {
	return flagColor && !flagNoColor
}

func usePretty() bool {
	return flagPretty && !flagNoPretty
}
