package main

import (
	"os"

	"github.com/vdobler/rq/cookiejar"
)

// loadCookieJar builds the jar used for the run, pre-populated from
// --cookies-input if given (spec.md §6 "Cookie jar on-disk format").
func loadCookieJar() (*cookiejar.Jar, error) {
	jar := cookiejar.New()
	if flagCookiesInput == "" {
		return jar, nil
	}
	f, err := os.Open(flagCookiesInput)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := jar.ReadNetscape(f); err != nil {
		return nil, err
	}
	return jar, nil
}

// writeCookieJar persists jar to --cookies-output, if given.
func writeCookieJar(jar *cookiejar.Jar) error {
	if flagCookiesOutput == "" {
		return nil
	}
	f, err := os.Create(flagCookiesOutput)
	if err != nil {
		return err
	}
	defer f.Close()
	return jar.WriteNetscape(f)
}
