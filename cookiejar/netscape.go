package cookiejar

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// httpOnlyPrefix marks a Netscape cookie-file line as HttpOnly, per
// spec.md §4.8's documented on-disk format.
const httpOnlyPrefix = "#HttpOnly_"

// WriteNetscape serializes every cookie in the jar to the Netscape cookie
// file format: one cookie per line, seven tab-separated fields (domain,
// include-subdomain flag, path, https-only flag, expires epoch, name,
// value). Comment lines start with `#`; an HttpOnly cookie's domain field
// is prefixed with `#HttpOnly_` instead of being omitted.
func (j *Jar) WriteNetscape(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Netscape HTTP Cookie File")
	for _, s := range j.All() {
		domainField := s.Domain
		includeSubdomains := "FALSE"
		if strings.HasPrefix(domainField, ".") {
			includeSubdomains = "TRUE"
		}
		if s.HttpOnly {
			domainField = httpOnlyPrefix + domainField
		}
		var expires int64
		if !s.Expires.IsZero() {
			expires = s.Expires.Unix()
		}
		httpsOnly := "FALSE"
		if s.Secure {
			httpsOnly = "TRUE"
		}
		fields := []string{
			domainField,
			includeSubdomains,
			s.Path,
			httpsOnly,
			strconv.FormatInt(expires, 10),
			s.Name,
			s.Value,
		}
		fmt.Fprintln(bw, strings.Join(fields, "\t"))
	}
	return bw.Flush()
}

// ReadNetscape parses a Netscape cookie file into the jar, merging with any
// cookies already present (later entries for the same domain/path/name
// overwrite earlier ones).
func (j *Jar) ReadNetscape(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		httpOnly := false
		if strings.HasPrefix(trimmed, httpOnlyPrefix) {
			httpOnly = true
			trimmed = strings.TrimPrefix(trimmed, httpOnlyPrefix)
		} else if strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Split(trimmed, "\t")
		if len(fields) != 7 {
			return fmt.Errorf("cookiejar: malformed Netscape cookie line %d: want 7 tab-separated fields, got %d", lineNo, len(fields))
		}
		domain, _, path, httpsOnlyField, expiresField, name, value := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6]
		expiresEpoch, err := strconv.ParseInt(expiresField, 10, 64)
		if err != nil {
			return fmt.Errorf("cookiejar: malformed Netscape cookie line %d: bad expires field %q: %w", lineNo, expiresField, err)
		}
		var expires time.Time
		if expiresEpoch > 0 {
			expires = time.Unix(expiresEpoch, 0)
		}
		j.Add(Snapshot{
			Domain:   domain,
			Path:     path,
			Name:     name,
			Value:    value,
			Secure:   strings.EqualFold(httpsOnlyField, "TRUE"),
			HttpOnly: httpOnly,
			Expires:  expires,
		})
	}
	return scanner.Err()
}
