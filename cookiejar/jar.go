// Package cookiejar implements the cookie jar the transport and runner
// thread through a run (spec.md §6): an http.CookieJar-compatible in-memory
// store plus Netscape-format on-disk persistence (spec.md §4.8, "Cookie jar
// on-disk format"). The teacher (vdobler-ht) depends on its own
// github.com/vdobler/ht/cookiejar for this role, but that package's source
// never shipped in the retrieval pack, so this is written from scratch
// against net/http's cookie semantics, following the shape the teacher's
// ht.Test.Jar field expects (DESIGN.md has the justification entry).
package cookiejar

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// entry is one stored cookie, keyed by domain/path/name.
type entry struct {
	Name       string
	Value      string
	Domain     string
	Path       string
	Secure     bool
	HttpOnly   bool
	SameSite   string
	Expires    time.Time
	Persistent bool
}

func (e *entry) expired(now time.Time) bool {
	return e.Persistent && !e.Expires.IsZero() && now.After(e.Expires)
}

// Jar is a thread-safe in-memory cookie store implementing
// net/http.CookieJar, so it drops directly into http.Client.Jar the way the
// teacher's cookiejar.Jar does (ht/ht.go line 720).
type Jar struct {
	mu      sync.Mutex
	entries map[string]*entry // key: domain|path|name
}

// New returns an empty Jar.
func New() *Jar {
	return &Jar{entries: make(map[string]*entry)}
}

func key(domain, path, name string) string {
	return domain + "|" + path + "|" + name
}

// SetCookies implements http.CookieJar, storing cookies sent by u's host in
// a Set-Cookie response.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	host := canonicalHost(u.Host)
	for _, c := range cookies {
		domain := host
		if c.Domain != "" {
			domain = canonicalHost(c.Domain)
		}
		path := c.Path
		if path == "" {
			path = defaultPath(u.Path)
		}
		e := &entry{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
			SameSite: sameSiteString(c.SameSite),
		}
		if c.MaxAge < 0 || (c.MaxAge == 0 && !c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(j.entries, key(domain, path, c.Name))
			continue
		}
		if c.MaxAge > 0 {
			e.Persistent = true
			e.Expires = time.Now().Add(time.Duration(c.MaxAge) * time.Second)
		} else if !c.Expires.IsZero() {
			e.Persistent = true
			e.Expires = c.Expires
		}
		j.entries[key(domain, path, c.Name)] = e
	}
}

// Cookies implements http.CookieJar, returning the cookies that should be
// sent on a request to u.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	host := canonicalHost(u.Host)
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}
	var out []*http.Cookie
	for k, e := range j.entries {
		if e.expired(now) {
			delete(j.entries, k)
			continue
		}
		if !domainMatches(host, e.Domain) || !pathMatches(reqPath, e.Path) {
			continue
		}
		if e.Secure && u.Scheme != "https" {
			continue
		}
		out = append(out, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	return out
}

// All returns every non-expired cookie in the jar, used to snapshot the
// jar into a FileResult (spec.md §3, "cookies: final jar snapshot") or to
// persist it in Netscape format.
func (j *Jar) All() []Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	var out []Snapshot
	for k, e := range j.entries {
		if e.expired(now) {
			delete(j.entries, k)
			continue
		}
		out = append(out, Snapshot{
			Domain:   e.Domain,
			Path:     e.Path,
			Name:     e.Name,
			Value:    e.Value,
			Secure:   e.Secure,
			HttpOnly: e.HttpOnly,
			Expires:  e.Expires,
		})
	}
	return out
}

// Add inserts a cookie directly, bypassing the Set-Cookie response path;
// used to seed a jar loaded from a Netscape file or a `[Cookies]` section's
// jar-merge semantics (ht/ht.go's PopulateCookies is the teacher analogue).
func (j *Jar) Add(s Snapshot) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[key(s.Domain, s.Path, s.Name)] = &entry{
		Name:       s.Name,
		Value:      s.Value,
		Domain:     s.Domain,
		Path:       s.Path,
		Secure:     s.Secure,
		HttpOnly:   s.HttpOnly,
		Expires:    s.Expires,
		Persistent: !s.Expires.IsZero(),
	}
}

// Snapshot is a domain-agnostic view of one stored cookie, used for both
// in-memory result reporting and Netscape (de)serialization.
type Snapshot struct {
	Domain   string
	Path     string
	Name     string
	Value    string
	Secure   bool
	HttpOnly bool
	Expires  time.Time
}

func canonicalHost(host string) string {
	if h, _, err := splitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

func splitHostPort(hostport string) (host, port string, err error) {
	i := strings.LastIndex(hostport, ":")
	if i < 0 {
		return hostport, "", nil
	}
	return hostport[:i], hostport[i+1:], nil
}

func defaultPath(urlPath string) string {
	i := strings.LastIndex(urlPath, "/")
	if i <= 0 {
		return "/"
	}
	return urlPath[:i]
}

func domainMatches(host, cookieDomain string) bool {
	host = strings.ToLower(host)
	cookieDomain = strings.ToLower(strings.TrimPrefix(cookieDomain, "."))
	if host == cookieDomain {
		return true
	}
	return strings.HasSuffix(host, "."+cookieDomain)
}

func pathMatches(requestPath, cookiePath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if requestPath == cookiePath {
		return true
	}
	if strings.HasPrefix(requestPath, cookiePath) {
		return cookiePath[len(cookiePath)-1] == '/' || requestPath[len(cookiePath)] == '/'
	}
	return false
}

func sameSiteString(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return ""
	}
}
