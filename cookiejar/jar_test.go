package cookiejar

import (
	"bytes"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarSetAndGetCookiesRoundTrip(t *testing.T) {
	jar := New()
	u, _ := url.Parse("https://example.com/api/login")
	jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc123", Path: "/api"}})

	got := jar.Cookies(u)
	require.Len(t, got, 1)
	assert.Equal(t, "session", got[0].Name)
	assert.Equal(t, "abc123", got[0].Value)
}

func TestJarCookieNotSentToUnmatchedPath(t *testing.T) {
	jar := New()
	setURL, _ := url.Parse("https://example.com/api/login")
	jar.SetCookies(setURL, []*http.Cookie{{Name: "session", Value: "abc123", Path: "/api"}})

	other, _ := url.Parse("https://example.com/other")
	assert.Empty(t, jar.Cookies(other))
}

func TestJarSecureCookieNotSentOverPlainHTTP(t *testing.T) {
	jar := New()
	setURL, _ := url.Parse("https://example.com/")
	jar.SetCookies(setURL, []*http.Cookie{{Name: "s", Value: "v", Secure: true, Path: "/"}})

	plain, _ := url.Parse("http://example.com/")
	assert.Empty(t, jar.Cookies(plain))

	secure, _ := url.Parse("https://example.com/")
	assert.Len(t, jar.Cookies(secure), 1)
}

func TestJarExpiredCookieNotReturned(t *testing.T) {
	jar := New()
	u, _ := url.Parse("https://example.com/")
	jar.SetCookies(u, []*http.Cookie{{Name: "old", Value: "v", Expires: time.Now().Add(-time.Hour)}})

	assert.Empty(t, jar.Cookies(u))
}

func TestJarDomainCookieMatchesSubdomain(t *testing.T) {
	jar := New()
	setURL, _ := url.Parse("https://example.com/")
	jar.SetCookies(setURL, []*http.Cookie{{Name: "s", Value: "v", Domain: ".example.com", Path: "/"}})

	sub, _ := url.Parse("https://api.example.com/")
	assert.Len(t, jar.Cookies(sub), 1)
}

func TestJarNetscapeRoundTrip(t *testing.T) {
	jar := New()
	jar.Add(Snapshot{Domain: "example.com", Path: "/", Name: "a", Value: "1"})
	jar.Add(Snapshot{Domain: "example.com", Path: "/", Name: "b", Value: "2", HttpOnly: true, Secure: true, Expires: time.Unix(2000000000, 0)})

	var buf bytes.Buffer
	require.NoError(t, jar.WriteNetscape(&buf))

	loaded := New()
	require.NoError(t, loaded.ReadNetscape(bytes.NewReader(buf.Bytes())))

	snaps := loaded.All()
	byName := map[string]Snapshot{}
	for _, s := range snaps {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "a")
	require.Contains(t, byName, "b")
	assert.Equal(t, "1", byName["a"].Value)
	assert.True(t, byName["b"].HttpOnly)
	assert.True(t, byName["b"].Secure)
}

func TestReadNetscapeRejectsMalformedLine(t *testing.T) {
	jar := New()
	err := jar.ReadNetscape(bytes.NewReader([]byte("not\tenough\tfields\n")))
	assert.Error(t, err)
}
