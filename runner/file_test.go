package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/cookiejar"
	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/parser"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/transport"
)

func TestFileRunnerStopsOnFirstFailureWithoutContinueOnError(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n\nGET " + ts.URL + "\nHTTP 200\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)
	require.Len(t, file.Entries, 2)

	fr := &FileRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := fr.Run(context.Background(), "t.rq", file, scope.New(), FileRunnerConfig{GlobalOptions: httpspec.DefaultOptions()})

	assert.False(t, result.Success)
	assert.Len(t, result.Entries, 1)
	assert.Equal(t, 1, hits)
}

func TestFileRunnerContinuesOnErrorWhenConfigured(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n\nGET " + ts.URL + "\nHTTP 200\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)

	fr := &FileRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := fr.Run(context.Background(), "t.rq", file, scope.New(), FileRunnerConfig{
		GlobalOptions:   httpspec.DefaultOptions(),
		ContinueOnError: true,
	})

	assert.False(t, result.Success)
	assert.Len(t, result.Entries, 2)
}

func TestFileRunnerVariableFlowsAcrossEntries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "abc"}`))
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n[Captures]\ntok: jsonpath \"$.token\"\n\n" +
		"GET " + ts.URL + "/{{tok}}\nHTTP 200\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)

	fr := &FileRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := fr.Run(context.Background(), "t.rq", file, scope.New(), FileRunnerConfig{GlobalOptions: httpspec.DefaultOptions()})

	require.Len(t, result.Entries, 2)
	assert.Equal(t, "/abc", result.Entries[1].Calls[0].Request.URL[len(ts.URL):])
}
