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

func TestEntryRunnerPassesOnSuccessfulGET(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n[Captures]\nid: jsonpath \"$.id\"\n[Asserts]\njsonpath \"$.id\" equals 42\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)
	require.Len(t, file.Entries, 1)

	vars := scope.New()
	er := &EntryRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := er.Run(context.Background(), 1, file.Entries[0], vars, httpspec.DefaultOptions())

	assert.Equal(t, Pass, result.Status)
	require.Len(t, result.Calls, 1)
	assert.Equal(t, 200, result.Calls[0].Response.Status)
	for _, a := range result.Asserts {
		assert.True(t, a.Passed, a.Description+": "+a.Message)
	}

	v, ok := vars.Get("id")
	require.True(t, ok)
	n, ok := v.Value.Integer()
	require.True(t, ok)
	assert.EqualValues(t, 42, n)
}

func TestEntryRunnerFailsOnStatusMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)

	vars := scope.New()
	er := &EntryRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := er.Run(context.Background(), 1, file.Entries[0], vars, httpspec.DefaultOptions())

	assert.Equal(t, Fail, result.Status)
	require.NotEmpty(t, result.Asserts)
	assert.False(t, result.Asserts[1].Passed)
}

func TestEntryRunnerSkipsWhenRepeatZero(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\n[Options]\nrepeat: 0\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)

	vars := scope.New()
	er := &EntryRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := er.Run(context.Background(), 1, file.Entries[0], vars, httpspec.DefaultOptions())

	assert.Equal(t, Skipped, result.Status)
	assert.False(t, called)
}

func TestEntryRunnerRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\n[Options]\nretry: 5\nretry-interval: 1ms\nHTTP 200\n"
	file, err := parser.ParseScript("t.rq", []byte(script))
	require.NoError(t, err)

	vars := scope.New()
	er := &EntryRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	result := er.Run(context.Background(), 1, file.Entries[0], vars, httpspec.DefaultOptions())

	assert.Equal(t, Pass, result.Status)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, result.Tries)
}
