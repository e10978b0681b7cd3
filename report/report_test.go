package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/cookiejar"
	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/parser"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/runner"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/transport"
)

func runOneFile(t *testing.T, script, path string) runner.FileResult {
	t.Helper()
	file, err := parser.ParseScript(path, []byte(script))
	require.NoError(t, err)

	fr := &runner.FileRunner{Client: transport.NewHTTPClient(), Jar: cookiejar.New(), Redactor: redact.New(nil)}
	return fr.Run(context.Background(), path, file, scope.New(), runner.FileRunnerConfig{GlobalOptions: httpspec.DefaultOptions()})
}

func TestJSONReportIsStableAndParseable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1}`))
	}))
	defer ts.Close()

	result := runOneFile(t, "GET "+ts.URL+"\nHTTP 200\n", "a.rq")
	data, err := JSON([]runner.FileResult{result}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":"a.rq"`)
	assert.Contains(t, string(data), `"status":"Pass"`)
}

func TestJUnitReportHasOneTestsuitePerFileAndOneTestcasePerEntry(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	result := runOneFile(t, "GET "+ts.URL+"\nHTTP 200\n", "b.rq")
	data, err := JUnit([]runner.FileResult{result}, nil)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `<testsuite`)
	assert.Contains(t, out, `name="b.rq"`)
	assert.Contains(t, out, `<failure`)
}

func TestTAPReportMarksFailingEntryNotOk(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	result := runOneFile(t, "GET "+ts.URL+"\nHTTP 200\n", "c.rq")
	out := string(TAP([]runner.FileResult{result}, nil))

	assert.Contains(t, out, "1..1")
	assert.Contains(t, out, "not ok 1")
	assert.Contains(t, out, "status: Fail")
}

func TestHTMLReportWritesIndexAndPerFilePages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	result := runOneFile(t, "GET "+ts.URL+"\nHTTP 200\n", "d.rq")

	dir := t.TempDir()
	require.NoError(t, HTML(dir, []runner.FileResult{result}, nil))

	_, err := os.Stat(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "report-0.html"))
	require.NoError(t, err)
}
