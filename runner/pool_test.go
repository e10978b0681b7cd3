package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/httpspec"
	"github.com/vdobler/rq/parser"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/transport"
)

func TestRunPoolPreservesJobOrderAcrossWorkers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n"
	var jobs []Job
	for i := 0; i < 8; i++ {
		file, err := parser.ParseScript("t.rq", []byte(script))
		require.NoError(t, err)
		jobs = append(jobs, Job{
			Index: i,
			Path:  "file.rq",
			File:  file,
			Vars:  scope.New(),
			Cfg:   FileRunnerConfig{GlobalOptions: httpspec.DefaultOptions()},
		})
	}

	results := RunPool(context.Background(), jobs, 4, func() transport.Client {
		return transport.NewHTTPClient()
	}, redact.New(nil))

	require.Len(t, results, 8)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.Result.Success)
	}
}

type countingListener struct {
	updates, completions int
}

func (l *countingListener) Update([]WorkerState, int, int) { l.updates++ }
func (l *countingListener) Completed(JobResult)            { l.completions++ }

func TestRunPoolWithProgressNotifiesListenerOncePerJob(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	script := "GET " + ts.URL + "\nHTTP 200\n"
	var jobs []Job
	for i := 0; i < 3; i++ {
		file, err := parser.ParseScript("t.rq", []byte(script))
		require.NoError(t, err)
		jobs = append(jobs, Job{
			Index: i,
			Path:  "file.rq",
			File:  file,
			Vars:  scope.New(),
			Cfg:   FileRunnerConfig{GlobalOptions: httpspec.DefaultOptions()},
		})
	}

	l := &countingListener{}
	results := RunPoolWithProgress(context.Background(), jobs, 2, func() transport.Client {
		return transport.NewHTTPClient()
	}, redact.New(nil), l)

	require.Len(t, results, 3)
	assert.Equal(t, 3, l.completions)
	assert.GreaterOrEqual(t, l.updates, 3)
}
