package runner

import (
	"context"
	"sort"
	"sync"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/cookiejar"
	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/transport"
)

// Job is one file assigned to the work pool (spec.md §5 "Across files, the
// runner supports a work-pool mode").
type Job struct {
	Index int
	Path  string
	File  ast.File
	Vars  *scope.Set
	Cfg   FileRunnerConfig
}

// JobResult pairs a Job's index with its FileResult, so the aggregator can
// restore submission order even though completions race (spec.md §5
// "Ordering guarantees").
type JobResult struct {
	Index  int
	Result FileResult
}

// ClientFactory builds a fresh transport.Client for one worker. Workers
// never share a client, so each gets its own connection pool (spec.md §5:
// "N worker threads each own their own HTTP client").
type ClientFactory func() transport.Client

// RunPool runs jobs across n workers, each with its own HTTP client,
// cookie jar, and independent access to the (already-isolated) variable set
// on its Job. All workers share the one redactor, matching
// spec.md §5's "only shared resources are the job queue ... and the secret
// redactor"; workers only ever add secrets to it, and it is safe for
// concurrent use. Results are returned sorted by job index, regardless of
// completion order.
func RunPool(ctx context.Context, jobs []Job, n int, newClient ClientFactory, redactor *redact.Redactor) []JobResult {
	return RunPoolWithProgress(ctx, jobs, n, newClient, redactor, noopListener{})
}

// RunPoolWithProgress is RunPool with a ProgressListener fed one Update on
// every worker state change and one Completed per finished job, matching
// spec.md §5's event-driven progress model. listener runs on this
// function's own goroutine (the "single consumer thread that aggregates
// and reports"), never on a worker.
func RunPoolWithProgress(ctx context.Context, jobs []Job, n int, newClient ClientFactory, redactor *redact.Redactor, listener ProgressListener) []JobResult {
	if n <= 0 {
		n = 1
	}
	if listener == nil {
		listener = noopListener{}
	}
	jobCh := make(chan Job)
	resultCh := make(chan JobResult)
	stateCh := make(chan WorkerState)

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			jar := cookiejar.New()
			fr := &FileRunner{Client: newClient(), Jar: jar, Redactor: redactor}
			for job := range jobCh {
				stateCh <- WorkerState{WorkerID: workerID, Idle: false, JobIndex: job.Index, Path: job.Path}
				res := fr.Run(ctx, job.Path, job.File, job.Vars, job.Cfg)
				stateCh <- WorkerState{WorkerID: workerID, Idle: true}
				resultCh <- JobResult{Index: job.Index, Result: res}
			}
		}(w)
	}

	go func() {
		for _, j := range jobs {
			jobCh <- j
		}
		close(jobCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
		close(stateCh)
	}()

	workers := make([]WorkerState, n)
	for i := range workers {
		workers[i] = WorkerState{WorkerID: i, Idle: true}
	}

	var out []JobResult
	completed := 0
	resultsDone, statesDone := false, false
	for !resultsDone || !statesDone {
		select {
		case r, ok := <-resultCh:
			if !ok {
				resultsDone = true
				continue
			}
			out = append(out, r)
			completed++
			listener.Completed(r)
			listener.Update(append([]WorkerState(nil), workers...), completed, len(jobs))
		case s, ok := <-stateCh:
			if !ok {
				statesDone = true
				continue
			}
			workers[s.WorkerID] = s
			listener.Update(append([]WorkerState(nil), workers...), completed, len(jobs))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
