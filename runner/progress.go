package runner

// WorkerState is the state of one pool worker at a point in time, reported
// to a ProgressListener on every state change (spec.md §5 "the parallel
// coordinator emits progress events on each worker state change").
type WorkerState struct {
	WorkerID  int
	Idle      bool
	JobIndex  int
	Path      string
	LastEntry int
}

// ProgressListener receives progress events from RunPool's coordinator
// goroutine. The interface lives here (rather than in package progress)
// so runner never imports progress: progress already imports runner for
// WorkerState and JobResult, and the reverse import would be a cycle.
type ProgressListener interface {
	Update(workers []WorkerState, completed, total int)
	Completed(job JobResult)
}

// noopListener is the default when the caller supplies none.
type noopListener struct{}

func (noopListener) Update([]WorkerState, int, int) {}
func (noopListener) Completed(JobResult)            {}
