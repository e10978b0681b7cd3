package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vdobler/rq/runner"
)

func TestThrottleAllowsFirstUpdateThenThrottles(t *testing.T) {
	th := NewThrottle(50*time.Millisecond, 0)
	assert.True(t, th.Allowed())
	th.Update()
	assert.False(t, th.Allowed())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, th.Allowed())
}

func TestThrottleResetReallowsImmediately(t *testing.T) {
	th := NewThrottle(time.Hour, 0)
	th.Update()
	assert.False(t, th.Allowed())
	th.Reset()
	assert.True(t, th.Allowed())
}

func TestTextListenerReportsCompletion(t *testing.T) {
	var lines []string
	l := NewTextListener(func(s string) { lines = append(lines, s) })

	l.Completed(runner.JobResult{Index: 0, Result: runner.FileResult{Path: "a.rq", Success: true}})

	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Success a.rq")
}

func TestNullListenerDoesNothing(t *testing.T) {
	var l NullListener
	l.Update(nil, 0, 0)
	l.Completed(runner.JobResult{})
}
