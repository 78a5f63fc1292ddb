package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type countingJob struct {
	name   string
	mu     sync.Mutex
	runs   int
	passed bool
	err    error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return j.passed, j.err
}

func (j *countingJob) Runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestScheduler_OnResult_ReportsPassed(t *testing.T) {
	job := &countingJob{name: "ok", passed: true}
	s := NewScheduler(testLogger())

	results := make(chan Result, 8)
	s.OnResult = func(r Result) { results <- r }
	s.AddJob(job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	defer func() {
		cancel()
		s.Stop()
	}()

	select {
	case r := <-results:
		assert.Equal(t, "ok", r.Job)
		assert.True(t, r.Passed)
		assert.NoError(t, r.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled result")
	}
}

func TestScheduler_OnResult_ReportsFailureAndError(t *testing.T) {
	job := &countingJob{name: "broken", passed: false, err: errors.New("load failed")}
	s := NewScheduler(testLogger())

	results := make(chan Result, 8)
	s.OnResult = func(r Result) { results <- r }
	s.AddJob(job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	defer func() {
		cancel()
		s.Stop()
	}()

	select {
	case r := <-results:
		assert.Equal(t, "broken", r.Job)
		assert.False(t, r.Passed)
		require.Error(t, r.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled result")
	}
}

func TestScheduler_RunsRepeatedlyUntilStopped(t *testing.T) {
	job := &countingJob{name: "repeat", passed: true}
	s := NewScheduler(testLogger())
	s.AddJob(job, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(40 * time.Millisecond)
	cancel()
	s.Stop()

	assert.GreaterOrEqual(t, job.Runs(), 2)
}
