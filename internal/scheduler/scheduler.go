// Package scheduler provides a simple ticker-based scheduler for
// periodic jobs — used by the engine's optional watch mode to re-run
// a repo's checks on an interval instead of exiting after one pass.
// Unlike a generic job runner, a scheduled run here has a domain
// outcome beyond "errored or not" — a repo can load and run cleanly
// while still reporting failing checks — so Job.Run reports that
// outcome directly and Scheduler carries it to an optional observer
// instead of collapsing it to a log line.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job represents a scheduled task. Passed reports the task's own
// domain verdict (e.g. "every check in this repo passed") and is only
// meaningful when err is nil; a job that fails to even run reports
// passed=false alongside the error.
type Job interface {
	Name() string
	Run(ctx context.Context) (passed bool, err error)
}

// Result is what a scheduled run produced, handed to the scheduler's
// OnResult observer after every tick.
type Result struct {
	Job    string
	Passed bool
	Err    error
}

// Scheduler runs jobs on a periodic basis.
type Scheduler struct {
	logger *slog.Logger
	jobs   []scheduledJob

	// OnResult, if set, is called after every job run with that run's
	// outcome — the hook watch mode uses to track whether the repo it
	// is watching is currently healthy, not just whether the last tick
	// errored.
	OnResult func(Result)
}

type scheduledJob struct {
	job      Job
	interval time.Duration
	ticker   *time.Ticker
	stop     chan struct{}
}

// NewScheduler creates a new scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		jobs:   make([]scheduledJob, 0),
	}
}

// AddJob adds a job to run at the specified interval.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.jobs = append(s.jobs, scheduledJob{
		job:      job,
		interval: interval,
		stop:     make(chan struct{}),
	})
}

// Start begins running all scheduled jobs.
func (s *Scheduler) Start(ctx context.Context) {
	for i := range s.jobs {
		sj := &s.jobs[i]
		sj.ticker = time.NewTicker(sj.interval)

		go func(sj *scheduledJob) {
			s.logger.Info("starting scheduled job",
				"job", sj.job.Name(),
				"interval", sj.interval)

			for {
				select {
				case <-sj.ticker.C:
					s.logger.Debug("running scheduled job", "job", sj.job.Name())
					passed, err := sj.job.Run(ctx)
					switch {
					case err != nil:
						s.logger.Error("scheduled job errored",
							"job", sj.job.Name(),
							"error", err)
					case !passed:
						s.logger.Warn("scheduled job ran but did not pass",
							"job", sj.job.Name())
					default:
						s.logger.Info("scheduled job passed", "job", sj.job.Name())
					}
					if s.OnResult != nil {
						s.OnResult(Result{Job: sj.job.Name(), Passed: passed, Err: err})
					}
				case <-sj.stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}(sj)
	}
}

// Stop halts all scheduled jobs.
func (s *Scheduler) Stop() {
	for i := range s.jobs {
		if s.jobs[i].ticker != nil {
			s.jobs[i].ticker.Stop()
		}
		close(s.jobs[i].stop)
	}
	s.logger.Info("scheduler stopped")
}
