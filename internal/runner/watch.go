package runner

import "context"

// WatchJob adapts a repeated RunChecksFromRepo call to the
// scheduler.Job interface, letting the CLI's watch mode re-run a
// repo's checks on an interval instead of exiting after one pass.
type WatchJob struct {
	Runner   *Runner
	RepoPath string
	TryFix   bool
}

func (j *WatchJob) Name() string { return "watch:" + j.RepoPath }

// Run satisfies scheduler.Job, reporting this tick's actual check
// outcome (via AllPassed) rather than just whether the repo loaded.
func (j *WatchJob) Run(ctx context.Context) (bool, error) {
	checks, contexts, err := j.Runner.RunChecksFromRepo(ctx, j.RepoPath, j.TryFix)
	if err != nil {
		return false, err
	}
	return AllPassed(checks, contexts), nil
}
