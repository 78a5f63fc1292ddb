// Package runner implements the engine's two execution entry points:
// running every check belonging to a repo, and running a single named
// check. Only the first drives the shared progress sink described in
// spec §4.7/§4.8; RunCheck reports no progress.
package runner

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sanitycheck/engine/internal/loader"
	"github.com/sanitycheck/engine/internal/progress"
	"github.com/sanitycheck/engine/internal/sanitycheck"
	"github.com/sanitycheck/engine/internal/status"
)

// Runner orchestrates execution order across contexts, dependencies,
// and standalone checks, pushing progress to Sink as it goes.
type Runner struct {
	Engine *loader.Engine
	Sink   progress.Sink
	Log    *slog.Logger
}

// New builds a Runner. A nil sink defaults to progress.Noop.
func New(engine *loader.Engine, sink progress.Sink, log *slog.Logger) *Runner {
	if sink == nil {
		sink = progress.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{Engine: engine, Sink: sink, Log: log}
}

// RunChecksFromRepo loads repoPath then delegates to RunChecks. Every
// call is tagged with a fresh run ID so a single pass's log lines can
// be correlated even when multiple repos run concurrently.
func (r *Runner) RunChecksFromRepo(ctx context.Context, repoPath string, tryFix bool) ([]*sanitycheck.Check, []*sanitycheck.Context, error) {
	runID := uuid.NewString()
	log := r.Log.With("run_id", runID, "repo", repoPath)

	checks, contexts, err := r.Engine.LoadRepo(repoPath)
	if err != nil {
		log.Error("failed to load repo", "error", err)
		return nil, nil, err
	}
	log.Info("loaded repo", "checks", len(checks), "contexts", len(contexts))
	r.RunChecks(ctx, checks, contexts, tryFix)
	return checks, contexts, nil
}

// RunChecks executes contexts first, then standalone checks without
// dependencies, then standalone checks with dependencies, matching
// the three-phase progress-counter algorithm in spec §4.7.
func (r *Runner) RunChecks(ctx context.Context, checks []*sanitycheck.Check, contexts []*sanitycheck.Context, tryFix bool) {
	alreadyRun := make(map[*sanitycheck.Check]bool)

	r.Sink.Reset(len(contexts))
	for _, c := range contexts {
		c.RunFullContext(ctx)
		for _, member := range c.Checks() {
			alreadyRun[member] = true
		}
		r.Sink.Add()
	}

	r.Sink.Reset(len(checks))
	var noDeps, withDeps []*sanitycheck.Check
	for _, c := range checks {
		if alreadyRun[c] {
			continue
		}
		if c.HasDependencies() {
			withDeps = append(withDeps, c)
		} else {
			noDeps = append(noDeps, c)
		}
	}

	for _, c := range noDeps {
		c.RunFullCheck(ctx, tryFix, false)
		r.Sink.Add()
	}
	for _, c := range withDeps {
		c.RunFullCheck(ctx, tryFix, true)
		r.Sink.Add()
	}
}

// RunCheck loads repoPath, resolves the named check, and runs its full
// lifecycle. If the check carries an unresolved shared context and
// binding it against the just-loaded registry fails, the run is
// skipped and RunCheck returns (nil, false) after logging a warning —
// matching the source's "warn and return nothing" fallback.
func (r *Runner) RunCheck(ctx context.Context, name, repoPath string, tryFix bool) (*status.CheckStatus, bool) {
	checks, _, err := r.Engine.LoadRepo(repoPath)
	if err != nil {
		r.Log.Warn("run_check: failed to load repo", "repo", repoPath, "error", err)
		return nil, false
	}

	var target *sanitycheck.Check
	for _, c := range checks {
		if c.Name() == name {
			target = c
			break
		}
	}
	if target == nil {
		r.Log.Warn("run_check: no such check", "name", name, "repo", repoPath)
		return nil, false
	}

	if ref := target.SharedContext(); ref != nil && !ref.IsResolved() {
		r.Log.Warn("run_check: check's shared context did not resolve during load", "check", name, "context", ref.Name())
		return nil, false
	}

	s := target.RunFullCheck(ctx, tryFix, true)
	return s, true
}

// AllPassed reports whether every check passed and every context
// reached Finished — the engine's single definition of "this run was
// healthy", shared by the one-shot CLI path and watch mode alike.
func AllPassed(checks []*sanitycheck.Check, contexts []*sanitycheck.Context) bool {
	for _, c := range checks {
		if c.Status().Code() != status.Passed {
			return false
		}
	}
	for _, c := range contexts {
		if c.Status().Code() != status.Finished {
			return false
		}
	}
	return true
}
