// Command sanitycheck loads one or more check repositories and runs
// their checks and shared contexts, reporting progress and exiting
// non-zero if any check did not pass.
//
// Optional environment variables:
//
//	SANITYCHECK_CONFIG                  - path to a TOML config file
//	SANITYCHECK_REPOS                   - comma-separated repo paths
//	SANITYCHECK_TRY_FIX                 - "true"/"1" to attempt fixes
//	SANITYCHECK_PROGRESS                - "noop", "counting", or "tui"
//	SANITYCHECK_LOG_LEVEL               - debug, info, warn, error
//	SANITYCHECK_WATCH                   - "true"/"1" to re-run on an interval
//	SANITYCHECK_WATCH_INTERVAL_SECONDS  - interval between watch runs
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sanitycheck/engine/internal/config"
	"github.com/sanitycheck/engine/internal/loader"
	"github.com/sanitycheck/engine/internal/progress"
	"github.com/sanitycheck/engine/internal/runner"
	"github.com/sanitycheck/engine/internal/scheduler"
	"github.com/sanitycheck/engine/internal/status"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sanitycheck: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	checkName := flag.String("check", "", "run only this named check instead of the whole repo")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sink, stop := buildSink(cfg.Progress.Backend)
	if stop != nil {
		defer stop()
	}

	engine := loader.NewEngine(logger)
	r := runner.New(engine, sink, logger)

	if *checkName != "" {
		return runSingleCheck(ctx, r, cfg, *checkName)
	}

	if cfg.Watch.Enabled {
		return runWatch(ctx, r, cfg, logger)
	}

	return runOnce(ctx, r, cfg, logger)
}

func runOnce(ctx context.Context, r *runner.Runner, cfg *config.Config, logger *slog.Logger) error {
	failed := false
	for _, repo := range cfg.Repos.Paths {
		checks, contexts, err := r.RunChecksFromRepo(ctx, repo, cfg.Run.TryFix)
		if err != nil {
			logger.Error("failed to load repo", "repo", repo, "error", err)
			failed = true
			continue
		}
		if !runner.AllPassed(checks, contexts) {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more checks did not pass")
	}
	return nil
}

func runSingleCheck(ctx context.Context, r *runner.Runner, cfg *config.Config, name string) error {
	if len(cfg.Repos.Paths) == 0 {
		return fmt.Errorf("no repo paths configured")
	}
	st, ok := r.RunCheck(ctx, name, cfg.Repos.Paths[0], cfg.Run.TryFix)
	if !ok {
		return fmt.Errorf("check %q did not run", name)
	}
	if st.Code() != status.Passed {
		return fmt.Errorf("check %q did not pass: %s", name, st.Code())
	}
	return nil
}

// runWatch re-runs every configured repo on an interval until the
// process is signaled to stop. Each tick's domain verdict — not just
// whether it errored — is tracked so the last line logged before exit
// reflects whether the watched repos were actually healthy.
func runWatch(ctx context.Context, r *runner.Runner, cfg *config.Config, logger *slog.Logger) error {
	sched := scheduler.NewScheduler(logger)
	healthy := make(map[string]bool, len(cfg.Repos.Paths))
	sched.OnResult = func(res scheduler.Result) {
		healthy[res.Job] = res.Err == nil && res.Passed
	}

	interval := time.Duration(cfg.Watch.IntervalSeconds) * time.Second
	for _, repo := range cfg.Repos.Paths {
		job := &runner.WatchJob{Runner: r, RepoPath: repo, TryFix: cfg.Run.TryFix}
		healthy[job.Name()] = false
		sched.AddJob(job, interval)
	}

	sched.Start(ctx)
	<-ctx.Done()
	sched.Stop()

	for name, ok := range healthy {
		if !ok {
			return fmt.Errorf("watch stopped with %q unhealthy as of its last run", name)
		}
	}
	return nil
}

func buildSink(backend string) (progress.Sink, func()) {
	switch backend {
	case "tui":
		sink := progress.NewTeaSink()
		return sink, sink.Stop
	case "noop":
		return progress.Noop{}, nil
	default:
		counting := progress.NewCounting()
		counting.OnAdd = func(current, maximum int) {
			fmt.Fprintf(os.Stderr, "\rprogress: %d/%d", current, maximum)
			if current == maximum {
				fmt.Fprintln(os.Stderr)
			}
		}
		return counting, nil
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
