package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sanitycheck/engine/internal/apperror"
	"github.com/sanitycheck/engine/internal/registry"
	"github.com/sanitycheck/engine/internal/sanitycheck"
)

// Engine owns the two registries the spec describes as module-level
// singletons in the source. Wrapping them in a value that's passed
// explicitly to every loader and runner call avoids process-wide
// state (spec §9 design note).
type Engine struct {
	Checks   *registry.Registry[*sanitycheck.Check]
	Contexts *registry.Registry[*sanitycheck.Context]
	Log      *slog.Logger
}

// NewEngine returns an Engine with empty registries.
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		Checks:   registry.New[*sanitycheck.Check](),
		Contexts: registry.New[*sanitycheck.Context](),
		Log:      log,
	}
}

// ClearRegistry empties both registries, for the idempotent-load
// testable property (spec §8.4).
func (e *Engine) ClearRegistry() {
	e.Checks.Clear()
	e.Contexts.Clear()
}

// LoadRepo discovers every Check/Context in repoPath, validates and
// constructs them, binds shared-context and dependency references,
// and returns this repo's checks and contexts.
func (e *Engine) LoadRepo(repoPath string) ([]*sanitycheck.Check, []*sanitycheck.Context, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, nil, apperror.Repof("repo path %q: %v", repoPath, err)
	}
	if !info.IsDir() {
		return nil, nil, apperror.Repof("repo path %q is not a directory", repoPath)
	}

	files, err := discoverFiles(repoPath)
	if err != nil {
		return nil, nil, apperror.Repof("walking repo %q: %v", repoPath, err)
	}

	for _, file := range files {
		regs, err := loadFile(file)
		if err != nil {
			e.Log.Warn("skipping file that failed to load", "file", file, "error", err)
			continue
		}
		e.registerFile(repoPath, file, regs)
	}

	if err := e.bindSharedContexts(repoPath); err != nil {
		return nil, nil, err
	}
	if err := e.bindDependencies(repoPath); err != nil {
		return nil, nil, err
	}

	return e.Checks.GetByRepo(repoPath), e.Contexts.GetByRepo(repoPath), nil
}

func (e *Engine) registerFile(repoPath, file string, regs []Registration) {
	seen := make(map[string]bool, len(regs))
	var checks []*sanitycheck.Check
	var contexts []*sanitycheck.Context

	for _, reg := range regs {
		if reg.Name != "" && seen[reg.Name] {
			continue // re-exported/duplicate within the same module
		}
		switch reg.Kind {
		case KindContext:
			ctx, err := buildContext(reg)
			if err != nil {
				e.Log.Warn("skipping invalid context", "file", file, "name", reg.Name, "error", err)
				continue
			}
			contexts = append(contexts, ctx)
		case KindCheck:
			chk, err := buildCheck(reg)
			if err != nil {
				e.Log.Warn("skipping invalid check", "file", file, "name", reg.Name, "error", err)
				continue
			}
			checks = append(checks, chk)
		}
		if reg.Name != "" {
			seen[reg.Name] = true
		}
	}

	module := moduleID(repoPath, file)
	if len(contexts) > 0 {
		e.Contexts.Extend(contexts, module, repoPath)
	}
	if len(checks) > 0 {
		e.Checks.Extend(checks, module, repoPath)
	}
}

func buildContext(reg Registration) (*sanitycheck.Context, error) {
	impl, err := reg.ContextImpl()
	if err != nil {
		return nil, err
	}
	var opts []sanitycheck.ContextOption
	if reg.Name != "" {
		opts = append(opts, sanitycheck.WithContextName(reg.Name))
	}
	if reg.Description != "" {
		opts = append(opts, sanitycheck.WithContextDescription(reg.Description))
	}
	return sanitycheck.NewContext(impl, opts...)
}

func buildCheck(reg Registration) (*sanitycheck.Check, error) {
	impl, err := reg.CheckImpl()
	if err != nil {
		return nil, err
	}
	var opts []sanitycheck.CheckOption
	if reg.Name != "" {
		opts = append(opts, sanitycheck.WithName(reg.Name))
	}
	if reg.Description != "" {
		opts = append(opts, sanitycheck.WithDescription(reg.Description))
	}
	if reg.Priority != 0 {
		opts = append(opts, sanitycheck.WithPriority(reg.Priority))
	}
	if len(reg.DependencyNames) > 0 {
		opts = append(opts, sanitycheck.WithDependencyNames(reg.DependencyNames))
	}
	if reg.SharedContext != "" {
		opts = append(opts, sanitycheck.WithSharedContextName(reg.SharedContext))
	}
	return sanitycheck.NewCheck(impl, opts...)
}

// bindSharedContexts resolves every unresolved shared_context name
// among this repo's checks. A check whose name doesn't resolve to a
// live Context is an orphan and is removed from the registry entirely
// (spec §4.5 step 4, §8.5).
func (e *Engine) bindSharedContexts(repoPath string) error {
	for _, check := range e.Checks.GetByRepo(repoPath) {
		ref := check.SharedContext()
		if ref == nil || ref.IsResolved() {
			continue
		}
		ctx, found := e.Contexts.GetByName(ref.Name(), "")
		if !found {
			e.Log.Warn("check references unknown shared context; removing from registry",
				"check", check.Name(), "context", ref.Name())
			e.Checks.Remove(check, repoPath)
			continue
		}
		if err := ref.Resolve(ctx); err != nil {
			return err
		}
		if err := ctx.AddCheck(check); err != nil {
			return err
		}
	}
	return nil
}

// bindDependencies resolves every declared dependency name against
// the check registry, then rejects the repo if the resulting graph
// contains a cycle (spec §9 open question: the source recurses
// unboundedly on a cycle; this implementation detects and rejects it
// at bind time instead).
func (e *Engine) bindDependencies(repoPath string) error {
	for _, check := range e.Checks.GetByRepo(repoPath) {
		for _, name := range check.DependencyNames() {
			dep, found := e.Checks.GetByName(name, "")
			if !found {
				e.Log.Warn("dependency name did not resolve to a known check", "check", check.Name(), "dependency", name)
				continue
			}
			if err := check.AddDependency(dep); err != nil {
				return err
			}
		}
	}
	return detectCycle(e.Checks.GetByRepo(repoPath))
}

func detectCycle(checks []*sanitycheck.Check) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*sanitycheck.Check]int, len(checks))

	var visit func(c *sanitycheck.Check, path []string) error
	visit = func(c *sanitycheck.Check, path []string) error {
		color[c] = gray
		for _, dep := range c.Dependencies() {
			switch color[dep] {
			case gray:
				return apperror.Implementationf("dependency cycle detected: %s -> %s", strings.Join(path, " -> "), dep.Name())
			case white:
				if err := visit(dep, append(path, dep.Name())); err != nil {
					return err
				}
			}
		}
		color[c] = black
		return nil
	}

	for _, c := range checks {
		if color[c] == white {
			if err := visit(c, []string{c.Name()}); err != nil {
				return err
			}
		}
	}
	return nil
}

// discoverFiles recursively enumerates every authoring-surface file
// under repoPath, excluding directories and any file whose basename
// starts with "__".
func discoverFiles(repoPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, "__") {
			return nil
		}
		if isPluginFile(path) || isScriptFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func loadFile(path string) ([]Registration, error) {
	switch {
	case isPluginFile(path):
		return loadPluginFile(path)
	case isScriptFile(path):
		return loadScriptFile(path)
	default:
		return nil, fmt.Errorf("unsupported authoring file: %s", path)
	}
}

func moduleID(repoPath, file string) string {
	rel, err := filepath.Rel(repoPath, file)
	if err != nil {
		return file
	}
	return rel
}
