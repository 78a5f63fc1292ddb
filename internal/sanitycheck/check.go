// Package sanitycheck implements the two user-extensible abstractions
// of the orchestration engine — Check and Context — along with their
// lifecycle drivers. Go has no runtime subclassing, so each
// abstraction is split into a struct the framework owns (name,
// status, dependencies, actions) and a small interface the author
// implements for behavior. Optional lifecycle hooks are detected with
// a type assertion against a one-method interface instead of the
// "compare unbound methods" trick the original uses.
package sanitycheck

import (
	"context"
	"fmt"
	"reflect"

	"github.com/sanitycheck/engine/internal/apperror"
	"github.com/sanitycheck/engine/internal/status"
	"github.com/sanitycheck/engine/internal/validation"
)

// CheckImpl is the one hook every Check author must implement.
type CheckImpl interface {
	Check(ctx context.Context) error
}

// SetupHook, FixHook and TeardownHook are optional. Their presence is
// detected with a type assertion against CheckImpl.
type (
	SetupHook    interface{ Setup(ctx context.Context) error }
	FixHook      interface{ Fix(ctx context.Context) error }
	TeardownHook interface{ Teardown(ctx context.Context) error }
)

const dependenciesFailedMessage = "Dependencies failed or haven't passed"

// Check is the framework-owned wrapper around a CheckImpl: identity,
// bounded metadata, mutable status, dependency graph, shared-context
// binding, and registered actions.
type Check struct {
	impl CheckImpl

	name        string
	description string
	priority    int
	status      *status.CheckStatus

	dependencyNames []string
	dependencies    []*Check

	sharedContext *ContextRef

	actions []*Action

	// OnProgress, when set, is pumped once after every status mutation
	// this check performs — the single process_events-equivalent the
	// spec calls for. Nil is a valid no-op default.
	OnProgress func()
}

// CheckOption configures a Check at construction time.
type CheckOption func(*Check) error

// NewCheck builds a Check around impl. Name defaults to impl's
// concrete type name when WithName is not supplied.
func NewCheck(impl CheckImpl, opts ...CheckOption) (*Check, error) {
	c := &Check{
		impl:   impl,
		name:   typeName(impl),
		status: status.NewCheckStatus(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// WithName sets an explicit name, validated against the length bound.
func WithName(n string) CheckOption {
	return func(c *Check) error {
		if err := validation.Name(n); err != nil {
			return err
		}
		c.name = n
		return nil
	}
}

// WithDescription sets the description, validated against the length bound.
func WithDescription(d string) CheckOption {
	return func(c *Check) error {
		if err := validation.Description(d); err != nil {
			return err
		}
		c.description = d
		return nil
	}
}

// WithPriority sets the priority, validated against [0,100].
func WithPriority(p int) CheckOption {
	return func(c *Check) error {
		if err := validation.Priority(p); err != nil {
			return err
		}
		c.priority = p
		return nil
	}
}

// WithDependencyNames declares dependency names to be resolved later
// by the loader.
func WithDependencyNames(names []string) CheckOption {
	return func(c *Check) error {
		c.dependencyNames = append([]string(nil), names...)
		return nil
	}
}

// WithSharedContextName declares an unresolved shared-context name to
// be resolved later by the loader.
func WithSharedContextName(name string) CheckOption {
	return func(c *Check) error {
		if name == "" {
			return nil
		}
		ref := UnresolvedContextRef(name)
		c.sharedContext = &ref
		return nil
	}
}

// WithActions registers actions at construction time.
func WithActions(actions []*Action) CheckOption {
	return func(c *Check) error {
		c.actions = append(c.actions, actions...)
		return nil
	}
}

// --- accessors ---

func (c *Check) Name() string               { return c.name }
func (c *Check) Description() string        { return c.description }
func (c *Check) Priority() int              { return c.priority }
func (c *Check) Status() *status.CheckStatus { return c.status }
func (c *Check) DependencyNames() []string  { return c.dependencyNames }
func (c *Check) Dependencies() []*Check     { return c.dependencies }
func (c *Check) Actions() []*Action         { return c.actions }

// SharedContext returns the current context reference, or nil if this
// check has none.
func (c *Check) SharedContext() *ContextRef { return c.sharedContext }

// SetSharedContext resolves (or replaces) the shared-context reference.
func (c *Check) SetSharedContext(ref ContextRef) { c.sharedContext = &ref }

// SetStatus replaces the status object outright. Rejects a nil value.
func (c *Check) SetStatus(s *status.CheckStatus) error {
	if s == nil {
		return apperror.Implementation("status must be a CheckStatus, not nil")
	}
	c.status = s
	return nil
}

// HasDependencies reports whether this check declares any dependency,
// by name or by resolved instance.
func (c *Check) HasDependencies() bool {
	return len(c.dependencyNames) > 0 || len(c.dependencies) > 0
}

// AddDependency appends a resolved dependency. Rejects a nil check.
func (c *Check) AddDependency(dep *Check) error {
	if dep == nil {
		return apperror.Implementation("dependency must be a *Check, not nil")
	}
	c.dependencies = append(c.dependencies, dep)
	return nil
}

// RegisterActions appends actions the UI may trigger.
func (c *Check) RegisterActions(actions []*Action) {
	c.actions = append(c.actions, actions...)
}

// --- hook introspection ---

func (c *Check) HasSetup() bool {
	_, ok := c.impl.(SetupHook)
	return ok
}

func (c *Check) HasFix() bool {
	_, ok := c.impl.(FixHook)
	return ok
}

func (c *Check) HasTeardown() bool {
	_, ok := c.impl.(TeardownHook)
	return ok
}

// --- lifecycle ---

// guard runs fn, converting a returned error or a recovered panic into
// a failed status with the diagnostic appended. It never lets fn's
// failure escape. onSuccess, if set, runs when fn returns nil.
func (c *Check) guard(stage string, fn func() error, onSuccess func()) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(fmt.Sprintf("panic running %s.%s(): %v", c.name, stage, r))
		}
	}()
	if err := fn(); err != nil {
		c.fail(fmt.Sprintf("unhandled error running %s.%s(): %v", c.name, stage, err))
		return
	}
	if onSuccess != nil {
		onSuccess()
	}
}

func (c *Check) fail(msg string) {
	_ = c.status.SetCode(status.Failed)
	c.status.AddMessage(msg)
	c.pump()
}

func (c *Check) pump() {
	if c.OnProgress != nil {
		c.OnProgress()
	}
}

// RunSetup runs _setup under the exception guard, if implemented.
func (c *Check) RunSetup(ctx context.Context) *status.CheckStatus {
	if hook, ok := c.impl.(SetupHook); ok {
		c.guard("setup", func() error { return hook.Setup(ctx) }, nil)
	}
	return c.status
}

// RunCheck runs the dependency gate then Check under the exception
// guard. The gate fires even when called directly (independent of
// RunFullCheck's runDependenciesFirst flag). A nil return transitions
// the check to Passed; a non-nil return or panic, to Failed.
func (c *Check) RunCheck(ctx context.Context) *status.CheckStatus {
	if !c.ValidateDependenciesStatus() {
		_ = c.status.SetCode(status.Cancelled)
		c.status.AddMessage(fmt.Sprintf("%s for %s.", dependenciesFailedMessage, c.name))
		c.pump()
		return c.status
	}
	c.guard("check", func() error { return c.impl.Check(ctx) }, func() {
		_ = c.status.SetCode(status.Passed)
		c.pump()
	})
	return c.status
}

// RunFix runs _fix under the exception guard, if implemented.
func (c *Check) RunFix(ctx context.Context) *status.CheckStatus {
	if hook, ok := c.impl.(FixHook); ok {
		c.guard("fix", func() error { return hook.Fix(ctx) }, nil)
	}
	return c.status
}

// RunTeardown runs _teardown under the exception guard, if implemented.
func (c *Check) RunTeardown(ctx context.Context) *status.CheckStatus {
	if hook, ok := c.impl.(TeardownHook); ok {
		c.guard("teardown", func() error { return hook.Teardown(ctx) }, nil)
	}
	return c.status
}

// ValidateDependenciesStatus reports whether every resolved dependency
// has passed.
func (c *Check) ValidateDependenciesStatus() bool {
	for _, dep := range c.dependencies {
		if dep.Status().Code() != status.Passed {
			return false
		}
	}
	return true
}

// RunDependencies runs full-check on every dependency that hasn't
// passed yet, cancelling this check if any of them still doesn't pass.
func (c *Check) RunDependencies(ctx context.Context) *status.CheckStatus {
	for _, dep := range c.dependencies {
		if dep.Status().Code() != status.Passed {
			depStatus := dep.RunFullCheck(ctx, true, true)
			if depStatus.Code() != status.Passed {
				_ = c.status.SetCode(status.Cancelled)
				c.status.AddMessage(fmt.Sprintf("%s for %s.", dependenciesFailedMessage, c.name))
				c.pump()
				return c.status
			}
		}
	}
	return c.status
}

// RunFullCheck runs the complete lifecycle: optional dependency
// resolution, context setup (if this check started it), setup → check
// → teardown, one fix attempt on failure, then context teardown if
// this check started the context.
func (c *Check) RunFullCheck(ctx context.Context, tryFix, runDependenciesFirst bool) *status.CheckStatus {
	if runDependenciesFirst && len(c.dependencies) > 0 {
		if s := c.RunDependencies(ctx); s.Code() == status.Cancelled {
			return s
		}
	}

	var contextStartedHere bool
	sharedCtx, hasSharedCtx := c.sharedContext.Resolved()
	if hasSharedCtx && sharedCtx.Status().Code() != status.Ready {
		sharedCtx.RunSetup(ctx)
		contextStartedHere = true
	}

	c.RunSetup(ctx)
	c.RunCheck(ctx)
	c.RunTeardown(ctx)

	if c.status.Code() != status.Passed && tryFix && c.HasFix() {
		c.RunFix(ctx)
		c.RunSetup(ctx)
		c.RunCheck(ctx)
		c.RunTeardown(ctx)
	}

	if contextStartedHere {
		sharedCtx.RunTeardown(ctx)
	}

	return c.status
}

func (c *Check) String() string {
	return fmt.Sprintf("%s: %s", c.name, c.status.String())
}
