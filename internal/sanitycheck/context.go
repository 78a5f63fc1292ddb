package sanitycheck

import (
	"context"
	"fmt"

	"github.com/sanitycheck/engine/internal/apperror"
	"github.com/sanitycheck/engine/internal/status"
	"github.com/sanitycheck/engine/internal/validation"
)

// ContextImpl is the one hook every Context author must implement.
// Unlike Check's optional setup, a context's whole purpose is to set
// something up for the checks bound to it, so Setup is mandatory.
type ContextImpl interface {
	Setup(ctx context.Context) error
}

// ContextTeardownHook is optional.
type ContextTeardownHook interface {
	Teardown(ctx context.Context) error
}

// Context is the framework-owned wrapper around a ContextImpl: it
// holds the checks bound to it and drives their full-check lifecycle
// after its own setup succeeds.
type Context struct {
	impl ContextImpl

	name        string
	description string
	status      *status.ContextStatus

	checks  []*Check
	actions []*Action

	// OnProgress is pumped once after every status mutation this
	// context performs.
	OnProgress func()
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context) error

// NewContext builds a Context around impl.
func NewContext(impl ContextImpl, opts ...ContextOption) (*Context, error) {
	c := &Context{
		impl:   impl,
		name:   typeName(impl),
		status: status.NewContextStatus(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithContextName sets an explicit name, validated against the length bound.
func WithContextName(n string) ContextOption {
	return func(c *Context) error {
		if err := validation.Name(n); err != nil {
			return err
		}
		c.name = n
		return nil
	}
}

// WithContextDescription sets the description, validated against the length bound.
func WithContextDescription(d string) ContextOption {
	return func(c *Context) error {
		if err := validation.Description(d); err != nil {
			return err
		}
		c.description = d
		return nil
	}
}

func (c *Context) Name() string                  { return c.name }
func (c *Context) Description() string           { return c.description }
func (c *Context) Status() *status.ContextStatus { return c.status }
func (c *Context) Checks() []*Check              { return c.checks }
func (c *Context) Actions() []*Action            { return c.actions }

// HasTeardown reports whether impl implements ContextTeardownHook.
func (c *Context) HasTeardown() bool {
	_, ok := c.impl.(ContextTeardownHook)
	return ok
}

// AddCheck binds check to this context, rejecting duplicates. The
// check itself must still be told about the context separately
// (SetSharedContext) — AddCheck only tracks the reverse edge that
// RunChecks walks.
func (c *Context) AddCheck(check *Check) error {
	if check == nil {
		return apperror.Implementation("check must be a *Check, not nil")
	}
	for _, existing := range c.checks {
		if existing == check {
			return nil
		}
	}
	c.checks = append(c.checks, check)
	return nil
}

// RegisterActions appends actions the UI may trigger.
func (c *Context) RegisterActions(actions []*Action) {
	c.actions = append(c.actions, actions...)
}

func (c *Context) pump() {
	if c.OnProgress != nil {
		c.OnProgress()
	}
}

func (c *Context) guardSetup(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.failSetup(fmt.Sprintf("panic running %s.Setup(): %v", c.name, r))
			return
		}
	}()
	if err := c.impl.Setup(ctx); err != nil {
		c.failSetup(fmt.Sprintf("unhandled error running %s.Setup(): %v", c.name, err))
		return
	}
	_ = c.status.SetCode(status.Ready)
	c.pump()
}

func (c *Context) failSetup(msg string) {
	_ = c.status.SetCode(status.ContextFailed)
	c.status.AddMessage(msg)
	c.pump()
}

// RunSetup runs Setup under the exception guard. On success the
// context transitions to Ready; on failure or panic, to ContextFailed.
func (c *Context) RunSetup(ctx context.Context) *status.ContextStatus {
	c.guardSetup(ctx)
	return c.status
}

// IsReady reports whether the context is in the Ready state.
func (c *Context) IsReady() bool { return c.status.Code() == status.Ready }

// HasFinished reports whether the context is in the Finished state.
func (c *Context) HasFinished() bool { return c.status.Code() == status.Finished }

// RunChecks runs every bound check's full lifecycle, only if the
// context is Ready. If every check ran without leaving the context in
// ContextFailed, the context transitions straight to Finished,
// independently of RunTeardown — RunTeardown only gets its own chance
// to set Finished when this one hasn't already (see RunTeardown).
func (c *Context) RunChecks(ctx context.Context) *status.ContextStatus {
	if !c.IsReady() {
		return c.status
	}
	for _, check := range c.checks {
		check.RunFullCheck(ctx, true, true)
	}
	if c.status.Code() != status.ContextFailed {
		_ = c.status.SetCode(status.Finished)
		c.status.AddMessage(fmt.Sprintf("Shared context %s has finished running all checks.", c.name))
		c.pump()
	}
	return c.status
}

// RunTeardown runs Teardown under the exception guard, if implemented.
// It only ever transitions the context to Finished from Ready (setup
// succeeded but RunChecks wasn't called, or hasn't reached Finished
// yet) — a context that is already Finished is left alone, and a
// context that never reached Ready (ContextFailed, NotReady,
// ContextCancelled) does not run Teardown at all, so a failed setup
// can't be masked by a successful teardown.
func (c *Context) RunTeardown(ctx context.Context) *status.ContextStatus {
	hook, ok := c.impl.(ContextTeardownHook)
	if !ok {
		return c.status
	}
	switch c.status.Code() {
	case status.Finished:
		return c.status
	case status.Ready:
		// proceed
	default:
		return c.status
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.failSetup(fmt.Sprintf("panic running %s.Teardown(): %v", c.name, r))
			}
		}()
		if err := hook.Teardown(ctx); err != nil {
			c.failSetup(fmt.Sprintf("unhandled error running %s.Teardown(): %v", c.name, err))
			return
		}
		_ = c.status.SetCode(status.Finished)
		c.pump()
	}()
	return c.status
}

// RunFullContext runs setup, checks, then teardown in sequence.
func (c *Context) RunFullContext(ctx context.Context) *status.ContextStatus {
	c.RunSetup(ctx)
	c.RunChecks(ctx)
	c.RunTeardown(ctx)
	return c.status
}

func (c *Context) String() string {
	return fmt.Sprintf("%s: %s", c.name, c.status.String())
}
