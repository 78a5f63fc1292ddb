package sanitycheck

import (
	"context"
	"fmt"

	"github.com/sanitycheck/engine/internal/validation"
)

// ActionImpl is a user-triggerable operation a Check or Context
// exposes to the UI — an "open this folder" or "copy this path"
// button alongside the pass/fail state.
type ActionImpl interface {
	Execute(ctx context.Context) error
}

// Action is the framework-owned wrapper around an ActionImpl: bounded
// name/description plus the same never-panics execution guard Check
// and Context use.
type Action struct {
	impl        ActionImpl
	name        string
	description string
	lastErr     error
}

// ActionOption configures an Action at construction time.
type ActionOption func(*Action) error

// NewAction builds an Action around impl.
func NewAction(impl ActionImpl, opts ...ActionOption) (*Action, error) {
	a := &Action{impl: impl, name: typeName(impl)}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WithActionName sets an explicit name, validated against the length bound.
func WithActionName(n string) ActionOption {
	return func(a *Action) error {
		if err := validation.Name(n); err != nil {
			return err
		}
		a.name = n
		return nil
	}
}

// WithActionDescription sets the description, validated against the length bound.
func WithActionDescription(d string) ActionOption {
	return func(a *Action) error {
		if err := validation.Description(d); err != nil {
			return err
		}
		a.description = d
		return nil
	}
}

func (a *Action) Name() string        { return a.name }
func (a *Action) Description() string { return a.description }

// LastError returns the error (if any) captured by the most recent
// Execute call — a panic is reported here too, never propagated.
func (a *Action) LastError() error { return a.lastErr }

// Execute runs the action under the same recover-to-error guard as
// Check/Context hooks: a panicking or erroring action is recorded,
// never propagated to the caller.
func (a *Action) Execute(ctx context.Context) {
	a.lastErr = nil
	defer func() {
		if r := recover(); r != nil {
			a.lastErr = fmt.Errorf("panic running %s.Execute(): %v", a.name, r)
		}
	}()
	if err := a.impl.Execute(ctx); err != nil {
		a.lastErr = fmt.Errorf("unhandled error running %s.Execute(): %v", a.name, err)
	}
}

func (a *Action) String() string { return a.name }
