package sanitycheck

import "github.com/sanitycheck/engine/internal/apperror"

// ContextRef is a shared-context reference in one of two states: an
// unresolved name (as declared by a Check author before the loader
// binds the repo) or a resolved pointer to the live Context. Kept as
// a small tagged struct rather than an `any` so resolution failures
// are a type-level concern, not a runtime type assertion.
type ContextRef struct {
	name string
	ctx  *Context
}

// UnresolvedContextRef builds a reference that names a context that
// has not yet been looked up.
func UnresolvedContextRef(name string) ContextRef {
	return ContextRef{name: name}
}

// ResolvedContextRef builds a reference that already points at a
// live Context.
func ResolvedContextRef(ctx *Context) ContextRef {
	return ContextRef{ctx: ctx, name: ctx.Name()}
}

// Name returns the context name regardless of resolution state.
func (r ContextRef) Name() string { return r.name }

// IsResolved reports whether this reference points at a live Context.
func (r ContextRef) IsResolved() bool { return r.ctx != nil }

// Resolved returns the live Context and true if resolved. A nil
// receiver (no shared context at all) returns (nil, false).
func (r *ContextRef) Resolved() (*Context, bool) {
	if r == nil || r.ctx == nil {
		return nil, false
	}
	return r.ctx, true
}

// Resolve binds the reference to ctx. Returns an error if ctx's name
// doesn't match the declared name.
func (r *ContextRef) Resolve(ctx *Context) error {
	if ctx == nil {
		return nil
	}
	if r.name != "" && r.name != ctx.Name() {
		return apperror.Implementationf("shared context %q cannot resolve to context %q", r.name, ctx.Name())
	}
	r.ctx = ctx
	r.name = ctx.Name()
	return nil
}
