// Package progress implements the engine's push-model progress
// counter (spec §4.8): the runner resets it to a known maximum, then
// calls Add once per completed unit of work. The engine only ever
// manipulates the counter — it never assumes a UI is attached.
package progress

// Sink receives progress notifications from the runner. Reset is
// called once per execution phase with that phase's unit count; Add
// is called once per completed unit within the phase.
type Sink interface {
	Reset(maximum int)
	Add()
	// Widget returns the opaque handle a UI attaches itself to. Callers
	// that don't need one (headless runs) ignore the return value.
	Widget() any
}

// Noop is the default sink: it tracks nothing and renders nothing.
// Safe to use whenever no UI is present.
type Noop struct{}

func (Noop) Reset(int)      {}
func (Noop) Add()           {}
func (Noop) Widget() any    { return nil }

// Counting is a minimal in-memory sink useful for tests and for
// non-interactive CLI output (e.g. "[12/40] running checks").
type Counting struct {
	Maximum int
	Current int
	// OnAdd, if set, is called after every Add with the updated
	// (Current, Maximum) pair.
	OnAdd func(current, maximum int)
}

func NewCounting() *Counting { return &Counting{} }

func (c *Counting) Reset(maximum int) {
	c.Maximum = maximum
	c.Current = 0
}

func (c *Counting) Add() {
	c.Current++
	if c.OnAdd != nil {
		c.OnAdd(c.Current, c.Maximum)
	}
}

func (c *Counting) Widget() any { return c }
