// Package loader discovers user-authored Check and Context
// implementations from a filesystem repository, validates and
// instantiates them, and binds the two kinds of reference the loader
// owns: shared-context names and dependency names (spec §4.5).
//
// Two authoring surfaces are supported, both grounded in the same
// Registration shape: a compiled Go plugin (a *.so built with `go
// build -buildmode=plugin`, discovered via the standard library's
// plugin package) for checks that need the full language, and an
// embedded JavaScript file (*.check.js / *.context.js, run through
// dop251/goja) for lightweight scripted checks that don't warrant a
// compiled artifact. A static-linked registry (compile every check
// into the binary) was rejected because the spec's loader contract
// takes a runtime repo-path argument that must be validated as a
// directory — that contract only means something if discovery is
// actually dynamic. hashicorp/go-plugin was rejected too: its
// subprocess/RPC transport would make every check an out-of-process,
// semi-remote execution, in tension with the engine's no-remote-
// execution non-goal.
package loader

import "github.com/sanitycheck/engine/internal/sanitycheck"

// Kind tags what a Registration produces.
type Kind int

const (
	KindCheck Kind = iota
	KindContext
)

// Registration is the uniform shape both authoring surfaces produce:
// enough metadata for the loader to validate and construct a Check or
// Context, plus the impl itself.
type Registration struct {
	Kind            Kind
	Name            string
	Description     string
	Priority        int
	DependencyNames []string
	SharedContext   string // only meaningful when Kind == KindCheck

	CheckImpl   CheckImplFactory
	ContextImpl ContextImplFactory
}

// CheckImplFactory and ContextImplFactory defer construction of the
// actual sanitycheck.CheckImpl/ContextImpl until after validation, so
// a Registration that fails validation never pays construction cost.
type CheckImplFactory func() (sanitycheck.CheckImpl, error)
type ContextImplFactory func() (sanitycheck.ContextImpl, error)
