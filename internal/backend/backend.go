// Package backend lowers a checked program to a target artifact.
//
// A backend runs after the full front end and may assume the tree it is
// handed is concrete: generics are specialized, associated calls and string
// interpolation are desugared away, and every expression carries a type in
// the context. The compile driver enforces this by refusing to invoke a
// backend on a context with error diagnostics.
package backend

import (
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Backend turns a compiled program into a target representation.
type Backend interface {
	// Emit lowers the program in ctx and returns the textual artifact.
	Emit(ctx *pipeline.Context) ([]byte, error)

	// Name returns the backend name for display.
	Name() string
}
