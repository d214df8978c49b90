package generator

import (
	"errors"
	"fmt"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/catalog"
)

var (
	// ErrDutNotFound is returned when the DUT path is missing or not a regular file.
	// It is the only error that stops a run before anything is written.
	ErrDutNotFound = errors.New("DUT file not found")

	// ErrContractViolation is returned in strict mode when the render context
	// does not satisfy the #RenderContext contract.
	ErrContractViolation = errors.New("render context violates contract")

	// ErrNameConflict is returned when two outputs of one run would share a
	// file name, e.g. a top name equal to "<module>_driver".
	ErrNameConflict = errors.New("output file name conflict")
)

// RenderError records why one artifact could not be produced.
type RenderError struct {
	Artifact catalog.Role
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Artifact, e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
