package generator

import (
	"errors"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/lint"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
)

// ArtifactResult is the outcome of one catalog entry.
type ArtifactResult struct {
	Role     string `json:"role"`
	Template string `json:"template"`
	File     string `json:"file"`
	OK       bool   `json:"ok"`
	// Fallback is set on the top artifact when the built-in top was written instead.
	Fallback bool   `json:"fallback"`
	Bytes    int    `json:"bytes"`
	Error    string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Report describes a finished run. Its JSON form matches the #Report definition.
type Report struct {
	RunID         string           `json:"run_id"`
	Dut           string           `json:"dut"`
	OutDir        string           `json:"out_dir"`
	Module        string           `json:"module"`
	TopName       string           `json:"top_name"`
	Degraded      bool             `json:"degraded"`
	Ports         int              `json:"ports"`
	Artifacts     []ArtifactResult `json:"artifacts"`
	Findings      []lint.Finding   `json:"findings"`
	ContractError string           `json:"contract_error,omitempty"`
	RunScript     string           `json:"run_script,omitempty"`
	DurationMS    int64            `json:"duration_ms"`

	// Interface and Roles are what the run extracted; watch mode diffs them.
	Interface extractor.Module  `json:"-"`
	Roles     roles.SignalRoles `json:"-"`
}

// Written returns the number of artifact files on disk after the run,
// counting a fallback top.
func (r *Report) Written() int {
	n := 0
	for _, a := range r.Artifacts {
		if a.OK || (a.Fallback && a.Bytes > 0) {
			n++
		}
	}
	return n
}

// Failed returns the artifacts whose template did not render.
func (r *Report) Failed() []ArtifactResult {
	var out []ArtifactResult
	for _, a := range r.Artifacts {
		if !a.OK {
			out = append(out, a)
		}
	}
	return out
}

// Err joins every per-artifact error, or returns nil when all rendered.
func (r *Report) Err() error {
	var errs []error
	for _, a := range r.Artifacts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errors.Join(errs...)
}
