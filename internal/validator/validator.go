package validator

// =============================================================================
// CONTRACT GUARD
// =============================================================================
//
// Templates receive a RenderContext, `--json` prints a Report, `facts` prints
// fact tables and the config file feeds everything else. All four shapes are
// pinned down in schema.cue.
//
// WHEN VALIDATION FAILS:
// 1. DON'T widen the schema to make the error go away
// 2. DO check whether the extractor or classifier produced something odd
//    (a fallback module name that is not an identifier, a port with width 0)
// 3. DO update schema.cue together with the Go struct when a field changes
// =============================================================================

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Schema definitions.
const (
	DefModule        = "#Module"
	DefRenderContext = "#RenderContext"
	DefReport        = "#Report"
	DefConfig        = "#Config"
	DefFactTables    = "#FactTables"
)

// Validator checks Go values against the embedded CUE schema.
// It is safe for concurrent use.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Validator with the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate marshals data to JSON and unifies it with the named definition.
func (v *Validator) Validate(def string, data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(def, jsonBytes)
}

// ValidateJSON validates JSON bytes against the named definition.
func (v *Validator) ValidateJSON(def string, jsonBytes []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	unified, err := v.unify(def, jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s validation failed: %w", def, err)
	}
	return nil
}

// ValidationErrors returns one message per schema violation, or nil.
func (v *Validator) ValidationErrors(def string, data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	unified, err := v.unify(def, jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// ValidateContext checks a render context.
func (v *Validator) ValidateContext(data interface{}) error {
	return v.Validate(DefRenderContext, data)
}

// ValidateReport checks a generation report.
func (v *Validator) ValidateReport(data interface{}) error {
	return v.Validate(DefReport, data)
}

// ValidateConfig checks a loaded configuration.
func (v *Validator) ValidateConfig(data interface{}) error {
	return v.Validate(DefConfig, data)
}

// ValidateFacts checks fact tables.
func (v *Validator) ValidateFacts(data interface{}) error {
	return v.Validate(DefFactTables, data)
}

func (v *Validator) unify(def string, jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	defValue := v.schema.LookupPath(cue.ParsePath(def))
	if defValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", def, defValue.Err())
	}

	return defValue.Unify(dataValue), nil
}
