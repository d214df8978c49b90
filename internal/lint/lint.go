// Package lint evaluates advisory Rego rules against an extracted module
// before a testbench is rendered. Findings never stop generation.
package lint

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
)

//go:embed policies/*.rego
var policyFS embed.FS

const findingsQuery = "data.uvmtbgen.lint.findings"

// DefaultMaxWidth is the width above which wide_port fires.
const DefaultMaxWidth = 64

// Severity levels.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeverityOff     = "off"
)

// Finding is one rule hit.
type Finding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Port     string `json:"port,omitempty"`
}

// Summary provides aggregate counts.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Input is the document the policies see.
type Input struct {
	Module   string            `json:"module"`
	Ports    []extractor.Port  `json:"ports"`
	Roles    roles.SignalRoles `json:"roles"`
	MaxWidth int               `json:"max_width"`
}

// Engine holds a prepared query over the embedded policies.
type Engine struct {
	query     rego.PreparedEvalQuery
	overrides map[string]string
	maxWidth  int
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	overrides map[string]string
	policyDir string
	maxWidth  int
}

// WithRules sets per-rule severities. "off" disables a rule.
func WithRules(rules map[string]string) Option {
	return func(c *engineConfig) { c.overrides = rules }
}

// WithPolicyDir loads extra *.rego files next to the embedded ones. They must
// use the uvmtbgen.lint package and add to findings.
func WithPolicyDir(dir string) Option {
	return func(c *engineConfig) { c.policyDir = dir }
}

// WithMaxWidth changes the wide_port threshold.
func WithMaxWidth(bits int) Option {
	return func(c *engineConfig) { c.maxWidth = bits }
}

// New prepares the policy query.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg := engineConfig{maxWidth: DefaultMaxWidth}
	for _, opt := range opts {
		opt(&cfg)
	}

	var modules []func(*rego.Rego)
	err := fs.WalkDir(policyFS, "policies", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := policyFS.ReadFile(path)
		if err != nil {
			return err
		}
		modules = append(modules, rego.Module(path, string(content)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading embedded policies: %w", err)
	}

	if cfg.policyDir != "" {
		files, err := filepath.Glob(filepath.Join(cfg.policyDir, "*.rego"))
		if err != nil {
			return nil, fmt.Errorf("finding policy files: %w", err)
		}
		for _, f := range files {
			content, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f, err)
			}
			modules = append(modules, rego.Module(f, string(content)))
		}
	}

	regoOpts := append(modules, rego.Query(findingsQuery))
	query, err := rego.New(regoOpts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing findings query: %w", err)
	}

	return &Engine{
		query:     query,
		overrides: cfg.overrides,
		maxWidth:  cfg.maxWidth,
	}, nil
}

// Evaluate runs the policies for one module. Findings come back sorted by
// rule, then port.
func (e *Engine) Evaluate(ctx context.Context, mod extractor.Module, r roles.SignalRoles) ([]Finding, error) {
	input := Input{
		Module:   mod.Name,
		Ports:    mod.Ports,
		Roles:    r,
		MaxWidth: e.maxWidth,
	}
	if input.Ports == nil {
		input.Ports = []extractor.Port{}
	}
	if input.Roles.ControlSignals == nil {
		input.Roles.ControlSignals = []string{}
	}

	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating findings: %w", err)
	}

	findings := []Finding{}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		values, _ := rs[0].Expressions[0].Value.([]interface{})
		for _, v := range values {
			fmap, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			f := Finding{
				Rule:     getString(fmap, "rule"),
				Severity: getString(fmap, "severity"),
				Message:  getString(fmap, "message"),
				Port:     getString(fmap, "port"),
			}
			if sev, ok := e.overrides[f.Rule]; ok {
				if sev == SeverityOff {
					continue
				}
				f.Severity = sev
			}
			findings = append(findings, f)
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Rule != findings[j].Rule {
			return findings[i].Rule < findings[j].Rule
		}
		return findings[i].Port < findings[j].Port
	})
	return findings, nil
}

// Summarize counts findings by severity.
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Info++
		}
	}
	return s
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
