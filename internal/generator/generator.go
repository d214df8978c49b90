// Package generator runs the testbench pipeline for one DUT file:
//
//	load → parse → classify → render every catalog artifact → done
//
// Parsing never stops a run: a file without a module header degrades to a
// port-less module named after the file. Rendering failures stay local to
// their artifact. Only a missing DUT (or failing to set up the output
// directory) aborts.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/catalog"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/lint"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/render"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/validator"
)

// Generator turns a DUT file into a UVM testbench directory.
type Generator struct {
	logger     *zap.Logger
	templates  *render.Set
	workers    int
	validator  *validator.Validator
	linter     *lint.Engine
	strict     bool
	runScript  bool
	timingPath string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTemplates sets the renderers used for each catalog template id.
func WithTemplates(s *render.Set) Option {
	return func(g *Generator) { g.templates = s }
}

// WithWorkers bounds parallel rendering. 0 means one worker per CPU,
// 1 renders sequentially.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// WithValidator checks every render context against the #RenderContext contract.
func WithValidator(v *validator.Validator) Option {
	return func(g *Generator) { g.validator = v }
}

// WithLinter attaches interface lint findings to each report.
func WithLinter(e *lint.Engine) Option {
	return func(g *Generator) { g.linter = e }
}

// WithStrict makes contract violations fatal.
func WithStrict(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// WithRunScript also writes an executable run.sh into the output directory.
func WithRunScript(enabled bool) Option {
	return func(g *Generator) { g.runScript = enabled }
}

// WithTimingPath appends per-phase timings to path as JSON lines.
func WithTimingPath(path string) Option {
	return func(g *Generator) { g.timingPath = path }
}

// New returns a Generator using the embedded templates unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.templates == nil {
		g.templates = render.MustDefault()
	}
	return g
}

// Run generates the testbench for dutPath into outDir.
//
// The returned error is non-nil only for ErrDutNotFound, output directory or
// DUT copy failures, ErrNameConflict, and ErrContractViolation in strict
// mode for a cleanly parsed module. Per-artifact failures are reported in
// Report.Artifacts.
func (g *Generator) Run(ctx context.Context, dutPath, outDir, topName string) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := g.logger.With(zap.String("run_id", runID), zap.String("dut", dutPath))

	info, err := os.Stat(dutPath)
	if err != nil || !info.Mode().IsRegular() {
		log.Error("DUT file not found")
		return nil, fmt.Errorf("%w: %s", ErrDutNotFound, dutPath)
	}

	timing := newTimingRecorder(runID, start, resolveTimingPath(g.timingPath))
	defer timing.Close()
	if err := timing.Err(); err != nil {
		log.Warn("timing output disabled", zap.Error(err))
	}

	// Loaded
	phase := time.Now()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		timing.Stage("load", phase, "error")
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	text, copied, err := copyDUT(dutPath, outDir)
	timing.Stage("load", phase, statusOf(err))
	if err != nil {
		return nil, err
	}
	log.Debug("DUT copied", zap.String("path", copied))

	report := &Report{
		RunID:     runID,
		Dut:       dutPath,
		OutDir:    outDir,
		TopName:   topName,
		Findings:  []lint.Finding{},
		Artifacts: []ArtifactResult{},
	}

	// Parsed
	phase = time.Now()
	mod, err := extractor.Extract(text)
	if err != nil {
		mod = FallbackModule(dutPath)
		report.Degraded = true
		log.Warn("no module header found, using file name",
			zap.String("module", mod.Name), zap.Error(err))
	}
	timing.Stage("parse", phase, statusOf(err))
	report.Module = mod.Name
	report.Ports = len(mod.Ports)
	report.Interface = mod
	log = log.With(zap.String("module", mod.Name))
	log.Info("module extracted", zap.Int("ports", len(mod.Ports)), zap.Bool("degraded", report.Degraded))

	if err := checkFileNames(mod.Name, topName, filepath.Base(copied)); err != nil {
		log.Error("output file names collide", zap.String("topname", topName), zap.Error(err))
		return report, err
	}

	// Classified
	phase = time.Now()
	r := roles.Classify(mod.Ports)
	report.Roles = r
	base := render.NewContext(mod, topName, r)
	timing.Stage("classify", phase, "ok")
	log.Debug("signals classified",
		zap.String("clock", r.ClockPort),
		zap.String("reset", r.ResetPort),
		zap.Strings("control", r.ControlSignals))

	if err := g.checkContract(base, report, log, timing); err != nil {
		return report, err
	}
	g.lint(ctx, mod, r, report, log, timing)

	// Rendering
	phase = time.Now()
	report.Artifacts = g.renderAll(ctx, base, outDir, timing)
	timing.Stage("render", phase, statusOf(report.Err()))

	for i := range report.Artifacts {
		res := &report.Artifacts[i]
		if res.Role == string(catalog.Top) && !res.OK {
			g.writeFallbackTop(res, mod, topName, outDir, log)
		}
		if res.Err != nil {
			res.Error = res.Err.Error()
			log.Warn("artifact failed", zap.String("role", res.Role), zap.String("file", res.File),
				zap.Bool("fallback", res.Fallback), zap.Error(res.Err))
			continue
		}
		log.Info("artifact generated", zap.String("role", res.Role), zap.String("file", res.File),
			zap.Int("bytes", res.Bytes))
	}

	if g.runScript {
		script := filepath.Join(outDir, RunScriptName)
		if err := writeFileAtomic(script, []byte(RunScript(dutPath)), 0o755); err != nil {
			log.Warn("run script not written", zap.Error(err))
		} else {
			report.RunScript = RunScriptName
		}
	}

	timing.Stage("total", start, "ok")
	report.DurationMS = time.Since(start).Milliseconds()
	log.Info("generation finished",
		zap.Int("written", report.Written()),
		zap.Int("failed", len(report.Failed())),
		zap.Int64("duration_ms", report.DurationMS))
	return report, nil
}

// FallbackModule names a port-less module after the DUT file stem. It stands in
// for a file with no module header.
func FallbackModule(dutPath string) extractor.Module {
	base := filepath.Base(dutPath)
	return extractor.Module{
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
		Ports: []extractor.Port{},
	}
}

// checkFileNames rejects a run whose artifacts would overwrite each other or
// the DUT copy.
func checkFileNames(module, topName, dutFile string) error {
	seen := map[string]bool{dutFile: true}
	for _, name := range catalog.FileNames(module, topName) {
		if seen[name] {
			if name == dutFile {
				return fmt.Errorf("%w: %s would overwrite the DUT copy", ErrNameConflict, name)
			}
			return fmt.Errorf("%w: %s is produced twice (top name %q)", ErrNameConflict, name, topName)
		}
		seen[name] = true
	}
	return nil
}

func (g *Generator) checkContract(rctx render.Context, report *Report, log *zap.Logger, timing *timingRecorder) error {
	if g.validator == nil {
		return nil
	}
	phase := time.Now()
	err := g.validator.ValidateContext(rctx)
	timing.Stage("validate", phase, statusOf(err))
	if err == nil {
		return nil
	}
	report.ContractError = err.Error()
	violations := zap.Strings("violations", g.validator.ValidationErrors(validator.DefRenderContext, rctx))
	// A degraded module is named after the file, which need not be an
	// identifier. Degraded parses always render.
	if g.strict && !report.Degraded {
		log.Error("render context violates contract", violations)
		return fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	log.Warn("render context violates contract, continuing", zap.Bool("degraded", report.Degraded), violations)
	return nil
}

func (g *Generator) lint(ctx context.Context, mod extractor.Module, r roles.SignalRoles, report *Report, log *zap.Logger, timing *timingRecorder) {
	if g.linter == nil {
		return
	}
	phase := time.Now()
	findings, err := g.linter.Evaluate(ctx, mod, r)
	timing.Stage("lint", phase, statusOf(err))
	if err != nil {
		log.Warn("interface lint failed", zap.Error(err))
		return
	}
	report.Findings = findings
	for _, f := range findings {
		fields := []zap.Field{zap.String("rule", f.Rule), zap.String("message", f.Message)}
		if f.Port != "" {
			fields = append(fields, zap.String("port", f.Port))
		}
		switch f.Severity {
		case lint.SeverityError:
			log.Error("lint finding", fields...)
		case lint.SeverityWarning:
			log.Warn("lint finding", fields...)
		default:
			log.Info("lint finding", fields...)
		}
	}
}

// renderAll renders every catalog artifact. Results keep catalog order
// whatever the worker count.
func (g *Generator) renderAll(ctx context.Context, base render.Context, outDir string, timing *timingRecorder) []ArtifactResult {
	arts := catalog.All()
	results := make([]ArtifactResult, len(arts))

	workers := g.workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 1 {
		for i, art := range arts {
			results[i] = g.renderArtifact(ctx, art, base, outDir, timing)
		}
		return results
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, art := range arts {
		eg.Go(func() error {
			results[i] = g.renderArtifact(ctx, art, base, outDir, timing)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// renderArtifact renders one artifact fully in memory and then writes it.
// Panics from a renderer become that artifact's error.
func (g *Generator) renderArtifact(ctx context.Context, art catalog.Artifact, base render.Context, outDir string, timing *timingRecorder) (res ArtifactResult) {
	start := time.Now()
	res = ArtifactResult{
		Role:     string(art.Role),
		Template: art.Template,
		File:     art.FileName(base.Module, base.TopName),
	}
	fail := func(err error) {
		res.OK = false
		res.Bytes = 0
		res.Err = &RenderError{Artifact: art.Role, Template: art.Template, Err: err}
	}
	defer func() {
		if p := recover(); p != nil {
			fail(fmt.Errorf("renderer panicked: %v", p))
		}
		timing.File("render", res.File, statusOf(res.Err), start)
	}()

	if err := ctx.Err(); err != nil {
		fail(err)
		return res
	}

	rctx := base.Clone()
	if art.PortView {
		rctx = rctx.WithPortView()
	}
	out, err := g.templates.Render(art.Template, rctx)
	if err != nil {
		fail(err)
		return res
	}
	if err := writeFileAtomic(filepath.Join(outDir, res.File), out, 0o644); err != nil {
		fail(err)
		return res
	}
	res.OK = true
	res.Bytes = len(out)
	return res
}

// writeFallbackTop writes the built-in top in place of a failed top template.
func (g *Generator) writeFallbackTop(res *ArtifactResult, mod extractor.Module, topName, outDir string, log *zap.Logger) {
	res.Fallback = true
	content := FallbackTop(mod.Name, topName, mod.Ports)
	path := filepath.Join(outDir, res.File)
	if err := writeFileAtomic(path, []byte(content), 0o644); err != nil {
		var rerr *RenderError
		if errors.As(res.Err, &rerr) {
			rerr.Err = errors.Join(rerr.Err, fmt.Errorf("fallback top: %w", err))
		} else {
			res.Err = errors.Join(res.Err, fmt.Errorf("fallback top: %w", err))
		}
		return
	}
	res.Bytes = len(content)
	log.Warn("top template failed, wrote fallback top", zap.String("file", res.File))
}
