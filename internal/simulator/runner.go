package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// StepError reports the first failing command of a plan.
type StepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s step exited with code %d", e.Step, e.ExitCode)
	}
	return fmt.Sprintf("%s step: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes plans.
type Runner struct {
	Logger *zap.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the plan's steps in order and stops at the first failure.
// Cancelling ctx kills the running command.
func (r *Runner) Run(ctx context.Context, p *Plan) error {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("simulator", p.Simulator.ID), zap.String("dir", p.Dir))

	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return fmt.Errorf("creating work dir: %w", err)
	}

	for _, step := range p.Steps {
		if step.SkipIfExists != "" {
			if _, err := os.Stat(step.SkipIfExists); err == nil {
				log.Debug("step skipped", zap.String("step", step.Name))
				continue
			}
		}
		if len(step.Args) == 0 {
			return &StepError{Step: step.Name, Err: errors.New("empty command")}
		}

		start := time.Now()
		log.Info("running step", zap.String("step", step.Name), zap.String("command", step.String()))
		cmd := exec.CommandContext(ctx, step.Args[0], step.Args[1:]...)
		cmd.Dir = p.Dir
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		err := cmd.Run()
		if err != nil {
			serr := &StepError{Step: step.Name, Err: err}
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				serr.ExitCode = exitErr.ExitCode()
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				serr.Err = errors.Join(err, ctxErr)
			}
			log.Error("step failed", zap.String("step", step.Name), zap.Error(err))
			return serr
		}
		log.Info("step finished", zap.String("step", step.Name), zap.Duration("elapsed", time.Since(start)))
	}
	return nil
}
