// Package security runs the security-scan pipeline: a dependency
// vulnerability audit followed by a static-analysis scan.
//
// The pipeline holds exactly two scanners and shares no state with the check
// pipeline beyond the resolved environment. Unlike check, it supports
// fail-fast.
package security

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
	"github.com/fyrsmithlabs/pyflight/internal/report"
)

// ErrScanFailed is returned when an executed scanner failed. The command
// handler maps it to a non-zero exit code.
var ErrScanFailed = errors.New("security scan failed")

// cacheDirs are tool caches the static scanner must never analyze.
var cacheDirs = []string{"__pycache__", ".pytest_cache", ".mypy_cache", ".ruff_cache"}

// Scanner is one external security tool invocation.
type Scanner struct {
	// Name appears in headers and the summary.
	Name string
	// Module is the Python module invoked via `python -m`.
	Module string
	// Args are the module arguments.
	Args []string
}

// Scanners builds the fixed two-scanner pipeline: pip-audit for dependency
// vulnerabilities, bandit for static analysis with dynamically computed
// exclusions.
func Scanners(root string, env pyenv.Env) []Scanner {
	return []Scanner{
		{Name: "dependency-audit", Module: "pip_audit"},
		{
			Name:   "static-analysis",
			Module: "bandit",
			Args:   []string{"-r", ".", "-x", strings.Join(Exclusions(root, env), ",")},
		},
	}
}

// Exclusions computes the paths the static scanner skips: the resolved
// environment (when inside the project), the version-control metadata
// directory, and common cache directories. Vendored and tooling code is never
// the project's to fix.
func Exclusions(root string, env pyenv.Env) []string {
	excl := []string{".git"}

	if env.Found() {
		if rel, err := filepath.Rel(root, env.Dir); err == nil && !strings.HasPrefix(rel, "..") {
			excl = append(excl, filepath.ToSlash(rel))
		}
	}

	return append(excl, cacheDirs...)
}

// Orchestrator executes the scanner pipeline.
type Orchestrator struct {
	root   string
	env    pyenv.Env
	runner pyenv.Runner
	log    *zap.Logger
	out    io.Writer
}

// New creates a security orchestrator.
func New(root string, env pyenv.Env, runner pyenv.Runner, logger *zap.Logger, out io.Writer) *Orchestrator {
	return &Orchestrator{root: root, env: env, runner: runner, log: logger, out: out}
}

// Run executes both scanners and returns the run report.
//
// With failFast set, the pipeline stops after the first failing scanner and
// records the remainder as skipped; otherwise both scanners always run and
// results aggregate as in the check pipeline. An unresolved environment
// fails before any scanner executes.
func (o *Orchestrator) Run(ctx context.Context, failFast bool) (*report.Run, error) {
	if !o.env.Found() {
		return nil, pyenv.ErrNoEnvironment
	}

	log := o.log.With(zap.String("run_id", uuid.NewString()))
	log.Debug("starting security scan",
		zap.String("env", o.env.Dir),
		zap.Bool("fail_fast", failFast))

	scanners := Scanners(o.root, o.env)
	run := &report.Run{}
	stopped := false

	for _, scanner := range scanners {
		if stopped {
			report.Notice(o.out, fmt.Sprintf("%s: skipped (fail-fast)", scanner.Name))
			run.Record(report.StageResult{
				Name:   scanner.Name,
				Status: report.StatusSkipped,
				Detail: "fail-fast",
			})
			continue
		}

		report.Header(o.out, scanner.Name)
		res := o.execute(ctx, log, scanner)
		run.Record(res)

		if res.Status == report.StatusFailed && failFast {
			stopped = true
		}
	}
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, log *zap.Logger, scanner Scanner) report.StageResult {
	code, err := o.runner.RunModule(ctx, o.env, o.root, scanner.Module, scanner.Args)
	if err != nil {
		log.Warn("scanner unavailable",
			zap.String("scanner", scanner.Name),
			zap.Error(err))
		return report.StageResult{
			Name:     scanner.Name,
			Status:   report.StatusFailed,
			Detail:   "tool unavailable: " + err.Error(),
			ExitCode: code,
		}
	}
	if code != 0 {
		return report.StageResult{
			Name:     scanner.Name,
			Status:   report.StatusFailed,
			Detail:   fmt.Sprintf("exit status %d", code),
			ExitCode: code,
		}
	}
	return report.StageResult{Name: scanner.Name, Status: report.StatusPassed}
}
