// Package pipeline plans and executes the preflight gate pipeline:
// lint, format, type-check, test with coverage.
//
// Planning and execution are separate steps. Plan evaluates every stage's
// applicability once, producing a finalized ordered list; Run then executes
// it without re-deciding anything. Unlike the security pipeline, check never
// stops at a failing gate: the point of a preflight is to show every problem
// in one run.
package pipeline

import (
	"fmt"

	"github.com/fyrsmithlabs/pyflight/internal/config"
	"github.com/fyrsmithlabs/pyflight/internal/gitscope"
)

// Flags are the parsed check-command flags the planner consumes. The CLI
// owns parsing; the planner only reads.
type Flags struct {
	// Fix requests safe autofixes: ruff check --fix and formatter apply
	// mode instead of check mode.
	Fix bool
	// Changed restricts file-dependent stages to changed files.
	Changed bool
	// Staged switches changed-file scoping to the git index. Without
	// Changed it has no effect.
	Staged bool
	// Fast skips the test stage.
	Fast bool
	// NoTests skips the test stage unconditionally, overriding
	// configuration.
	NoTests bool
}

// Stage is one planned gate. Skip decisions are made at planning time; an
// inapplicable stage carries its reason and is recorded as skipped, never
// silently dropped.
type Stage struct {
	// Name appears in headers and the summary.
	Name string
	// Module is the Python module invoked via `python -m`.
	Module string
	// Args are the module arguments.
	Args []string
	// Fix marks the fix variant of a stage (vs the check variant).
	Fix bool

	skip       bool
	skipReason string
}

// Skipped reports whether planning ruled this stage out, and why.
func (s Stage) Skipped() (bool, string) {
	return s.skip, s.skipReason
}

// Plan builds the finalized ordered stage list for a check run. Stage order
// is fixed: lint, format, type-check, test-with-coverage.
//
// Coverage always evaluates the full project; thresholds are meaningless on
// a file subset, so scoping never applies to the test stage.
func Plan(cfg config.Config, flags Flags, sel gitscope.Selection) []Stage {
	target := []string{"."}
	if sel.Scoped {
		target = sel.Files
	}
	scopedEmpty := sel.Scoped && sel.Empty()

	stages := []Stage{
		lintStage(flags, target),
		formatStage(cfg, flags, target),
		typecheckStage(cfg, target),
	}
	for i := range stages {
		if scopedEmpty {
			stages[i].skip = true
			stages[i].skipReason = "no changed Python files"
		}
	}

	return append(stages, testStage(cfg, flags))
}

// PlanFix builds the whole-project fix pipeline used by the fix command:
// lint autofix plus formatter apply, nothing else.
func PlanFix(cfg config.Config) []Stage {
	target := []string{"."}
	flags := Flags{Fix: true}
	return []Stage{
		lintStage(flags, target),
		formatStage(cfg, flags, target),
	}
}

func lintStage(flags Flags, target []string) Stage {
	args := []string{"check"}
	if flags.Fix {
		args = append(args, "--fix")
	}
	return Stage{
		Name:   "lint",
		Module: "ruff",
		Args:   append(args, target...),
		Fix:    flags.Fix,
	}
}

// formatStage is the check variant unless fixing; the two are mutually
// exclusive. With formatter=black, linting stays with ruff and only
// formatting moves to black.
func formatStage(cfg config.Config, flags Flags, target []string) Stage {
	if cfg.Formatter == config.FormatterBlack {
		args := []string{"-q"}
		if !flags.Fix {
			args = append(args, "--check")
		}
		return Stage{
			Name:   "format",
			Module: "black",
			Args:   append(args, target...),
			Fix:    flags.Fix,
		}
	}

	args := []string{"format"}
	if !flags.Fix {
		args = append(args, "--check")
	}
	return Stage{
		Name:   "format",
		Module: "ruff",
		Args:   append(args, target...),
		Fix:    flags.Fix,
	}
}

func typecheckStage(cfg config.Config, target []string) Stage {
	return Stage{
		Name:   "typecheck",
		Module: cfg.Typechecker,
		Args:   target,
	}
}

func testStage(cfg config.Config, flags Flags) Stage {
	stage := Stage{
		Name:   "test",
		Module: "pytest",
		Args:   coverageArgs(cfg),
	}

	switch {
	case flags.NoTests:
		stage.skip = true
		stage.skipReason = "--no-tests"
	case flags.Fast:
		stage.skip = true
		stage.skipReason = "--fast"
	case !cfg.RunTests:
		stage.skip = true
		stage.skipReason = "run_tests disabled"
	}
	return stage
}

func coverageArgs(cfg config.Config) []string {
	args := []string{"--cov=."}
	if cfg.CoverageBranch {
		args = append(args, "--cov-branch")
	}
	return append(args,
		"--cov-report=term-missing",
		fmt.Sprintf("--cov-fail-under=%d", cfg.CoverageMin),
	)
}
