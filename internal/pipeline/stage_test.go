package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/pyflight/internal/config"
	"github.com/fyrsmithlabs/pyflight/internal/gitscope"
)

func stageNames(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}

func fullSelection() gitscope.Selection {
	return gitscope.Selection{Files: []string{"app.py"}, Scoped: false}
}

func TestPlanDefaultOrder(t *testing.T) {
	stages := Plan(config.Default(), Flags{}, fullSelection())

	require.Equal(t, []string{"lint", "format", "typecheck", "test"}, stageNames(stages))
	for _, s := range stages {
		skipped, _ := s.Skipped()
		assert.False(t, skipped, s.Name)
	}

	assert.Equal(t, "ruff", stages[0].Module)
	assert.Equal(t, []string{"check", "."}, stages[0].Args)
	assert.Equal(t, "ruff", stages[1].Module)
	assert.Equal(t, []string{"format", "--check", "."}, stages[1].Args)
	assert.Equal(t, "mypy", stages[2].Module)
	assert.Equal(t, []string{"."}, stages[2].Args)
	assert.Equal(t, "pytest", stages[3].Module)
	assert.Equal(t,
		[]string{"--cov=.", "--cov-branch", "--cov-report=term-missing", "--cov-fail-under=85"},
		stages[3].Args)
}

func TestPlanFixVariants(t *testing.T) {
	stages := Plan(config.Default(), Flags{Fix: true}, fullSelection())

	assert.Equal(t, []string{"check", "--fix", "."}, stages[0].Args)
	assert.True(t, stages[0].Fix)
	assert.Equal(t, []string{"format", "."}, stages[1].Args)
	assert.True(t, stages[1].Fix)
}

func TestPlanBlackFormatter(t *testing.T) {
	cfg := config.Default()
	cfg.Formatter = config.FormatterBlack

	stages := Plan(cfg, Flags{}, fullSelection())
	assert.Equal(t, "ruff", stages[0].Module)
	assert.Equal(t, "black", stages[1].Module)
	assert.Equal(t, []string{"-q", "--check", "."}, stages[1].Args)

	stages = Plan(cfg, Flags{Fix: true}, fullSelection())
	assert.Equal(t, []string{"-q", "."}, stages[1].Args)
}

func TestPlanPyright(t *testing.T) {
	cfg := config.Default()
	cfg.Typechecker = config.TypecheckerPyright

	stages := Plan(cfg, Flags{}, fullSelection())
	assert.Equal(t, "pyright", stages[2].Module)
}

func TestPlanCoverageWithoutBranch(t *testing.T) {
	cfg := config.Default()
	cfg.CoverageBranch = false
	cfg.CoverageMin = 70

	stages := Plan(cfg, Flags{}, fullSelection())
	assert.Equal(t,
		[]string{"--cov=.", "--cov-report=term-missing", "--cov-fail-under=70"},
		stages[3].Args)
}

func TestPlanScopedTargets(t *testing.T) {
	sel := gitscope.Selection{Files: []string{"a.py", "b.py"}, Scoped: true}
	stages := Plan(config.Default(), Flags{Changed: true}, sel)

	assert.Equal(t, []string{"check", "a.py", "b.py"}, stages[0].Args)
	assert.Equal(t, []string{"format", "--check", "a.py", "b.py"}, stages[1].Args)
	assert.Equal(t, []string{"a.py", "b.py"}, stages[2].Args)
	// Coverage is never scoped.
	assert.Contains(t, stages[3].Args, "--cov=.")
}

func TestPlanScopedEmptySkipsFileStages(t *testing.T) {
	sel := gitscope.Selection{Scoped: true}
	stages := Plan(config.Default(), Flags{Changed: true, Staged: true}, sel)

	for _, name := range []string{"lint", "format", "typecheck"} {
		stage := findStage(t, stages, name)
		skipped, reason := stage.Skipped()
		assert.True(t, skipped, name)
		assert.Equal(t, "no changed Python files", reason)
	}

	testSkipped, _ := findStage(t, stages, "test").Skipped()
	assert.False(t, testSkipped)
}

func TestPlanTestStageToggles(t *testing.T) {
	tests := []struct {
		name       string
		flags      Flags
		runTests   bool
		wantSkip   bool
		wantReason string
	}{
		{name: "default runs", runTests: true, wantSkip: false},
		{name: "fast skips", flags: Flags{Fast: true}, runTests: true, wantSkip: true, wantReason: "--fast"},
		{name: "no-tests skips", flags: Flags{NoTests: true}, runTests: true, wantSkip: true, wantReason: "--no-tests"},
		{name: "no-tests overrides fast", flags: Flags{Fast: true, NoTests: true}, runTests: true, wantSkip: true, wantReason: "--no-tests"},
		{name: "config disables", runTests: false, wantSkip: true, wantReason: "run_tests disabled"},
		{name: "no-tests overrides run_tests", flags: Flags{NoTests: true}, runTests: false, wantSkip: true, wantReason: "--no-tests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.RunTests = tt.runTests

			stage := findStage(t, Plan(cfg, tt.flags, fullSelection()), "test")
			skipped, reason := stage.Skipped()
			assert.Equal(t, tt.wantSkip, skipped)
			if tt.wantSkip {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

func TestPlanFix(t *testing.T) {
	stages := PlanFix(config.Default())
	require.Equal(t, []string{"lint", "format"}, stageNames(stages))
	assert.Equal(t, []string{"check", "--fix", "."}, stages[0].Args)
	assert.Equal(t, []string{"format", "."}, stages[1].Args)
}

func findStage(t *testing.T, stages []Stage, name string) Stage {
	t.Helper()
	for _, s := range stages {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("stage %q not planned", name)
	return Stage{}
}
