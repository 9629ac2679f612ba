package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pyflight/internal/gitscope"
	"github.com/fyrsmithlabs/pyflight/internal/pipeline"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
)

var (
	checkFix     bool
	checkChanged bool
	checkStaged  bool
	checkFast    bool
	checkNoTests bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run lint, format, type, and test gates",
	Long: `Run the full preflight gate pipeline: lint, format check, type
check, and the test suite with coverage enforcement. All gates run even when
an earlier one fails; the summary reports every outcome.

With --changed or --staged the lint, format, and type gates target only the
changed Python files; the test gate always runs on the whole project.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "apply autofixes while linting and formatting")
	checkCmd.Flags().BoolVar(&checkChanged, "changed", false, "scope static gates to changed files")
	checkCmd.Flags().BoolVar(&checkStaged, "staged", false, "with --changed, scope to staged files instead")
	checkCmd.Flags().BoolVar(&checkFast, "fast", false, "skip the test gate")
	checkCmd.Flags().BoolVar(&checkNoTests, "no-tests", false, "skip the test gate")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	pc, err := newProjectContext()
	if err != nil {
		return err
	}
	defer pc.Log.Sync() //nolint:errcheck

	ctx := cmd.Context()
	sel := gitscope.New(pc.Root, pc.Log).Select(ctx, checkChanged, checkStaged)

	flags := pipeline.Flags{
		Fix:     checkFix,
		Changed: checkChanged,
		Staged:  checkStaged,
		Fast:    checkFast,
		NoTests: checkNoTests,
	}
	stages := pipeline.Plan(pc.Config, flags, sel)

	orch := pipeline.New(pc.Root, pc.Env, pyenv.NewRunner(), pc.Log, os.Stdout)
	run, err := orch.Run(ctx, stages)
	if err != nil {
		return err
	}

	run.Summary(os.Stdout, "check summary")
	if !run.OK() {
		pc.Log.Debug("check pipeline failed", zap.Int("stages", len(stages)))
		return pipeline.ErrChecksFailed
	}
	return nil
}
