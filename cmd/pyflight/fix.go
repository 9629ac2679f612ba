package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pyflight/internal/pipeline"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply lint and format autofixes to the whole project",
	RunE:  runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, _ []string) error {
	pc, err := newProjectContext()
	if err != nil {
		return err
	}
	defer pc.Log.Sync() //nolint:errcheck

	stages := pipeline.PlanFix(pc.Config)
	orch := pipeline.New(pc.Root, pc.Env, pyenv.NewRunner(), pc.Log, os.Stdout)
	run, err := orch.Run(cmd.Context(), stages)
	if err != nil {
		return err
	}

	run.Summary(os.Stdout, "fix summary")
	if !run.OK() {
		return pipeline.ErrChecksFailed
	}
	return nil
}
