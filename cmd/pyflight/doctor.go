package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pyflight/internal/doctor"
	"github.com/fyrsmithlabs/pyflight/internal/gitscope"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the project setup without running any tools",
	Long: `Report the state of the project setup: pyproject.toml, the resolved
Python environment, which preflight tools are installed in it, git
availability, and the effective configuration. Diagnostic only; always exits
zero and never invokes the tools themselves.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	pc, err := newProjectContext()
	if err != nil {
		return err
	}
	defer pc.Log.Sync() //nolint:errcheck

	repoOK := gitscope.New(pc.Root, pc.Log).RepoAvailable()
	rep := doctor.Diagnose(pc.Root, pc.Config, pc.Env, repoOK)
	rep.Render(os.Stdout)
	return nil
}
