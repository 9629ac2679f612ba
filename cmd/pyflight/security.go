package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
	"github.com/fyrsmithlabs/pyflight/internal/security"
)

var securityFailFast bool

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Run dependency-audit and static-analysis security scans",
	Long: `Run both security scanners against the project: pip-audit for
known-vulnerable dependencies, then bandit for static analysis of the
source tree. By default both scanners run regardless of failures; --fail-fast
stops after the first failing scanner.`,
	RunE: runSecurity,
}

func init() {
	securityCmd.Flags().BoolVar(&securityFailFast, "fail-fast", false, "stop after the first failing scanner")
	rootCmd.AddCommand(securityCmd)
}

func runSecurity(cmd *cobra.Command, _ []string) error {
	pc, err := newProjectContext()
	if err != nil {
		return err
	}
	defer pc.Log.Sync() //nolint:errcheck

	orch := security.New(pc.Root, pc.Env, pyenv.NewRunner(), pc.Log, os.Stdout)
	run, err := orch.Run(cmd.Context(), securityFailFast)
	if err != nil {
		return err
	}

	run.Summary(os.Stdout, "security summary")
	if !run.OK() {
		return security.ErrScanFailed
	}
	return nil
}
