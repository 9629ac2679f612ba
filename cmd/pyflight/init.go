package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pyflight/internal/bootstrap"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
	"github.com/fyrsmithlabs/pyflight/internal/report"
)

var initPython string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the project environment and tooling",
	Long: `Create (or reuse) the project's virtual environment, install the
preflight toolchain into it, install the project itself, write a pre-commit
configuration, and install the git hook.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initPython, "python", "", "interpreter used to create the environment (default python3, then python)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	pc, err := newProjectContext()
	if err != nil {
		return err
	}
	defer pc.Log.Sync() //nolint:errcheck

	ctx := cmd.Context()
	b := bootstrap.New(pc.Root, pyenv.NewRunner(), pc.Log, os.Stdout)

	env, err := b.EnsureEnv(ctx, pc.Config, pc.Env, initPython)
	if err != nil {
		return err
	}
	if err := b.InstallToolchain(ctx, env); err != nil {
		return err
	}
	b.InstallProject(ctx, env)

	if err := b.WritePrecommitConfig(); err != nil {
		return err
	}
	if err := b.InstallHook(ctx, env); err != nil {
		return err
	}

	report.Notice(os.Stdout, "environment ready: "+env.Dir)
	return nil
}
