// Package main implements the pyflight CLI: one command to run the same
// quality gates locally that CI enforces, inside the project's own virtual
// environment.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pyflight/internal/pipeline"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
	"github.com/fyrsmithlabs/pyflight/internal/security"
)

var (
	// version is overridden at build time via -ldflags.
	version = "dev"

	// logLevel and logFormat are global CLI options shared by all
	// subcommands.
	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps command errors to process exit codes. The orchestrators are
// the sole authors of the pass/fail code; a missing environment uses its own
// code so hooks can tell the two apart.
func exitCode(err error) int {
	switch {
	case errors.Is(err, pyenv.ErrNoEnvironment):
		return 2
	case errors.Is(err, pipeline.ErrChecksFailed), errors.Is(err, security.ErrScanFailed):
		return 1
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:   "pyflight",
	Short: "Run dev preflight checks inside your project venv",
	Long: `pyflight runs the preflight gate pipeline (lint, format check,
type check, tests with coverage) and security scans inside your project's
virtual environment, mirroring locally what CI enforces.

Configuration lives in [tool.pyflight] in pyproject.toml and can be
overridden with PYFLIGHT_* environment variables.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
}
