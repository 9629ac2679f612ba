// Package bootstrap implements the init workflow: create the virtual
// environment, install the dev toolchain, install the project, and set up
// the pre-commit hook.
//
// The orchestration core never depends on any of this succeeding; it only
// ever observes whether a resolvable environment exists afterwards.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pyflight/internal/config"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
)

// precommitFile is the pre-commit config filename at the project root.
const precommitFile = ".pre-commit-config.yaml"

// Bootstrapper carries the collaborators the init workflow needs.
type Bootstrapper struct {
	root   string
	runner pyenv.Runner
	log    *zap.Logger
	out    io.Writer

	// hostRun invokes a command outside any environment, used only for
	// venv creation. Swappable for tests.
	hostRun func(ctx context.Context, name string, args ...string) error
}

// New creates a Bootstrapper for the project root.
func New(root string, runner pyenv.Runner, logger *zap.Logger, out io.Writer) *Bootstrapper {
	return &Bootstrapper{
		root:    root,
		runner:  runner,
		log:     logger,
		out:     out,
		hostRun: runHost,
	}
}

func runHost(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// EnsureEnv reuses the resolved environment or creates one at the configured
// path using the host interpreter. pythonSpec overrides the interpreter used
// for creation (e.g. "python3.12"); empty means "python3".
func (b *Bootstrapper) EnsureEnv(ctx context.Context, cfg config.Config, resolved pyenv.Env, pythonSpec string) (pyenv.Env, error) {
	if resolved.Found() {
		fmt.Fprintf(b.out, "Using environment: %s\n", resolved.Dir)
		return resolved, nil
	}

	dir := cfg.EnvironmentPath
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(b.root, dir)
	}

	interpreter := pythonSpec
	if interpreter == "" {
		interpreter = "python3"
	}

	fmt.Fprintf(b.out, "Creating environment at: %s\n", dir)
	if err := b.hostRun(ctx, interpreter, "-m", "venv", dir); err != nil {
		return pyenv.Env{}, fmt.Errorf("failed to create environment at %s: %w", dir, err)
	}

	env := pyenv.Env{Dir: dir, Source: pyenv.SourceConfigured}
	if _, err := os.Stat(env.Python()); err != nil {
		return pyenv.Env{}, fmt.Errorf("environment created but interpreter missing at %s: %w", env.Python(), err)
	}
	return env, nil
}

// InstallToolchain upgrades the installer basics and installs the dev
// toolchain into the environment.
func (b *Bootstrapper) InstallToolchain(ctx context.Context, env pyenv.Env) error {
	base := []string{"install", "-U", "pip", "setuptools", "wheel"}
	if err := b.pip(ctx, env, base); err != nil {
		return fmt.Errorf("failed to upgrade pip basics: %w", err)
	}

	if err := b.pip(ctx, env, append([]string{"install"}, DefaultToolchain...)); err != nil {
		return fmt.Errorf("failed to install toolchain: %w", err)
	}
	return nil
}

// InstallProject installs the project's own dependencies, best effort. An
// editable install is preferred; failures degrade rather than abort since
// some projects are tool-only.
func (b *Bootstrapper) InstallProject(ctx context.Context, env pyenv.Env) {
	if fileExists(filepath.Join(b.root, "pyproject.toml")) {
		if err := b.pip(ctx, env, []string{"install", "-e", "."}); err == nil {
			return
		}
		fmt.Fprintln(b.out, "Editable install failed; trying non-editable install (pip install .)")
		if err := b.pip(ctx, env, []string{"install", "."}); err != nil {
			b.log.Warn("project install failed; continuing without installed project dependencies")
		}
		return
	}

	if fileExists(filepath.Join(b.root, "requirements.txt")) {
		if err := b.pip(ctx, env, []string{"install", "-r", "requirements.txt"}); err != nil {
			b.log.Warn("requirements install failed", zap.Error(err))
		}
		return
	}

	fmt.Fprintln(b.out, "No pyproject.toml or requirements.txt found; skipping project dependency install.")
}

// WritePrecommitConfig creates .pre-commit-config.yaml unless one exists.
func (b *Bootstrapper) WritePrecommitConfig() error {
	path := filepath.Join(b.root, precommitFile)
	if fileExists(path) {
		fmt.Fprintf(b.out, "%s already exists; leaving it unchanged.\n", precommitFile)
		fmt.Fprintln(b.out, "Tip: add a local hook that runs: pyflight check --staged --changed")
		return nil
	}
	if err := os.WriteFile(path, []byte(precommitConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", precommitFile, err)
	}
	return nil
}

// InstallHook installs the git pre-commit hook from inside the environment.
func (b *Bootstrapper) InstallHook(ctx context.Context, env pyenv.Env) error {
	code, err := b.runner.RunModule(ctx, env, b.root, "pre_commit", []string{"install"})
	if err != nil {
		return fmt.Errorf("failed to run pre-commit: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("pre-commit install exited with status %d", code)
	}
	return nil
}

func (b *Bootstrapper) pip(ctx context.Context, env pyenv.Env, args []string) error {
	code, err := b.runner.RunModule(ctx, env, b.root, "pip", args)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("pip exited with status %d", code)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
