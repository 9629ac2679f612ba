package pyenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes tool modules inside a resolved environment. Stages and
// scanners are opaque external commands: the orchestrators only interpret
// the exit status.
type Runner interface {
	// RunModule runs `<env python> -m <module> <args...>` from root and
	// returns the process exit code. A non-nil error means the command
	// could not start at all (interpreter or tool missing), which is
	// distinct from the tool running and failing.
	RunModule(ctx context.Context, env Env, root, module string, args []string) (int, error)
}

// NewRunner returns the real subprocess-backed runner.
func NewRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) RunModule(ctx context.Context, env Env, root, module string, args []string) (int, error) {
	argv := append([]string{"-m", module}, args...)
	cmd := exec.CommandContext(ctx, env.Python(), argv...)
	cmd.Dir = root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to start %s via %s: %w", module, env.Python(), err)
}
