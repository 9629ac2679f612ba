package gitscope

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitRunner abstracts the git binary for scoping queries. The contract is
// soft: a query either returns text or an error, never a hard failure that
// callers must treat as fatal.
type GitRunner interface {
	Output(ctx context.Context, dir string, args ...string) (string, error)
}

type execGit struct{}

func (execGit) Output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out: %w", strings.Join(args, " "), ctx.Err())
		}
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
