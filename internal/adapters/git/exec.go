package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cctakt/cctakt/internal/core"
)

// gitCommandError wraps a non-zero git exit with its captured stderr, per
// spec's "every git invocation that returns non-zero yields a structured
// error with the captured stderr attached".
type gitCommandError struct {
	args   []string
	stderr string
	cause  error
}

func (e *gitCommandError) Error() string {
	return "git " + strings.Join(e.args, " ") + ": " + strings.TrimSpace(e.stderr)
}

func (e *gitCommandError) Unwrap() error { return e.cause }

// runGit executes git with args in dir, returning stdout as a string. A
// non-zero exit is surfaced as both a *gitCommandError (for callers that
// need the raw stderr) wrapped in a *core.DomainError (for the supervisor's
// generic error handling).
func runGit(ctx context.Context, dir string, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		gitErr := &gitCommandError{args: args, stderr: stderr.String(), cause: err}
		return "", core.ErrExecution(core.CodeGitFailed, gitErr.Error()).WithCause(gitErr)
	}
	return stdout.String(), nil
}
