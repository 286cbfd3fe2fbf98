// Package git provides a thin wrapper around the git binary and go-git,
// modeled on a command-runner pattern: every invocation goes through
// CommandRunner so callers never build exec.Cmd by hand.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"workstack.dev/workstack/internal/wserrors"
)

// DefaultTimeout bounds a git invocation that doesn't carry its own deadline.
const DefaultTimeout = 5 * time.Minute

// CommandRunner executes git commands rooted at a working directory.
type CommandRunner struct {
	WorkingDir string
}

// NewCommandRunner returns a runner rooted at dir.
func NewCommandRunner(dir string) *CommandRunner {
	return &CommandRunner{WorkingDir: dir}
}

// Run executes `git <args...>` and returns trimmed stdout.
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	out, err := r.runRaw(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RunRaw executes `git <args...>` and returns stdout untrimmed.
func (r *CommandRunner) RunRaw(ctx context.Context, args ...string) (string, error) {
	return r.runRaw(ctx, args...)
}

// RunLines executes `git <args...>` and splits trimmed stdout on newlines.
func (r *CommandRunner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	out, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (r *CommandRunner) runRaw(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.WorkingDir != "" {
		cmd.Dir = r.WorkingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := 1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		wrapped := wserrors.ExternalFailed("git "+strings.Join(args, " "), exitCode, err)
		wrapped.Message = wrapped.Message + "\n" + stderr.String()
		return "", wrapped
	}
	return stdout.String(), nil
}

// LogEntry is one commit as rendered by `git log` for display purposes.
type LogEntry struct {
	ShortSHA     string
	Message      string
	Author       string
	RelativeDate string
}
