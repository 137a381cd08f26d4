package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

const stderrTailLines = 12

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// CommandExecutor runs binaries with os/exec and captures stderr.
type CommandExecutor struct{}

// Run executes binary and returns its stderr output alongside any error.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// ClassifyExec converts a process error into a marked error. A missing binary
// maps to ErrExecutableNotFound and a non-zero exit to ErrExecutionFailed with
// the stderr tail attached. Cancellation and anything else map to ErrUnknown.
func ClassifyExec(stage, binary string, stderr string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrUnknown, stage, binary, "interrupted", err)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return Wrap(ErrExecutableNotFound, stage, binary, "executable unavailable", err)
	case errors.As(err, &exitErr):
		msg := fmt.Sprintf("exit status %d", exitErr.ExitCode())
		if tail := StderrTail(stderr, stderrTailLines); tail != "" {
			msg += ": " + tail
		}
		return Wrap(ErrExecutionFailed, stage, binary, msg, nil)
	default:
		return Wrap(ErrUnknown, stage, binary, "command failed", err)
	}
}

// StderrTail returns the last n non-empty lines of output joined by " | ".
func StderrTail(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if n > 0 && len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}
