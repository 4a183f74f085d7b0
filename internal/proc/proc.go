// Package proc runs external executables and captures their exit code and
// output. A non-zero exit is a normal result, not an error.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"negcheck/internal/logger"
)

// UnknownExitCode is reported when the process timed out, could not be
// started, or its status could not be read.
const UnknownExitCode = -1

// waitDelay bounds how long Wait blocks on inherited pipes after a kill.
const waitDelay = 2 * time.Second

// Result is the outcome of one invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Runner invokes executables.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec runs processes on the host. Timeout bounds each invocation; zero
// means no bound.
type Exec struct {
	Timeout time.Duration
}

// Run starts name with args, waits for it and returns its decoded, trimmed
// stdout and stderr. The error is non-nil only when the process could not
// be started or waited on.
func (e Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader("")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: UnknownExitCode}, fmt.Errorf("start %s: %w", name, err)
	}
	waitErr := cmd.Wait()

	res := Result{
		Stdout:   decode(stdout.Bytes()),
		Stderr:   decode(stderr.Bytes()),
		Duration: time.Since(started),
	}

	switch {
	case waitErr == nil:
		res.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = UnknownExitCode
		res.TimedOut = true
		res.Stderr = strings.TrimSpace(res.Stderr + "\n" + fmt.Sprintf("killed: timed out after %s", e.Timeout))
	default:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("wait %s: %w", name, waitErr)
		}
		res.ExitCode = exitCode(exitErr)
	}

	logger.Debug(ctx, "process finished",
		zap.String("path", name),
		zap.Strings("args", args),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
	)
	if res.TimedOut {
		logger.Warn(ctx, "process killed after timeout", zap.String("path", name), zap.Duration("timeout", e.Timeout))
	}

	return res, nil
}

// Convert removes any file at output, then runs converter with flags
// followed by input and output.
func Convert(ctx context.Context, r Runner, converter string, flags []string, input, output string) (Result, error) {
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return Result{ExitCode: UnknownExitCode}, fmt.Errorf("remove stale output: %w", err)
	}
	args := make([]string, 0, len(flags)+2)
	args = append(args, flags...)
	args = append(args, input, output)
	return r.Run(ctx, converter, args...)
}

// exitCode reports -N for a process terminated by signal N.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -int(status.Signal())
	}
	return exitErr.ExitCode()
}

// decode keeps invalid UTF-8 as replacement characters and trims whitespace.
func decode(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "�"))
}
