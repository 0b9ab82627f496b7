package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"albumus/internal/faults"
	"albumus/internal/logging"
)

// Exit codes reported for outcomes that have no process exit status.
const (
	ExitStartFailure = 1
	ExitTimeout      = 124
	ExitInterrupted  = 130
)

const defaultBinary = "ffmpeg"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger routes encoder output lines to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner wraps ffmpeg CLI invocations.
type Runner struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a runner. timeoutSeconds <= 0 disables the per-invocation
// timeout.
func New(binary string, timeoutSeconds int, opts ...Option) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	r := &Runner{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the configured executable.
func (r *Runner) Binary() string { return r.binary }

// Run executes ffmpeg with args, calling onLine for every output line in real
// time. The returned exit code is 0 only when err is nil.
func (r *Runner) Run(ctx context.Context, args []string, onLine func(string)) (int, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running ffmpeg", logging.String("binary", r.binary), logging.String("args", strings.Join(args, " ")))

	err := r.exec.Run(runCtx, r.binary, args, func(line string) {
		logger.Debug(line, logging.String(logging.FieldStream, "ffmpeg"))
		if onLine != nil {
			onLine(line)
		}
	})
	if err == nil {
		return 0, nil
	}

	switch {
	case ctx.Err() != nil:
		return ExitInterrupted, faults.Wrap(faults.ErrInterrupted, "encode", "ffmpeg", "interrupted by user", faults.ErrEncode)
	case runCtx.Err() != nil:
		return ExitTimeout, faults.Wrap(faults.ErrTimeout, "encode", "ffmpeg", fmt.Sprintf("exceeded %s", r.timeout), faults.ErrEncode)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, faults.Wrap(faults.ErrEncode, "encode", "ffmpeg", fmt.Sprintf("exited with code %d", exitErr.Code), nil)
	}
	return ExitStartFailure, faults.Wrap(faults.ErrEncode, "encode", "ffmpeg", "failed to run", err)
}

type commandExecutor struct{}

// Run starts binary with stdout and stderr on one pipe and forwards each line
// until the process exits.
func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	reader, writer, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("output pipe: %w", err)
	}
	defer reader.Close()

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.WaitDelay = 5 * time.Second
	if err := cmd.Start(); err != nil {
		writer.Close()
		return fmt.Errorf("start command: %w", err)
	}
	writer.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanLines)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && onLine != nil {
			onLine(line)
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("wait command: %w", waitErr)
	}
	if scanErr != nil {
		return fmt.Errorf("scan output: %w", scanErr)
	}
	return nil
}

// scanLines splits on \n, \r or \r\n.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		} else if data[i] == '\r' && i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
