// Package executor runs the external label renderer as a subprocess under a
// hard wall-clock timeout and a process-wide concurrency gate, and classifies
// every outcome into the pipeline's failure taxonomy.
package executor

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

const moduleName = "executor"

// truncationMarker is appended to a capture that was cut at the budget.
const truncationMarker = "... [truncated]"

// DefaultCaptureLimit is the default byte budget for the combined
// stdout/stderr capture of one execution.
const DefaultCaptureLimit = 4096

// boundedBuffer collects process output up to a fixed byte budget and
// discards the rest. Unbounded buffering of subprocess output is disallowed;
// a pathological renderer must not grow the service's memory.
type boundedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	limit     int
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

// Write implements io.Writer. Writes beyond the budget are counted but not
// stored, so the process never blocks on a full pipe.
func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.limit - len(b.buf)
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		b.truncated = true
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the capture, with the truncation marker appended when the
// budget was exceeded.
func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.truncated {
		return string(b.buf) + truncationMarker
	}
	return string(b.buf)
}

// Truncated reports whether the capture was cut at the budget.
func (b *boundedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}

// CommandExecutor is the subprocess execution wrapper of the print pipeline.
// A weighted semaphore bounds how many external processes may be in flight
// process-wide, independent of how many jobs the worker pool considers
// running. Callers block while the gate is saturated; they are never
// rejected.
type CommandExecutor struct {
	gate         *semaphore.Weighted
	captureLimit int
}

// Verify that CommandExecutor implements the port.Executor interface.
var _ port.Executor = (*CommandExecutor)(nil)

// NewCommandExecutor creates a new CommandExecutor.
// concurrency is the maximum number of simultaneously in-flight external
// processes; values below 1 are coerced to 1. captureLimit is the byte
// budget for combined stdout/stderr capture; values below 1 fall back to
// DefaultCaptureLimit.
func NewCommandExecutor(concurrency int, captureLimit int) *CommandExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	if captureLimit < 1 {
		captureLimit = DefaultCaptureLimit
	}
	return &CommandExecutor{
		gate:         semaphore.NewWeighted(int64(concurrency)),
		captureLimit: captureLimit,
	}
}

// Run launches the command and waits up to timeout for it to complete.
//
// The outcome is classified into the pipeline taxonomy:
//   - success: exit status zero, the ExecResult is returned with a nil error;
//   - timeout: the deadline elapsed, the process was killed, a KindTimeout
//     error is returned;
//   - execution: the process exited non-zero, a KindExecution error carrying
//     the exit code and the truncated capture is returned;
//   - missing-resource: the executable could not be found before launch, a
//     KindMissingResource error is returned;
//   - internal: any other launch failure.
//
// The semaphore permit is released on every exit path.
func (e *CommandExecutor) Run(ctx context.Context, command string, args []string, timeout time.Duration) (*model.ExecResult, error) {
	if timeout <= 0 {
		return nil, exception.Newf(moduleName, exception.KindInternal, "non-positive timeout %v for command %q", timeout, command)
	}

	// Block until a slot is free. A cancelled caller context is the only way
	// out of a saturated gate.
	if err := e.gate.Acquire(ctx, 1); err != nil {
		return nil, exception.New(moduleName, exception.KindInternal, "cancelled while waiting for an execution slot", err)
	}
	defer e.gate.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	capture := newBoundedBuffer(e.captureLimit)
	cmd := exec.CommandContext(runCtx, command, args...)
	cmd.Stdout = capture
	cmd.Stderr = capture

	start := time.Now()
	logger.Debugf("Executor: launching %q with %d args (timeout %v).", command, len(args), timeout)

	err := cmd.Run()
	elapsed := time.Since(start)

	result := &model.ExecResult{
		Output:    capture.String(),
		Truncated: capture.Truncated(),
		Duration:  elapsed,
	}

	switch {
	case err == nil:
		result.Class = model.ExecSuccess
		logger.Debugf("Executor: %q completed in %v.", command, elapsed)
		return result, nil

	case runCtx.Err() == context.DeadlineExceeded:
		// The process was killed by the context; the exit error it produced
		// is noise, the classification is a timeout.
		result.Class = model.ExecTimeout
		logger.Warnf("Executor: %q exceeded its %v deadline and was terminated.", command, timeout)
		return result, exception.Newf(moduleName, exception.KindTimeout, "command %q exceeded its %v deadline", command, timeout).
			WithOutput(result.Output)

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Class = model.ExecFailure
			result.ExitCode = exitErr.ExitCode()
			logger.Warnf("Executor: %q exited with code %d after %v.", command, result.ExitCode, elapsed)
			return result, exception.Newf(moduleName, exception.KindExecution, "command %q exited with code %d", command, result.ExitCode).
				WithExitCode(result.ExitCode).
				WithOutput(result.Output)
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			result.Class = model.ExecMissing
			logger.Warnf("Executor: command %q not found.", command)
			return result, exception.New(moduleName, exception.KindMissingResource,
				"command "+command+" could not be found", err)
		}
		result.Class = model.ExecFailure
		logger.Errorf("Executor: %q failed to launch: %v", command, err)
		return result, exception.New(moduleName, exception.KindInternal, "command "+command+" failed to launch", err)
	}
}
