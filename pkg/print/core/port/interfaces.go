// Package port defines the core interfaces (ports) of the print pipeline.
// These interfaces abstract the engine's capabilities so components can be
// composed through Fx and replaced with stubs in tests.
package port

import (
	"context"
	"errors"
	"time"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

// ErrQueueSaturated is returned by Enqueue when the submission queue has
// reached its configured capacity. Submissions are rejected rather than
// blocked so the submitting boundary stays responsive under overload.
var ErrQueueSaturated = errors.New("submission queue is saturated")

// Executor runs a single external command under a hard wall-clock timeout
// and a process-wide concurrency gate.
type Executor interface {
	// Run launches the command, waits up to timeout and returns the
	// classified result. A nil error with a non-success Class never occurs;
	// failures are returned as classified errors carrying the ExecResult
	// diagnostics. Callers block while the concurrency gate is saturated.
	Run(ctx context.Context, command string, args []string, timeout time.Duration) (*model.ExecResult, error)
}

// Renderer turns one job's row records into the external tool's input
// representation, invokes the Executor and produces the final artifact.
type Renderer interface {
	// Produce renders the job and returns the path of the produced artifact.
	// Failures are returned as classified errors preserving the executor's
	// timeout / execution / missing-resource distinction.
	Produce(ctx context.Context, job *model.Job) (string, error)
}

// Enqueuer hands a created job over to the worker pool. Implementations must
// not block on rendering: a saturated queue is reported as an error.
type Enqueuer interface {
	// Enqueue submits the job identifier for asynchronous processing.
	Enqueue(jobID string) error
}
