// Package model defines the domain model of the labelpress print pipeline:
// the print request, the job lifecycle record and the result of an external
// renderer execution.
package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is a type representing the lifecycle state of a print job.
type JobStatus string

const (
	// JobStatusQueued is the initial state of every submitted job.
	JobStatusQueued JobStatus = "QUEUED"
	// JobStatusRunning indicates a worker has picked the job up.
	JobStatusRunning JobStatus = "RUNNING"
	// JobStatusSucceeded is the terminal state of a job whose artifact was
	// produced.
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	// JobStatusFailed is the terminal state of a job whose render attempt
	// failed. The failure summary is recorded on the job.
	JobStatusFailed JobStatus = "FAILED"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is a terminal state. Terminal jobs
// never transition again; they only leave the store through retention
// eviction.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// validJobTransitions holds the allowed lifecycle transitions. The lifecycle
// is strictly monotonic: QUEUED -> RUNNING -> {SUCCEEDED, FAILED}.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobStatusQueued:  {JobStatusRunning},
	JobStatusRunning: {JobStatusSucceeded, JobStatusFailed},
}

// isValidJobTransition checks whether the transition from current to next is
// permitted by the lifecycle.
func isValidJobTransition(current, next JobStatus) bool {
	for _, allowed := range validJobTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Field is a single named value inside a row. Rows are ordered slices of
// fields rather than Go maps so that the first-occurrence column order of
// the intermediate table is observable and reproducible.
type Field struct {
	Name  string
	Value string
}

// Row is one label record: an ordered list of named values.
type Row []Field

// Get returns the value of the named field and whether it is present.
func (r Row) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// PrintRequest is the validated payload of one print submission, as handed
// over by the request-handling boundary.
type PrintRequest struct {
	// TemplateName is the renderer template filename (e.g. "demo.glabels").
	// It is resolved to a filesystem path by the template storage adapter.
	TemplateName string
	// Rows is the ordered list of label records to render.
	Rows []Row
	// Copies is the number of copies per record. Values above 1 are forwarded
	// to the external renderer unmodified.
	Copies int
}

// Job is the lifecycle record of one print request from submission to its
// terminal outcome. The job store owns the authoritative copy; after creation
// a job is append-only except for its lifecycle transitions.
type Job struct {
	// ID is the opaque identifier allocated at submission time.
	ID string
	// Status is the current lifecycle state.
	Status JobStatus
	// Request is the original submission payload needed to perform the work.
	Request *PrintRequest
	// OutputName is the expected artifact filename, computed at submission.
	// It is present even when the job later fails.
	OutputName string
	// OutputPath is the location of the produced artifact. Only set on
	// success.
	OutputPath string
	// ErrorSummary is the human-readable failure summary. Only set on
	// failure.
	ErrorSummary string
	// SubmittedAt is the submission timestamp.
	SubmittedAt time.Time
	// CompletedAt is the completion timestamp. Nil until the job reaches a
	// terminal state.
	CompletedAt *time.Time
}

// unsafeFilenameChars matches every character not allowed in generated
// artifact filenames.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ArtifactName derives the artifact filename for a job deterministically
// from the template name and the job identifier. The template stem is
// sanitized so that a template name can never smuggle path fragments into
// the artifact directory.
func ArtifactName(templateName, jobID string) string {
	base := strings.TrimSuffix(filepath.Base(templateName), filepath.Ext(templateName))
	return unsafeFilenameChars.ReplaceAllString(base, "_") + "_" + jobID + ".pdf"
}

// NewJob creates a new Job in the QUEUED state with a freshly allocated
// identifier and its artifact name already assigned.
func NewJob(req *PrintRequest) *Job {
	id := uuid.New().String()
	return &Job{
		ID:          id,
		Status:      JobStatusQueued,
		Request:     req,
		OutputName:  ArtifactName(req.TemplateName, id),
		SubmittedAt: time.Now(),
	}
}

// TransitionTo safely transitions the state of the Job. It returns an error
// if the transition is not permitted by the lifecycle; the status is left
// unchanged in that case.
func (j *Job) TransitionTo(next JobStatus) error {
	if !isValidJobTransition(j.Status, next) {
		return fmt.Errorf("Job (ID: %s): Invalid state transition: %s -> %s", j.ID, j.Status, next)
	}
	j.Status = next
	return nil
}

// MarkAsSucceeded transitions the job to SUCCEEDED, recording the artifact
// location and the completion timestamp.
func (j *Job) MarkAsSucceeded(outputPath string) error {
	if err := j.TransitionTo(JobStatusSucceeded); err != nil {
		return err
	}
	j.OutputPath = outputPath
	now := time.Now()
	j.CompletedAt = &now
	return nil
}

// MarkAsFailed transitions the job to FAILED, recording the failure summary
// and the completion timestamp.
func (j *Job) MarkAsFailed(summary string) error {
	if err := j.TransitionTo(JobStatusFailed); err != nil {
		return err
	}
	j.ErrorSummary = summary
	now := time.Now()
	j.CompletedAt = &now
	return nil
}

// Clone returns a deep copy of the job so callers never alias the
// store-owned record.
func (j *Job) Clone() *Job {
	clone := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		clone.CompletedAt = &t
	}
	if j.Request != nil {
		req := *j.Request
		req.Rows = make([]Row, len(j.Request.Rows))
		for i, row := range j.Request.Rows {
			req.Rows[i] = append(Row(nil), row...)
		}
		clone.Request = &req
	}
	return &clone
}

// ExecClass classifies the outcome of one external renderer execution.
type ExecClass string

const (
	// ExecSuccess indicates the process exited with status zero.
	ExecSuccess ExecClass = "SUCCESS"
	// ExecFailure indicates the process ran and exited non-zero.
	ExecFailure ExecClass = "FAILURE"
	// ExecTimeout indicates the process exceeded its wall-clock deadline and
	// was killed.
	ExecTimeout ExecClass = "TIMEOUT"
	// ExecMissing indicates the executable or a required input was absent
	// before launch.
	ExecMissing ExecClass = "MISSING"
)

// ExecResult is the transient outcome of one external renderer execution.
// It is folded into the Job by the worker and never persisted independently.
type ExecResult struct {
	// Class is the exit classification.
	Class ExecClass
	// ExitCode is the process exit status. Only meaningful for ExecFailure.
	ExitCode int
	// Output is the combined stdout/stderr capture, truncated to the
	// configured budget.
	Output string
	// Truncated reports whether the capture was cut at the budget.
	Truncated bool
	// Duration is the observed wall-clock run time.
	Duration time.Duration
}
