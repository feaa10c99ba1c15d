// Package renderer turns a job's row records into the external tool's input
// table, stages it in the spool area, invokes the executor and produces the
// final output artifact.
package renderer

import (
	"context"
	"fmt"
	"os"
	"time"

	storage "github.com/tigerroll/labelpress/pkg/print/adapter/storage"
	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

const moduleName = "renderer"

// LabelRenderer is the production implementation of port.Renderer. It stages
// the intermediate table, runs the configured external command through the
// executor and preserves the executor's failure classification for callers.
type LabelRenderer struct {
	executor port.Executor
	jobs     *config.JobsConfig
	renderer *config.RendererConfig
	ws       *storage.Workspaces
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
}

// Verify that LabelRenderer implements the port.Renderer interface.
var _ port.Renderer = (*LabelRenderer)(nil)

// NewLabelRenderer creates a new LabelRenderer.
func NewLabelRenderer(
	executor port.Executor,
	jobs *config.JobsConfig,
	renderer *config.RendererConfig,
	ws *storage.Workspaces,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *LabelRenderer {
	return &LabelRenderer{
		executor: executor,
		jobs:     jobs,
		renderer: renderer,
		ws:       ws,
		recorder: recorder,
		tracer:   tracer,
	}
}

// Produce renders the job and returns the path of the produced artifact.
//
// The intermediate table follows a scoped acquire/release pattern: it is
// staged before the executor runs and cleaned up on every exit path unless
// the keep-intermediates toggle retains it for diagnostics.
func (r *LabelRenderer) Produce(ctx context.Context, job *model.Job) (string, error) {
	ctx, finishSpan := r.tracer.StartJobSpan(ctx, job)
	defer finishSpan()

	req := job.Request
	if req == nil || len(req.Rows) == 0 {
		err := exception.Newf(moduleName, exception.KindInternal, "job %s carries no row data", job.ID)
		r.tracer.RecordError(ctx, moduleName, err)
		return "", err
	}

	// The template must exist before anything is launched: an absent
	// template is the submitter's mistake, not a renderer crash.
	templatePath, err := r.resolveTemplate(req.TemplateName)
	if err != nil {
		r.tracer.RecordError(ctx, moduleName, err)
		return "", err
	}

	outputPath, err := r.ws.Artifacts.Resolve(job.OutputName)
	if err != nil {
		err := exception.New(moduleName, exception.KindInternal, "failed to resolve output path for job "+job.ID, err)
		r.tracer.RecordError(ctx, moduleName, err)
		return "", err
	}

	tablePath, release, err := r.stageTable(job)
	if err != nil {
		r.tracer.RecordError(ctx, moduleName, err)
		return "", err
	}
	defer release()

	args := []string{
		"--input=" + tablePath,
		"--output=" + outputPath,
	}
	if req.Copies > 1 {
		args = append(args, fmt.Sprintf("--copies=%d", req.Copies))
	}
	args = append(args, templatePath)

	start := time.Now()
	logger.Debugf("Renderer: job %s rendering template '%s' (%d rows, copies=%d).",
		job.ID, req.TemplateName, len(req.Rows), req.Copies)

	result, err := r.executor.Run(ctx, r.renderer.Command, args, r.jobs.RenderTimeout())
	if result != nil {
		r.recorder.RecordExecDuration(ctx, result.Class, result.Duration)
	}
	if err != nil {
		// The executor already classified the failure; pass it through so
		// the worker can map timeout / execution / missing-resource
		// distinctly.
		logger.Errorf("Renderer: job %s failed after %v: %v", job.ID, time.Since(start), err)
		r.tracer.RecordError(ctx, moduleName, err)
		return "", err
	}

	logger.Infof("Renderer: job %s finished in %v -> %s", job.ID, time.Since(start), outputPath)
	return outputPath, nil
}

// resolveTemplate resolves the template name inside the template library and
// verifies the file exists.
func (r *LabelRenderer) resolveTemplate(templateName string) (string, error) {
	exists, err := r.ws.Templates.Exists(templateName)
	if err != nil {
		return "", exception.New(moduleName, exception.KindInternal, "failed to check template '"+templateName+"'", err)
	}
	if !exists {
		return "", exception.Newf(moduleName, exception.KindMissingResource, "template not found: %s", templateName)
	}
	return r.ws.Templates.Resolve(templateName)
}

// stageTable writes the job's intermediate table into the spool area and
// returns its path together with a release function. With keep-intermediates
// enabled the file is retained under a job-derived name and the release
// function only logs; otherwise a temporary file is used and the release
// function removes it.
func (r *LabelRenderer) stageTable(job *model.Job) (string, func(), error) {
	if r.jobs.KeepIntermediates {
		name := job.ID + ".csv"
		path, err := r.ws.Spool.Resolve(name)
		if err != nil {
			return "", nil, exception.New(moduleName, exception.KindInternal, "failed to resolve spool path for job "+job.ID, err)
		}
		f, err := os.Create(path)
		if err != nil {
			return "", nil, exception.New(moduleName, exception.KindInternal, "failed to create intermediate file for job "+job.ID, err)
		}
		if err := r.writeAndClose(f, job); err != nil {
			return "", nil, err
		}
		release := func() {
			logger.Debugf("Renderer: kept intermediate file %s.", path)
		}
		return path, release, nil
	}

	f, err := r.ws.Spool.CreateTemp("labels_" + job.ID + "_*.csv")
	if err != nil {
		return "", nil, exception.New(moduleName, exception.KindInternal, "failed to create intermediate file for job "+job.ID, err)
	}
	path := f.Name()
	if err := r.writeAndClose(f, job); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warnf("Renderer: cannot delete intermediate file %s: %v", path, rmErr)
		}
		return "", nil, err
	}
	release := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warnf("Renderer: cannot delete intermediate file %s: %v", path, err)
		} else {
			logger.Debugf("Renderer: deleted intermediate file %s.", path)
		}
	}
	return path, release, nil
}

// writeAndClose encodes the job's rows into f and closes it.
func (r *LabelRenderer) writeAndClose(f *os.File, job *model.Job) error {
	fieldNames, err := writeTable(f, job.Request.Rows)
	closeErr := f.Close()
	if err != nil {
		return exception.New(moduleName, exception.KindInternal, "failed to write intermediate table for job "+job.ID, err)
	}
	if closeErr != nil {
		return exception.New(moduleName, exception.KindInternal, "failed to close intermediate file for job "+job.ID, closeErr)
	}
	logger.Debugf("Renderer: staged %s with columns %v for job %s.", f.Name(), fieldNames, job.ID)
	return nil
}
