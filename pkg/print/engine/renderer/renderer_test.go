// Package renderer_test provides unit tests for the label renderer, using a
// stub executor so no external process is launched.
package renderer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "github.com/tigerroll/labelpress/pkg/print/adapter/storage"
	storageconfig "github.com/tigerroll/labelpress/pkg/print/adapter/storage/config"
	local "github.com/tigerroll/labelpress/pkg/print/adapter/storage/local"
	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
	renderer "github.com/tigerroll/labelpress/pkg/print/engine/renderer"
	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
)

// stubExecutor records the invocation and returns a canned outcome.
type stubExecutor struct {
	gotCommand string
	gotArgs    []string
	gotTimeout time.Duration
	calls      int
	result     *model.ExecResult
	err        error
}

func (s *stubExecutor) Run(ctx context.Context, command string, args []string, timeout time.Duration) (*model.ExecResult, error) {
	s.calls++
	s.gotCommand = command
	s.gotArgs = args
	s.gotTimeout = timeout
	return s.result, s.err
}

func newWorkspaces(t *testing.T) *storage.Workspaces {
	t.Helper()
	base := t.TempDir()

	newStore := func(name string) storage.Store {
		s, err := local.NewLocalStore(storageconfig.StorageConfig{
			Type:    local.ProviderType,
			BaseDir: filepath.Join(base, name),
		}, name)
		require.NoError(t, err)
		return s
	}
	return &storage.Workspaces{
		Templates: newStore("templates"),
		Spool:     newStore("spool"),
		Artifacts: newStore("artifacts"),
	}
}

func newTestRenderer(t *testing.T, exec *stubExecutor, jobs *config.JobsConfig) (*renderer.LabelRenderer, *storage.Workspaces) {
	t.Helper()
	ws := newWorkspaces(t)
	r := renderer.NewLabelRenderer(
		exec,
		jobs,
		&config.RendererConfig{Command: "glabels-3-batch", CaptureLimitBytes: 4096},
		ws,
		metrics.NewNoOpMetricRecorder(),
		metrics.NewNoOpTracer(),
	)
	return r, ws
}

func writeTemplate(t *testing.T, ws *storage.Workspaces, name string) string {
	t.Helper()
	path, err := ws.Templates.Resolve(name)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("<glabels/>"), 0644))
	return path
}

func newJob(copies int) *model.Job {
	return model.NewJob(&model.PrintRequest{
		TemplateName: "demo.glabels",
		Rows: []model.Row{
			{{Name: "ITEM", Value: "A001"}, {Name: "CODE", Value: "X123"}},
		},
		Copies: copies,
	})
}

func TestProduce_Success(t *testing.T) {
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecSuccess}}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, ws := newTestRenderer(t, exec, jobs)
	templatePath := writeTemplate(t, ws, "demo.glabels")

	job := newJob(1)
	outputPath, err := r.Produce(context.Background(), job)

	require.NoError(t, err)
	wantOutput, _ := ws.Artifacts.Resolve(job.OutputName)
	assert.Equal(t, wantOutput, outputPath)

	assert.Equal(t, "glabels-3-batch", exec.gotCommand)
	assert.Equal(t, 600*time.Second, exec.gotTimeout)
	require.Len(t, exec.gotArgs, 3)
	assert.Contains(t, exec.gotArgs[0], "--input=")
	assert.Equal(t, "--output="+wantOutput, exec.gotArgs[1])
	// The template path is the trailing positional argument.
	assert.Equal(t, templatePath, exec.gotArgs[2])
}

func TestProduce_CopiesFlagOnlyAboveOne(t *testing.T) {
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecSuccess}}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, ws := newTestRenderer(t, exec, jobs)
	writeTemplate(t, ws, "demo.glabels")

	_, err := r.Produce(context.Background(), newJob(3))
	require.NoError(t, err)
	assert.Contains(t, exec.gotArgs, "--copies=3")

	_, err = r.Produce(context.Background(), newJob(1))
	require.NoError(t, err)
	assert.NotContains(t, exec.gotArgs, "--copies=1")
}

func TestProduce_MissingTemplate(t *testing.T) {
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecSuccess}}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, _ := newTestRenderer(t, exec, jobs)

	_, err := r.Produce(context.Background(), newJob(1))

	require.Error(t, err)
	assert.True(t, exception.IsMissingResource(err))
	// The external tool is never launched for an absent template.
	assert.Equal(t, 0, exec.calls)
}

func TestProduce_EmptyRows(t *testing.T) {
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecSuccess}}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, ws := newTestRenderer(t, exec, jobs)
	writeTemplate(t, ws, "demo.glabels")

	job := model.NewJob(&model.PrintRequest{TemplateName: "demo.glabels", Copies: 1})
	_, err := r.Produce(context.Background(), job)

	require.Error(t, err)
	assert.Equal(t, exception.KindInternal, exception.KindOf(err))
	assert.Equal(t, 0, exec.calls)
}

func TestProduce_ExecutorErrorPassedThrough(t *testing.T) {
	execErr := exception.Newf("executor", exception.KindTimeout, "command exceeded its 1s deadline")
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecTimeout}, err: execErr}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, ws := newTestRenderer(t, exec, jobs)
	writeTemplate(t, ws, "demo.glabels")

	_, err := r.Produce(context.Background(), newJob(1))

	require.Error(t, err)
	// The classification must survive unwrapped so the worker can summarize
	// a timeout as a timeout.
	assert.True(t, exception.IsTimeout(err))
}

func TestProduce_IntermediateRemovedByDefault(t *testing.T) {
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecSuccess}}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, ws := newTestRenderer(t, exec, jobs)
	writeTemplate(t, ws, "demo.glabels")

	_, err := r.Produce(context.Background(), newJob(1))
	require.NoError(t, err)

	entries, err := os.ReadDir(ws.Spool.BaseDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProduce_IntermediateKeptWhenConfigured(t *testing.T) {
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecSuccess}}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600, KeepIntermediates: true}
	r, ws := newTestRenderer(t, exec, jobs)
	writeTemplate(t, ws, "demo.glabels")

	job := newJob(1)
	_, err := r.Produce(context.Background(), job)
	require.NoError(t, err)

	kept, err := ws.Spool.Exists(job.ID + ".csv")
	require.NoError(t, err)
	assert.True(t, kept)
}

func TestProduce_IntermediateRemovedOnFailure(t *testing.T) {
	execErr := exception.Newf("executor", exception.KindExecution, "command exited with code 2").WithExitCode(2)
	exec := &stubExecutor{result: &model.ExecResult{Class: model.ExecFailure, ExitCode: 2}, err: execErr}
	jobs := &config.JobsConfig{RenderTimeoutSeconds: 600}
	r, ws := newTestRenderer(t, exec, jobs)
	writeTemplate(t, ws, "demo.glabels")

	_, err := r.Produce(context.Background(), newJob(1))
	require.Error(t, err)

	entries, err := os.ReadDir(ws.Spool.BaseDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
