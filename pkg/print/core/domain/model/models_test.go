// Package model_test provides unit tests for the job lifecycle and the row
// representation.
package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

func newRequest() *model.PrintRequest {
	return &model.PrintRequest{
		TemplateName: "demo.glabels",
		Rows: []model.Row{
			{{Name: "ITEM", Value: "A001"}, {Name: "CODE", Value: "X123"}},
		},
		Copies: 1,
	}
}

func TestNewJob(t *testing.T) {
	job := model.NewJob(newRequest())

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusQueued, job.Status)
	assert.Equal(t, "demo_"+job.ID+".pdf", job.OutputName)
	assert.False(t, job.SubmittedAt.IsZero())
	assert.Nil(t, job.CompletedAt)
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "demo_abc.pdf", model.ArtifactName("demo.glabels", "abc"))

	// Directory components are stripped and unsafe characters replaced.
	assert.Equal(t, "we_ird__x.pdf", model.ArtifactName("lib/we ird!.glabels", "x"))
}

func TestJobLifecycle_ValidPath(t *testing.T) {
	job := model.NewJob(newRequest())

	assert.NoError(t, job.TransitionTo(model.JobStatusRunning))
	assert.NoError(t, job.MarkAsSucceeded("/output/demo.pdf"))

	assert.Equal(t, model.JobStatusSucceeded, job.Status)
	assert.Equal(t, "/output/demo.pdf", job.OutputPath)
	assert.NotNil(t, job.CompletedAt)
	assert.True(t, job.Status.IsTerminal())
}

func TestJobLifecycle_FailedPath(t *testing.T) {
	job := model.NewJob(newRequest())

	assert.NoError(t, job.TransitionTo(model.JobStatusRunning))
	assert.NoError(t, job.MarkAsFailed("renderer exited with code 2: bad template"))

	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, "renderer exited with code 2: bad template", job.ErrorSummary)
	assert.NotNil(t, job.CompletedAt)
}

func TestJobLifecycle_InvalidTransitions(t *testing.T) {
	// A queued job cannot jump straight to a terminal state.
	job := model.NewJob(newRequest())
	assert.Error(t, job.MarkAsSucceeded("/out.pdf"))
	assert.Error(t, job.MarkAsFailed("boom"))
	assert.Equal(t, model.JobStatusQueued, job.Status)

	// Terminal states never transition again.
	assert.NoError(t, job.TransitionTo(model.JobStatusRunning))
	assert.NoError(t, job.MarkAsSucceeded("/out.pdf"))
	assert.Error(t, job.TransitionTo(model.JobStatusRunning))
	assert.Error(t, job.MarkAsFailed("too late"))
	assert.Equal(t, model.JobStatusSucceeded, job.Status)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, model.JobStatusQueued.IsTerminal())
	assert.False(t, model.JobStatusRunning.IsTerminal())
	assert.True(t, model.JobStatusSucceeded.IsTerminal())
	assert.True(t, model.JobStatusFailed.IsTerminal())
}

func TestRowGet(t *testing.T) {
	row := model.Row{{Name: "ITEM", Value: "A001"}, {Name: "CODE", Value: ""}}

	v, ok := row.Get("ITEM")
	assert.True(t, ok)
	assert.Equal(t, "A001", v)

	v, ok = row.Get("CODE")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = row.Get("MISSING")
	assert.False(t, ok)
}

func TestClone_IsDeep(t *testing.T) {
	job := model.NewJob(newRequest())
	assert.NoError(t, job.TransitionTo(model.JobStatusRunning))
	assert.NoError(t, job.MarkAsSucceeded("/out.pdf"))

	clone := job.Clone()
	clone.Status = model.JobStatusFailed
	clone.Request.Rows[0][0].Value = "mutated"
	*clone.CompletedAt = clone.CompletedAt.Add(1)

	assert.Equal(t, model.JobStatusSucceeded, job.Status)
	assert.Equal(t, "A001", job.Request.Rows[0][0].Value)
	assert.NotEqual(t, *clone.CompletedAt, *job.CompletedAt)
}
