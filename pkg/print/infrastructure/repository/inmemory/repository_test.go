// Package inmemory_test provides unit tests for the in-memory job store.
package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	inmemory "github.com/tigerroll/labelpress/pkg/print/infrastructure/repository/inmemory"
	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
)

func newRequest(template string) *model.PrintRequest {
	return &model.PrintRequest{
		TemplateName: template,
		Rows:         []model.Row{{{Name: "ITEM", Value: "A001"}}},
		Copies:       1,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	jobID, err := repo.Create(ctx, newRequest("demo.glabels"))
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job, err := repo.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, model.JobStatusQueued, job.Status)
	assert.Equal(t, "demo_"+jobID+".pdf", job.OutputName)
}

func TestGet_Unknown(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()

	_, err := repo.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	jobID, err := repo.Create(ctx, newRequest("demo.glabels"))
	require.NoError(t, err)

	first, err := repo.Get(ctx, jobID)
	require.NoError(t, err)
	first.Status = model.JobStatusFailed
	first.Request.Rows[0][0].Value = "mutated"

	second, err := repo.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, second.Status)
	assert.Equal(t, "A001", second.Request.Rows[0][0].Value)
}

func TestLifecycleTransitions(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	jobID, err := repo.Create(ctx, newRequest("demo.glabels"))
	require.NoError(t, err)

	require.NoError(t, repo.MarkRunning(ctx, jobID))
	require.NoError(t, repo.MarkSucceeded(ctx, jobID, "/output/demo.pdf"))

	job, err := repo.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSucceeded, job.Status)
	assert.Equal(t, "/output/demo.pdf", job.OutputPath)
	assert.NotNil(t, job.CompletedAt)
}

func TestLifecycleViolationsAreInternalFaults(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	jobID, err := repo.Create(ctx, newRequest("demo.glabels"))
	require.NoError(t, err)

	// QUEUED cannot jump straight to a terminal state.
	err = repo.MarkSucceeded(ctx, jobID, "/out.pdf")
	require.Error(t, err)
	assert.Equal(t, exception.KindInternal, exception.KindOf(err))

	// Double pickup of the same identifier.
	require.NoError(t, repo.MarkRunning(ctx, jobID))
	err = repo.MarkRunning(ctx, jobID)
	require.Error(t, err)
	assert.Equal(t, exception.KindInternal, exception.KindOf(err))

	// Terminal jobs never transition again.
	require.NoError(t, repo.MarkFailed(ctx, jobID, "boom"))
	assert.Error(t, repo.MarkSucceeded(ctx, jobID, "/out.pdf"))
}

func TestMark_UnknownJob(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.MarkRunning(ctx, "nope"), repository.ErrJobNotFound)
	assert.ErrorIs(t, repo.MarkSucceeded(ctx, "nope", "/x"), repository.ErrJobNotFound)
	assert.ErrorIs(t, repo.MarkFailed(ctx, "nope", "x"), repository.ErrJobNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), repository.ErrJobNotFound)
}

func TestDelete(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	jobID, err := repo.Create(ctx, newRequest("demo.glabels"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, jobID))
	_, err = repo.Get(ctx, jobID)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestList_FilterAndOrder(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, newRequest("a.glabels"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := repo.Create(ctx, newRequest("b.glabels"))
	require.NoError(t, err)

	require.NoError(t, repo.MarkRunning(ctx, first))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest submission first.
	assert.Equal(t, second, all[0].ID)
	assert.Equal(t, first, all[1].ID)

	queued, err := repo.List(ctx, model.JobStatusQueued)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, second, queued[0].ID)
}

func TestEvictOlderThan(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	// An expired terminal job.
	expired, err := repo.Create(ctx, newRequest("old.glabels"))
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(ctx, expired))
	require.NoError(t, repo.MarkFailed(ctx, expired, "boom"))

	// A running job: never evicted regardless of age.
	running, err := repo.Create(ctx, newRequest("running.glabels"))
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(ctx, running))

	time.Sleep(50 * time.Millisecond)

	// A terminal job completed after the cutoff: too young to evict.
	young, err := repo.Create(ctx, newRequest("young.glabels"))
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(ctx, young))
	require.NoError(t, repo.MarkSucceeded(ctx, young, "/out/young.pdf"))

	evicted, err := repo.EvictOlderThan(ctx, 25*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, expired, evicted[0].ID)

	_, err = repo.Get(ctx, expired)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)

	// The other two survive.
	_, err = repo.Get(ctx, young)
	assert.NoError(t, err)
	_, err = repo.Get(ctx, running)
	assert.NoError(t, err)
}
