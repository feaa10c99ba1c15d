// Package worker implements the bounded worker pool that drains the
// submission queue and drives jobs through the renderer into a terminal
// state.
package worker

import (
	"context"
	"sync"
	"time"

	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

const moduleName = "worker"

// Pool is a fixed-size set of workers draining one submission queue. Each
// worker owns a dequeued job identifier for the whole processing attempt,
// which is what makes per-job lifecycle transitions strictly ordered without
// per-job locks.
type Pool struct {
	queue    chan string
	store    repository.JobRepository
	renderer port.Renderer
	recorder metrics.MetricRecorder
	size     int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Verify that Pool implements the port.Enqueuer interface.
var _ port.Enqueuer = (*Pool)(nil)

// NewPool creates a new worker pool sized by the configuration. The queue
// capacity bounds how many submissions may be pending at once.
func NewPool(
	jobs *config.JobsConfig,
	store repository.JobRepository,
	renderer port.Renderer,
	recorder metrics.MetricRecorder,
) *Pool {
	capacity := jobs.QueueCapacity
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{
		queue:    make(chan string, capacity),
		store:    store,
		renderer: renderer,
		recorder: recorder,
		size:     jobs.EffectiveWorkers(),
	}
}

// Enqueue submits a job identifier for asynchronous processing. It never
// blocks: a saturated queue yields port.ErrQueueSaturated.
func (p *Pool) Enqueue(jobID string) error {
	select {
	case p.queue <- jobID:
		p.recorder.RecordQueueDepth(context.Background(), len(p.queue))
		return nil
	default:
		logger.Warnf("Worker pool: submission queue saturated (capacity %d), rejecting job %s.", cap(p.queue), jobID)
		return port.ErrQueueSaturated
	}
}

// Start launches the workers. It is idempotent only across a Start/Stop
// pair; a pool is not restartable.
func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for wid := 0; wid < p.size; wid++ {
		p.wg.Add(1)
		go p.worker(ctx, wid)
	}
	logger.Infof("Worker pool: started with %d workers (queue capacity %d).", p.size, cap(p.queue))
}

// Stop signals the workers and waits for them to finish their current job,
// up to the deadline of ctx.
func (p *Pool) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Infof("Worker pool: stopped.")
		return nil
	case <-ctx.Done():
		logger.Warnf("Worker pool: shutdown deadline reached before all workers finished.")
		return ctx.Err()
	}
}

// worker is one consumer loop. It dequeues an identifier, processes it to a
// terminal state and loops; it only exits when the pool context is
// cancelled.
func (p *Pool) worker(ctx context.Context, wid int) {
	defer p.wg.Done()
	logger.Debugf("Worker-%d started.", wid)

	for {
		select {
		case <-ctx.Done():
			logger.Debugf("Worker-%d stopped.", wid)
			return
		case jobID := <-p.queue:
			p.recorder.RecordQueueDepth(ctx, len(p.queue))
			p.process(ctx, wid, jobID)
		}
	}
}

// process drives one job from QUEUED to a terminal state. Whatever happens
// inside the renderer, the job ends up terminal and the worker survives.
func (p *Pool) process(ctx context.Context, wid int, jobID string) {
	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		// A queued identifier without a record means the store and the queue
		// disagree; nothing to transition, nothing to render.
		logger.Errorf("Worker-%d: no job record for queued id %s: %v", wid, jobID, err)
		return
	}

	if err := p.store.MarkRunning(ctx, jobID); err != nil {
		logger.Errorf("Worker-%d: cannot mark job %s running: %v", wid, jobID, err)
		return
	}
	p.recorder.RecordJobStart(ctx, job)
	logger.Debugf("Worker-%d: START job %s (template '%s').", wid, jobID, job.Request.TemplateName)

	start := time.Now()
	outputPath, renderErr := p.render(ctx, job)
	elapsed := time.Since(start)

	if renderErr != nil {
		summary := exception.Summarize(renderErr)
		if err := p.store.MarkFailed(ctx, jobID, summary); err != nil {
			logger.Errorf("Worker-%d: cannot mark job %s failed: %v", wid, jobID, err)
		}
		job.Status = model.JobStatusFailed
		logger.Infof("Worker-%d: job %s failed after %v: %s", wid, jobID, elapsed, summary)
	} else {
		if err := p.store.MarkSucceeded(ctx, jobID, outputPath); err != nil {
			logger.Errorf("Worker-%d: cannot mark job %s succeeded: %v", wid, jobID, err)
		}
		job.Status = model.JobStatusSucceeded
		logger.Infof("Worker-%d: job %s completed in %v -> %s", wid, jobID, elapsed, outputPath)
	}
	p.recorder.RecordJobEnd(ctx, job, elapsed)
}

// render invokes the renderer with a recover boundary: a panicking render
// attempt is converted into an internal-kind error so one bad job can never
// crash a worker or stall the pool.
func (p *Pool) render(ctx context.Context, job *model.Job) (outputPath string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Worker: panic recovered while rendering job %s: %v", job.ID, r)
			err = exception.Newf(moduleName, exception.KindInternal, "unexpected fault while rendering job %s: %v", job.ID, r)
		}
	}()
	return p.renderer.Produce(ctx, job)
}
