// Package sweeper implements the retention sweeper that periodically evicts
// expired terminal jobs from the store and, when configured, deletes their
// artifacts.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	storage "github.com/tigerroll/labelpress/pkg/print/adapter/storage"
	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// Sweeper removes terminal jobs whose completion time has fallen outside the
// retention window. It runs on a fixed interval for the lifetime of the
// application; a failing sweep is logged and the next tick runs regardless.
type Sweeper struct {
	store            repository.JobRepository
	ws               *storage.Workspaces
	recorder         metrics.MetricRecorder
	retention        time.Duration
	interval         time.Duration
	cleanupArtifacts bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a retention sweeper from the jobs configuration.
func NewSweeper(
	jobs *config.JobsConfig,
	store repository.JobRepository,
	ws *storage.Workspaces,
	recorder metrics.MetricRecorder,
) *Sweeper {
	return &Sweeper{
		store:            store,
		ws:               ws,
		recorder:         recorder,
		retention:        jobs.RetentionAge(),
		interval:         jobs.SweepInterval(),
		cleanupArtifacts: jobs.CleanupArtifacts,
	}
}

// Start launches the periodic sweep loop.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)
	logger.Infof("Retention sweeper: started (retention %v, interval %v, cleanup_artifacts=%t).",
		s.retention, s.interval, s.cleanupArtifacts)
}

// Stop terminates the sweep loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Infof("Retention sweeper: stopped.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce performs a single sweep. It never propagates an error and never
// lets a panic escape into the loop.
func (s *Sweeper) sweepOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Retention sweeper: panic recovered during sweep: %v", r)
		}
	}()

	evicted, err := s.store.EvictOlderThan(ctx, s.retention)
	if err != nil {
		logger.Errorf("Retention sweeper: eviction failed: %v", err)
		return
	}
	if len(evicted) == 0 {
		logger.Debugf("Retention sweeper: nothing to evict.")
		return
	}

	s.recorder.RecordEviction(ctx, len(evicted))

	var errs *multierror.Error
	removed := 0
	if s.cleanupArtifacts {
		for _, job := range evicted {
			if job.OutputName == "" {
				continue
			}
			if err := s.ws.Artifacts.Remove(job.OutputName); err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			removed++
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		logger.Warnf("Retention sweeper: evicted %d jobs, removed %d artifacts, some removals failed: %v",
			len(evicted), removed, err)
		return
	}
	logger.Infof("Retention sweeper: evicted %d expired jobs (artifacts removed: %d).", len(evicted), removed)
}
