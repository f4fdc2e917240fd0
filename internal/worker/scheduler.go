package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/zlog"
)

// Job is a periodic task. It receives a context bounded by the job timeout.
type Job func(ctx context.Context) error

// Scheduler triggers jobs on cron specs. Runs of the same job may overlap;
// each run is bounded by its own timeout.
type Scheduler struct {
	engine *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		engine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
	}
}

// Add registers a job. spec accepts standard five-field expressions and
// descriptors such as "@every 30s".
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	if _, err := s.engine.AddFunc(spec, wrap(name, timeout, job)); err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	return nil
}

func wrap(name string, timeout time.Duration, job Job) func() {
	return func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job(ctx); err != nil {
			zlog.Logger.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}

		zlog.Logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
	}
}

func (s *Scheduler) Start() {
	s.engine.Start()
	zlog.Logger.Info().Int("jobs", len(s.engine.Entries())).Msg("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.engine.Stop().Done()
	zlog.Logger.Info().Msg("scheduler stopped")
}
