package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one pipeline run.
type Job interface {
	Run(ctx context.Context, now time.Time) error
}

// Scheduler runs the job on a cron spec in the reference timezone.
// Overlapping runs are skipped.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Ctx  context.Context
	log  *slog.Logger
	now  func() time.Time
}

// NewScheduler creates a new Scheduler. Specs have six fields, seconds first.
func NewScheduler(ctx context.Context, job Job, loc *time.Location, log *slog.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelDebug))
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Job: job,
		Ctx: ctx,
		log: log,
		now: time.Now,
	}
}

// Register adds the publish job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { _ = s.RunNow() }); err != nil {
		return fmt.Errorf("register publish task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow executes the job immediately (for manual trigger / RUN_ON_START).
// Failures are logged and returned.
func (s *Scheduler) RunNow() error {
	started := s.now()
	s.log.Info("running publish task")
	if err := s.Job.Run(s.Ctx, started); err != nil {
		s.log.Error("publish task failed", "err", err, "elapsed", time.Since(started))
		return err
	}
	s.log.Info("publish task done", "elapsed", time.Since(started))
	return nil
}
