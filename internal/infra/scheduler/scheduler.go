// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"kashpages/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work; it receives the scheduler's context.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:    log.With("component", "scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under spec, a standard five-field expression or an
// "@every <duration>" descriptor. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.log.Info("job disabled", "job", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			s.log.Warn("job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.log.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels running jobs' context and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
