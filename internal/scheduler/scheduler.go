// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/lukman83/promobot/internal/pipeline"
)

// DefaultSchedule runs the pipeline every two hours.
const DefaultSchedule = "@every 2h"

// Runner is the part of the pipeline the scheduler needs.
type Runner interface {
	Run(ctx context.Context) pipeline.Summary
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler firing runner on spec. An overlapping tick is dropped
// while the previous run is still in progress.
func New(spec string, runner Runner, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Default()
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	cl := cron.PrintfLogger(logger)
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	s := &Scheduler{cron: c, runner: runner, logger: logger}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	sum := s.runner.Run(s.ctx)
	switch {
	case sum.Skipped:
		s.logger.Printf("[scheduler] run %s skipped", sum.RunID)
	case sum.Error != "":
		s.logger.Printf("[scheduler] run %s failed: %s", sum.RunID, sum.Error)
	default:
		s.logger.Printf("[scheduler] run %s: keyword=%q published=%d failed=%d in %s",
			sum.RunID, sum.Keyword, sum.Published, sum.Failed, sum.Duration)
	}
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Printf("[scheduler] started, next run at %s", s.cron.Entries()[0].Next.Format("15:04:05"))
}

// Stop cancels any in-flight run and waits until it returns or ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
