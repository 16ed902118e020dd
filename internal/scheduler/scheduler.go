package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

// Runner executes one batch.
type Runner interface {
	Run(ctx context.Context) (power.RunReport, error)
}

// Scheduler periodically triggers batch runs. Runs never overlap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(runner Runner, interval time.Duration, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run starts immediately. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.log.Info().Msg("scheduler: running snapshot job")

		report, err := s.runner.Run(ctx)
		if err != nil {
			s.log.Error().Err(err).Str("run_id", report.RunID).Msg("scheduler: snapshot job failed")
			return
		}
		s.log.Info().
			Str("run_id", report.RunID).
			Int("records", report.Succeeded).
			Msg("scheduler: completed snapshot job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
