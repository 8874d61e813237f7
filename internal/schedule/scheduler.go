// Package schedule re-runs an evaluation at a fixed interval for watch mode.
package schedule

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Scheduler periodically re-runs a task. Nothing is persisted between cycles;
// each run produces a fresh result set.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    zerolog.Logger
	running   bool
}

// New creates a stopped Scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Start schedules task every interval and runs it once immediately.
func (s *Scheduler) Start(interval time.Duration, task func()) error {
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	// Singleton mode: a cycle that outlasts the interval must not overlap
	// the next one, or concurrent probes would skew each other's rates.
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info().Dur("interval", interval).Msg("watch scheduler started")

	// First run happens now rather than one interval from now.
	go task()

	return nil
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.running = false
	s.logger.Info().Msg("watch scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	return s.running
}
