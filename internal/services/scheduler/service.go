package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
)

// Service warms the report pipeline on a cron schedule so the morning
// and evening editions are already cached when readers arrive.
type Service struct {
	pipeline interfaces.ReportPipeline
	config   common.SchedulerConfig
	cron     *cron.Cron
	logger   arbor.ILogger

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr string
}

// NewService creates a new scheduler service
func NewService(pipeline interfaces.ReportPipeline, config common.SchedulerConfig, logger arbor.ILogger) *Service {
	return &Service{
		pipeline: pipeline,
		config:   config,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Start registers the warm job and starts the cron loop. Disabled
// schedulers start as a no-op so the caller does not need to branch.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, s.warm)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Status reports scheduler state for the status endpoint.
func (s *Service) Status() (running bool, lastRun time.Time, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.lastRun, s.lastErr
}

// warm runs one scheduled refresh. Failures are recorded and logged;
// the next tick tries again.
func (s *Service) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.logger.Info().Msg("Scheduled report refresh starting")
	_, err := s.pipeline.GetReport(ctx, interfaces.RequestOptions{ForceRefresh: true})

	s.mu.Lock()
	s.lastRun = time.Now()
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled report refresh failed")
		return
	}
	s.logger.Info().Msg("Scheduled report refresh complete")
}
