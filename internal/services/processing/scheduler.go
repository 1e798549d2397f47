package processing

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// Scheduler periodically re-embeds documents left behind by an embedding
// model change. Runs never overlap; a run still in flight when the next
// tick fires is skipped.
type Scheduler struct {
	ingest   interfaces.IngestService
	config   *common.ProcessingConfig
	cron     *cron.Cron
	logger   arbor.ILogger
	mu       sync.Mutex
	running  bool
	inFlight bool
}

func NewScheduler(ingest interfaces.IngestService, config *common.ProcessingConfig, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		ingest: ingest,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the cron entry and begins ticking. Disabled configs make
// Start a no-op.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Re-embedding scheduler disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, s.run); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Int("limit", s.config.Limit).
		Msg("Re-embedding scheduler started")

	return nil
}

// Stop halts the ticker and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Re-embedding scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous re-embedding run still in flight, skipping")
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if err := s.ingest.ProcessPending(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Re-embedding run failed")
	}
}
