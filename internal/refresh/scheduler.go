package refresh

import (
	"context"
	"os"

	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers locale index refreshes on a cron schedule, weekly by
// default. Scheduling mechanics live here; the Refresher knows nothing about
// when it runs.
type Scheduler struct {
	refresher *Refresher
	schedule  string
	cron      *cron.Cron
	logger    zerolog.Logger
}

// NewScheduler builds a Scheduler from the REFRESH_SCHEDULE environment
// variable (standard cron syntax or descriptors like "@weekly").
func NewScheduler(rf *Refresher) *Scheduler {
	schedule := os.Getenv("REFRESH_SCHEDULE")
	if schedule == "" {
		schedule = "@weekly"
	}

	return &Scheduler{
		refresher: rf,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger.Get("refresh-scheduler"),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		// Run already serializes overlapping triggers.
		_, _ = s.refresher.Run(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("refresh scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("refresh scheduler stopped")
}
