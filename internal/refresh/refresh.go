package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/m-lab/mlab-metrics-api/internal/locales"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"github.com/m-lab/mlab-metrics-api/internal/telemetry"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Rebuilder builds and publishes a fresh locale index, returning how many
// locales it holds. A failed rebuild must leave the served index untouched.
type Rebuilder func() (int, error)

// Refresher rebuilds the locale index on demand and records each attempt.
// Overlapping triggers (cron firing while an admin hits the endpoint) are
// serialized; each rebuild works on its own store snapshot.
type Refresher struct {
	db      *gorm.DB
	rebuild Rebuilder
	logger  zerolog.Logger
	mu      sync.Mutex
}

// New returns a Refresher that rebuilds from the locale store. db may be nil
// in tests, which disables run recording.
func New(d *gorm.DB) *Refresher {
	return &Refresher{
		db: d,
		rebuild: func() (int, error) {
			ix, err := locales.Rebuild(d)
			if err != nil {
				return 0, err
			}
			return ix.Len(), nil
		},
		logger: logger.Get("refresh"),
	}
}

// NewWithRebuilder returns a Refresher driven by a custom rebuild function.
func NewWithRebuilder(d *gorm.DB, rebuild Rebuilder) *Refresher {
	return &Refresher{db: d, rebuild: rebuild, logger: logger.Get("refresh")}
}

// Run performs one refresh: load, validate, publish. The returned RefreshRun
// reflects the attempt whether or not it succeeded.
func (rf *Refresher) Run(ctx context.Context) (RefreshRun, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	run := RefreshRun{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
	}

	loaded, err := rf.rebuild()
	run.DurationMs = time.Since(run.StartedAt).Milliseconds()
	if err != nil {
		run.Errors = pq.StringArray{err.Error()}
		telemetry.RefreshRunsTotal.WithLabelValues("error").Inc()
		rf.logger.Error().Err(err).Str("run_id", run.ID.String()).
			Msg("locale index refresh failed; previous index kept")
	} else {
		run.OK = true
		run.LocalesLoaded = loaded
		telemetry.RefreshRunsTotal.WithLabelValues("ok").Inc()
		rf.logger.Info().Str("run_id", run.ID.String()).Int("locales", loaded).
			Int64("duration_ms", run.DurationMs).Msg("locale index refreshed")
	}

	rf.record(ctx, run)
	return run, err
}

// record persists the run. Best effort: refresh history must never block or
// fail a rebuild.
func (rf *Refresher) record(ctx context.Context, run RefreshRun) {
	if rf.db == nil {
		return
	}
	if err := rf.db.WithContext(ctx).Create(&run).Error; err != nil {
		rf.logger.Error().Err(err).Msg("failed to record refresh run")
	}
}

// RecentRuns returns the latest refresh attempts, newest first.
func (rf *Refresher) RecentRuns(ctx context.Context, limit int) ([]RefreshRun, error) {
	if rf.db == nil {
		return nil, nil
	}
	var runs []RefreshRun
	err := rf.db.WithContext(ctx).
		Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
