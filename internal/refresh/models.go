package refresh

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RefreshRun records one locale index rebuild attempt.
type RefreshRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StartedAt     time.Time      `json:"started_at"`
	DurationMs    int64          `json:"duration_ms"`
	LocalesLoaded int            `json:"locales_loaded"`
	OK            bool           `json:"ok"`
	Errors        pq.StringArray `gorm:"type:text[]" json:"errors"`
}

func (RefreshRun) TableName() string {
	return "refresh.refresh_runs"
}
