package metrics

import (
	"github.com/m-lab/mlab-metrics-api/internal/db"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
)

func Init() {
	l := logger.Get("metrics")

	if err := db.EnsureSchema(db.DB, "metrics"); err != nil {
		l.Fatal().Err(err).Msg("failed to create metrics schema")
	}

	if err := db.DB.AutoMigrate(&Metric{}, &MetricValue{}); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate metric tables")
	}
}
