package refresh

import (
	"github.com/m-lab/mlab-metrics-api/internal/db"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
)

func Init() {
	l := logger.Get("refresh")

	if err := db.EnsureSchema(db.DB, "refresh"); err != nil {
		l.Fatal().Err(err).Msg("failed to create refresh schema")
	}

	if err := db.DB.AutoMigrate(&RefreshRun{}); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate refresh tables")
	}
}
