package locales

import (
	"github.com/m-lab/mlab-metrics-api/internal/db"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
)

func Init() {
	l := logger.Get("locales")

	if err := db.EnsureSchema(db.DB, "locales"); err != nil {
		l.Fatal().Err(err).Msg("failed to create locales schema")
	}

	if err := db.DB.AutoMigrate(&Locale{}); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate locale tables")
	}

	ix, err := Rebuild(db.DB)
	if err != nil {
		// Serve without an index rather than refuse to start; lookups report
		// an empty index until the next refresh succeeds.
		l.Error().Err(err).Msg("initial locale index build failed")
		return
	}
	l.Info().Int("locales", ix.Len()).Msg("locale index published")
}
