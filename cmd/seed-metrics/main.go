// seed-metrics imports metric definitions from a YAML file into the metric
// store. The file holds a list of {name, units, short_desc, long_desc, query}
// entries; existing definitions are updated in place.
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"github.com/m-lab/mlab-metrics-api/internal/metrics"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type metricSeed struct {
	Name      string `yaml:"name"`
	Units     string `yaml:"units"`
	ShortDesc string `yaml:"short_desc"`
	LongDesc  string `yaml:"long_desc"`
	Query     string `yaml:"query"`
}

func main() {
	_ = godotenv.Load(".env.local")
	logger.Setup()
	l := logger.Get("seed-metrics")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		l.Fatal().Msg("DATABASE_URL not set")
	}

	fname := os.Getenv("METRICS_FILE")
	if fname == "" {
		fname = "metrics.yaml"
	}

	body, err := os.ReadFile(fname)
	if err != nil {
		l.Fatal().Err(err).Str("file", fname).Msg("failed to read metrics file")
	}

	var seeds []metricSeed
	if err := yaml.Unmarshal(body, &seeds); err != nil {
		l.Fatal().Err(err).Str("file", fname).Msg("failed to parse metrics file")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		l.Fatal().Err(err).Msg("DB connection error")
	}
	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "metrics"`).Error; err != nil {
		l.Fatal().Err(err).Msg("failed to create metrics schema")
	}
	if err := db.AutoMigrate(&metrics.Metric{}, &metrics.MetricValue{}); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate metric tables")
	}

	for _, seed := range seeds {
		if seed.Name == "" {
			l.Fatal().Str("file", fname).Msg("metric entry with empty name")
		}
		m := metrics.Metric{
			Name:      seed.Name,
			Units:     seed.Units,
			ShortDesc: seed.ShortDesc,
			LongDesc:  seed.LongDesc,
			Query:     seed.Query,
		}
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error; err != nil {
			l.Fatal().Err(err).Str("metric", seed.Name).Msg("failed to upsert metric")
		}
	}

	fmt.Printf("Imported %d metric definitions from %s\n", len(seeds), fname)
}
