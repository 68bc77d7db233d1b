package db

import (
	"os"
	"time"

	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	l := logger.Get("db")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		l.Fatal().Msg("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	// Pool defaults sized for a small single-service deployment.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	l.Info().Msg("connected to database")
}
