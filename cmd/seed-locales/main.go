// seed-locales imports locale map files into the locale store. The map
// directory holds country_map.txt, region_map.txt, and city_map.txt as CSV:
// countries are "name,long_name,lat,lon" (parent is implicitly world), the
// other tiers are "name,long_name,parent,lat,lon".
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-lab/mlab-metrics-api/internal/locales"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	_ = godotenv.Load(".env.local")
	logger.Setup()
	l := logger.Get("seed-locales")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		l.Fatal().Msg("DATABASE_URL not set")
	}

	mapDir := os.Getenv("LOCALE_MAP_DIR")
	if mapDir == "" {
		mapDir = "maps"
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		l.Fatal().Err(err).Msg("DB connection error")
	}
	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "locales"`).Error; err != nil {
		l.Fatal().Err(err).Msg("failed to create locales schema")
	}
	if err := db.AutoMigrate(&locales.Locale{}); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate locale tables")
	}

	total := 0
	for _, tier := range []string{"country", "region", "city"} {
		records, err := readMapFile(filepath.Join(mapDir, tier+"_map.txt"), tier)
		if err != nil {
			l.Fatal().Err(err).Str("tier", tier).Msg("failed to read locale map")
		}

		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).
			CreateInBatches(records, 500).Error; err != nil {
			l.Fatal().Err(err).Str("tier", tier).Msg("failed to upsert locales")
		}
		l.Info().Str("tier", tier).Int("count", len(records)).Msg("locales imported")
		total += len(records)
	}

	fmt.Printf("Imported %d locales from %s\n", total, mapDir)
}

var titler = cases.Title(language.English)

func readMapFile(fname, tier string) ([]locales.Locale, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	reader := csv.NewReader(fd)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []locales.Locale
	for i, row := range rows {
		var rec locales.Locale
		switch {
		case tier == "country" && len(row) == 4:
			rec = locales.Locale{Name: row[0], LongName: row[1], Parent: locales.RootName}
			rec.Latitude, rec.Longitude, err = parseCoordinates(row[2], row[3])
		case tier != "country" && len(row) == 5:
			rec = locales.Locale{Name: row[0], LongName: row[1], Parent: row[2]}
			rec.Latitude, rec.Longitude, err = parseCoordinates(row[3], row[4])
		default:
			return nil, fmt.Errorf("%s:%d: expected %s map row, got %d fields",
				fname, i+1, tier, len(row))
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", fname, i+1, err)
		}

		if rec.LongName == "" {
			// Derive a display name from the last id segment.
			segments := strings.Split(rec.Name, "_")
			rec.LongName = titler.String(strings.ReplaceAll(segments[len(segments)-1], "-", " "))
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseCoordinates(lat, lon string) (float64, float64, error) {
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", lat)
	}
	lonF, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", lon)
	}
	if !locales.ValidCoordinates(latF, lonF) {
		return 0, 0, fmt.Errorf("coordinates out of range: %s,%s", lat, lon)
	}
	return latF, lonF, nil
}
