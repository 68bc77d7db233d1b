package locales

import "strings"

// Locale is one stored locale row. Identifiers encode the hierarchy by
// underscore-separated segments, e.g. "826", "826_eng", "826_eng_london".
type Locale struct {
	Name      string  `gorm:"primaryKey" json:"name"`
	LongName  string  `json:"long_name"`
	Parent    string  `json:"parent"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (Locale) TableName() string {
	return "locales.locales"
}

// LocaleInfo is the JSON shape for a locale in API responses.
type LocaleInfo struct {
	Name      string  `json:"name"`
	LongName  string  `json:"long_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Locale) Describe() LocaleInfo {
	return LocaleInfo{
		Name:      l.Name,
		LongName:  l.LongName,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}

// RootName is the distinguished top-level locale. It exists even when the
// store holds no row for it and never participates in nearest lookups.
const RootName = "world"

const (
	TypeWorld   = "world"
	TypeCountry = "country"
	TypeRegion  = "region"
	TypeCity    = "city"
)

// DetermineLocaleType classifies a locale identifier by its underscore depth:
// one segment is a country, two a region, three a city.
func DetermineLocaleType(name string) string {
	if name == RootName {
		return TypeWorld
	}
	switch strings.Count(name, "_") {
	case 0:
		return TypeCountry
	case 1:
		return TypeRegion
	default:
		return TypeCity
	}
}
