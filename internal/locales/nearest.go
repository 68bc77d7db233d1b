package locales

import (
	"errors"
	"math"
)

// Earth mean radius in kilometers.
const earthRadiusKm = 6371.0

// Two locales within this distance of each other are considered equidistant
// from a query point; the tie goes to the smaller identifier.
const tieEpsilonKm = 1e-6

// ErrInvalidCoordinates is returned for query points outside the valid
// latitude/longitude ranges.
var ErrInvalidCoordinates = errors.New("latitude must be in [-90, 90] and longitude in [-180, 180]")

// Point is an indexed locale position used by the nearest searchers.
type Point struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// Haversine returns the great-circle distance in kilometers between two
// lat/lon points. Unlike planar distance on raw degrees, it stays correct
// near the poles and across the antimeridian.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ValidCoordinates reports whether lat/lon form a usable query point.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Searcher finds the indexed point closest to a query coordinate. The search
// strategy is swappable; the shipped implementation is a linear haversine
// scan, which is plenty for locale catalogs in the low thousands.
type Searcher interface {
	Nearest(lat, lon float64) (Point, float64, error)
}

type linearSearcher struct {
	points []Point
}

func newLinearSearcher(points []Point) *linearSearcher {
	return &linearSearcher{points: points}
}

func (s *linearSearcher) Nearest(lat, lon float64) (Point, float64, error) {
	if len(s.points) == 0 {
		return Point{}, 0, ErrEmptyIndex
	}

	best := math.Inf(1)
	var bestPoint Point
	for _, p := range s.points {
		d := Haversine(lat, lon, p.Latitude, p.Longitude)
		switch {
		case d < best-tieEpsilonKm:
			best = d
			bestPoint = p
		case d <= best+tieEpsilonKm && p.Name < bestPoint.Name:
			// Equidistant within epsilon: deterministic tie-break on id.
			bestPoint = p
			if d < best {
				best = d
			}
		}
	}
	return bestPoint, best, nil
}

// Finder answers nearest-locale queries with one searcher per locale tier,
// mirroring how the catalog is queried: closest city, region, and country
// are each meaningful on their own.
type Finder struct {
	countries Searcher
	regions   Searcher
	cities    Searcher
}

// NewFinder builds a Finder over the index's per-tier point sets.
func NewFinder(ix *Index) *Finder {
	return &Finder{
		countries: newLinearSearcher(ix.AllPoints(TypeCountry)),
		regions:   newLinearSearcher(ix.AllPoints(TypeRegion)),
		cities:    newLinearSearcher(ix.AllPoints(TypeCity)),
	}
}

// Match pairs a resolved locale with its distance from the query point. The
// distance is informational; handlers do not serialize it.
type Match struct {
	Locale     Locale
	DistanceKm float64
}

// NearestResult holds the closest locale per tier. A tier with no indexed
// locales yields a nil match.
type NearestResult struct {
	Country *Match
	Region  *Match
	City    *Match
}

// NearestNeighbors resolves the closest country, region, and city to the
// given coordinates. It fails with ErrInvalidCoordinates for out-of-range
// input and ErrEmptyIndex when no tier has any locale.
func (ix *Index) NearestNeighbors(lat, lon float64) (NearestResult, error) {
	if !ValidCoordinates(lat, lon) {
		return NearestResult{}, ErrInvalidCoordinates
	}

	var res NearestResult
	res.Country = ix.nearestIn(ix.finder.countries, lat, lon)
	res.Region = ix.nearestIn(ix.finder.regions, lat, lon)
	res.City = ix.nearestIn(ix.finder.cities, lat, lon)

	if res.Country == nil && res.Region == nil && res.City == nil {
		return NearestResult{}, ErrEmptyIndex
	}
	return res, nil
}

func (ix *Index) nearestIn(s Searcher, lat, lon float64) *Match {
	p, d, err := s.Nearest(lat, lon)
	if err != nil {
		return nil
	}
	rec := ix.records[p.Name]
	return &Match{Locale: rec, DistanceKm: d}
}
