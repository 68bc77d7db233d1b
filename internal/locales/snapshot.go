package locales

import (
	"sync/atomic"

	"github.com/m-lab/mlab-metrics-api/internal/telemetry"
	"gorm.io/gorm"
)

// The served index. Readers load it without locking; rebuilds replace it with
// a single atomic store, so a request sees either the old complete index or
// the new complete index, never a partial one.
var current atomic.Pointer[Index]

// Publish swaps the given index into service.
func Publish(ix *Index) {
	current.Store(ix)
	telemetry.IndexedLocales.Set(float64(ix.Len()))
}

// Current returns the published index, or ErrEmptyIndex before the first
// successful build.
func Current() (*Index, error) {
	ix := current.Load()
	if ix == nil {
		return nil, ErrEmptyIndex
	}
	return ix, nil
}

// LoadRecords reads every locale row from the store.
func LoadRecords(d *gorm.DB) ([]Locale, error) {
	var records []Locale
	if err := d.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Rebuild loads a fresh snapshot from the store, builds and validates a new
// index, and publishes it. On any failure the previously published index
// keeps serving; a known-bad index is never swapped in.
func Rebuild(d *gorm.DB) (*Index, error) {
	records, err := LoadRecords(d)
	if err != nil {
		return nil, err
	}
	ix, err := Build(records)
	if err != nil {
		return nil, err
	}
	Publish(ix)
	return ix, nil
}
