package metrics

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned for unknown metric names.
	ErrNotFound = errors.New("metric not found")

	// ErrNoData is returned when a metric exists but has no value for the
	// requested period and locale.
	ErrNoData = errors.New("no data for requested period and locale")

	// ErrAlreadyExists is returned when creating a metric whose name is taken.
	ErrAlreadyExists = errors.New("metric already exists")
)

// Store is the metric definition and data collaborator. Lookups and CRUD are
// plain synchronous calls; all failures are terminal for the request.
type Store interface {
	List(ctx context.Context) ([]Metric, error)
	Get(ctx context.Context, name string) (Metric, error)
	Create(ctx context.Context, m Metric) error
	Update(ctx context.Context, m Metric) (Metric, error)
	Delete(ctx context.Context, name string) error
	Lookup(ctx context.Context, name string, year, month int, locale string) (MetricValue, string, error)
}

// SQLStore implements Store on Postgres.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(d *gorm.DB) *SQLStore {
	return &SQLStore{db: d}
}

func (s *SQLStore) List(ctx context.Context) ([]Metric, error) {
	var out []Metric
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, name string) (Metric, error) {
	var m Metric
	err := s.db.WithContext(ctx).First(&m, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Metric{}, ErrNotFound
	}
	return m, err
}

func (s *SQLStore) Create(ctx context.Context, m Metric) error {
	err := s.db.WithContext(ctx).First(&Metric{}, "name = ?", m.Name).Error
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *SQLStore) Update(ctx context.Context, m Metric) (Metric, error) {
	existing, err := s.Get(ctx, m.Name)
	if err != nil {
		return Metric{}, err
	}

	// Empty fields keep their stored values, matching form-style edits where
	// only changed fields are submitted.
	if m.Units != "" {
		existing.Units = m.Units
	}
	if m.ShortDesc != "" {
		existing.ShortDesc = m.ShortDesc
	}
	if m.LongDesc != "" {
		existing.LongDesc = m.LongDesc
	}
	if m.Query != "" {
		existing.Query = m.Query
	}

	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return Metric{}, err
	}
	return existing, nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&MetricValue{}, "metric_name = ?", name).Error; err != nil {
			return err
		}
		return tx.Delete(&Metric{}, "name = ?", name).Error
	})
}

func (s *SQLStore) Lookup(ctx context.Context, name string, year, month int, locale string) (MetricValue, string, error) {
	m, err := s.Get(ctx, name)
	if err != nil {
		return MetricValue{}, "", err
	}

	var v MetricValue
	err = s.db.WithContext(ctx).
		First(&v, "metric_name = ? AND year = ? AND month = ? AND locale = ?",
			name, year, month, locale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return MetricValue{}, "", ErrNoData
	}
	if err != nil {
		return MetricValue{}, "", err
	}
	return v, m.Units, nil
}
