package metrics

import "time"

// Metric is a stored metric definition: what the statistic means and the
// query that produces it. Values live separately in MetricValue rows.
type Metric struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	Units     string    `json:"units"`
	ShortDesc string    `json:"short_desc"`
	LongDesc  string    `json:"long_desc"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Metric) TableName() string {
	return "metrics.metrics"
}

// MetricValue is one precomputed data point for a metric, keyed by month and
// locale identifier.
type MetricValue struct {
	MetricName string  `gorm:"primaryKey" json:"metric"`
	Year       int     `gorm:"primaryKey" json:"year"`
	Month      int     `gorm:"primaryKey" json:"month"`
	Locale     string  `gorm:"primaryKey" json:"locale"`
	Value      float64 `json:"value"`
}

func (MetricValue) TableName() string {
	return "metrics.metric_values"
}
