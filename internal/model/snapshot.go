package model

import "time"

// TodaySnapshot is the persisted result of the last successful live fetch.
// Total always equals the last point's cumulative value (zero when the
// pattern is empty). LatestSample is the freshness timestamp of the
// underlying data; nil means freshness is unknown and the snapshot must be
// treated as stale.
type TodaySnapshot struct {
	Total        float64    `json:"total"`
	Pattern      DaySeries  `json:"pattern"`
	Goal         float64    `json:"goal"`
	LatestSample *time.Time `json:"latest_sample,omitempty"`
	WrittenAt    time.Time  `json:"written_at"`
}

// WeekdayAverageSnapshot is the averaged cumulative pattern and projected
// full-day total for one weekday. One snapshot exists per weekday, each
// with independent staleness.
type WeekdayAverageSnapshot struct {
	Weekday        time.Weekday `json:"weekday"`
	Pattern        DaySeries    `json:"pattern"`
	ProjectedTotal float64      `json:"projected_total"`
	WrittenAt      time.Time    `json:"written_at"`
}

// ProjectionSnapshot records the last projected end-of-day total the system
// acted on. Used only for goal-crossing comparison; cleared at day rollover
// so an early-morning projection is never compared against yesterday's.
type ProjectionSnapshot struct {
	ProjectedTotal float64   `json:"projected_total"`
	ObservedAt     time.Time `json:"observed_at"`
}

// ResolvedEntry is the resolver's output: everything a rendering surface
// needs for one refresh. Produced fresh on every resolution; immutable once
// returned.
type ResolvedEntry struct {
	AsOf           time.Time `json:"as_of"`
	Authorized     bool      `json:"authorized"`
	TodayTotal     float64   `json:"today_total"`
	AverageAtAsOf  float64   `json:"average_at_as_of"`
	ProjectedTotal float64   `json:"projected_total"`
	Goal           float64   `json:"goal"`
	TodaySeries    DaySeries `json:"today_series"`
	AverageSeries  DaySeries `json:"average_series"`
}
