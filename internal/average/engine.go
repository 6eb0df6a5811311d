// Package average computes weekday-specific historical patterns from raw
// energy samples.
package average

import (
	"sort"
	"time"

	"kcalpace/internal/model"
	"kcalpace/internal/series"
)

// dayTable is one historical day's cumulative-by-hour values.
type dayTable [24]float64

// Compute averages historical samples for one weekday into a cumulative
// pattern and a projected full-day total.
//
// Samples are partitioned by calendar day and days not matching weekday are
// dropped, so callers may pass a raw multi-week window. For each hour of the
// day the cumulative values are averaged across only the days that have a
// non-zero value at that hour; a day that had not synced yet by hour H does
// not drag hour H's average down. Hours with no qualifying day average to 0.
//
// The projected total is the mean of every day's complete daily total,
// computed independently of the per-hour averaging.
//
// The pattern is emitted against targetDay (its zero point at targetDay's
// midnight, hour values at hour ends) with one extra interpolated point at
// asOf, so it can be charted and interpolated against a live series.
func Compute(samples []model.Sample, weekday time.Weekday, targetDay, asOf time.Time) (model.DaySeries, float64) {
	days := partition(samples, weekday, targetDay.Location())

	var hourly [24]float64
	for h := 0; h < 24; h++ {
		sum, n := 0.0, 0
		for _, d := range days {
			if d[h] > 0 {
				sum += d[h]
				n++
			}
		}
		if n > 0 {
			hourly[h] = sum / float64(n)
		}
	}

	projected := 0.0
	if len(days) > 0 {
		for _, d := range days {
			projected += d[23]
		}
		projected /= float64(len(days))
	}

	dayStart := model.DayStart(targetDay)
	pattern := model.DaySeries{Points: make([]model.HourlyPoint, 0, 26)}
	pattern.Points = append(pattern.Points, model.HourlyPoint{Timestamp: dayStart})
	for h := 0; h < 24; h++ {
		pattern.Points = append(pattern.Points, model.HourlyPoint{
			Timestamp:  dayStart.Add(time.Duration(h+1) * time.Hour),
			Cumulative: hourly[h],
		})
	}

	return withMarker(pattern, asOf), projected
}

// withMarker inserts one interpolated point at asOf, keeping the series
// ordered. Instants outside the pattern's span are left unmarked since the
// clamped value would duplicate an endpoint.
func withMarker(pattern model.DaySeries, asOf time.Time) model.DaySeries {
	pts := pattern.Points
	if len(pts) == 0 || !asOf.After(pts[0].Timestamp) || !asOf.Before(pts[len(pts)-1].Timestamp) {
		return pattern
	}
	v, ok := series.Interpolate(pattern, asOf)
	if !ok {
		return pattern
	}
	idx := sort.Search(len(pts), func(i int) bool { return pts[i].Timestamp.After(asOf) })
	if idx > 0 && pts[idx-1].Timestamp.Equal(asOf) {
		return pattern // already a point there
	}
	out := make([]model.HourlyPoint, 0, len(pts)+1)
	out = append(out, pts[:idx]...)
	out = append(out, model.HourlyPoint{Timestamp: asOf, Cumulative: v})
	out = append(out, pts[idx:]...)
	return model.DaySeries{Points: out}
}

// partition groups samples into per-day cumulative tables for the requested
// weekday, ordered by date for deterministic averaging.
func partition(samples []model.Sample, weekday time.Weekday, loc *time.Location) []dayTable {
	byDay := make(map[string]*dayTable)
	for _, s := range samples {
		t := s.Start.In(loc)
		if t.Weekday() != weekday {
			continue
		}
		key := t.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &dayTable{}
			byDay[key] = d
		}
		d[t.Hour()] += s.Kcal
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]dayTable, 0, len(keys))
	for _, k := range keys {
		d := byDay[k]
		// Per-hour sums to running cumulative.
		var cum dayTable
		running := 0.0
		for h := 0; h < 24; h++ {
			running += d[h]
			cum[h] = running
		}
		out = append(out, cum)
	}
	return out
}
