// Package series builds and interpolates cumulative day series from raw
// energy samples.
package series

import (
	"time"

	"kcalpace/internal/model"
)

// Build turns unordered samples into the cumulative series for one day.
//
// Samples are bucketed by hour of day and summed, then hours are walked in
// order accumulating a running total. Each completed hour emits one point
// timestamped at the hour's end, so a point's value reads "burned by the end
// of hour H". The current, not-yet-complete hour contributes one final point
// at asOf instead of an hour boundary. The series always opens with a zero
// point at dayStart; with no samples that zero point is the whole series.
//
// Samples outside [dayStart, asOf) are ignored. asOf is clamped to the day.
func Build(samples []model.Sample, dayStart, asOf time.Time) model.DaySeries {
	dayEnd := dayStart.AddDate(0, 0, 1)
	if asOf.Before(dayStart) {
		asOf = dayStart
	}
	if asOf.After(dayEnd) {
		asOf = dayEnd
	}

	var hours [24]float64
	for _, s := range samples {
		t := s.Start.In(dayStart.Location())
		if t.Before(dayStart) || !t.Before(asOf) {
			continue
		}
		hours[t.Hour()] += s.Kcal
	}

	points := []model.HourlyPoint{{Timestamp: dayStart, Cumulative: 0}}

	currentHour := int(asOf.Sub(dayStart) / time.Hour)
	running := 0.0
	for h := 0; h < 24; h++ {
		hourEnd := dayStart.Add(time.Duration(h+1) * time.Hour)
		if h < currentHour {
			// Completed hour: emit at the hour's end.
			running += hours[h]
			points = append(points, model.HourlyPoint{Timestamp: hourEnd, Cumulative: running})
			continue
		}
		// The in-progress hour gets a point at asOf, but only when it
		// actually contributed anything.
		if h == currentHour && hours[h] > 0 && asOf.After(dayStart) {
			running += hours[h]
			points = append(points, model.HourlyPoint{Timestamp: asOf, Cumulative: running})
		}
		break
	}

	return model.DaySeries{Points: points}
}
