// Package model defines domain types for kcalpace series and snapshots.
package model

import "time"

// HourlyPoint is one point of a cumulative energy series: the total kcal
// burned as of Timestamp. Within a series these are non-decreasing.
type HourlyPoint struct {
	Timestamp  time.Time `json:"ts"`
	Cumulative float64   `json:"kcal"`
}

// DaySeries is an ordered cumulative series for one calendar day. It always
// starts with a zero point at the day's start and may end with one
// interpolated point at an arbitrary as-of instant.
type DaySeries struct {
	Points []HourlyPoint `json:"points"`
}

// Empty reports whether the series has no points at all.
func (s DaySeries) Empty() bool {
	return len(s.Points) == 0
}

// Total returns the cumulative value of the last point, or zero for an
// empty series.
func (s DaySeries) Total() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Cumulative
}

// Last returns the final point and whether one exists.
func (s DaySeries) Last() (HourlyPoint, bool) {
	if len(s.Points) == 0 {
		return HourlyPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Monotonic reports whether cumulative values never decrease in order.
func (s DaySeries) Monotonic() bool {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Cumulative < s.Points[i-1].Cumulative {
			return false
		}
	}
	return true
}

// ZeroSeries returns the minimal valid series for a day: a single zero
// point at the day's start.
func ZeroSeries(dayStart time.Time) DaySeries {
	return DaySeries{Points: []HourlyPoint{{Timestamp: dayStart, Cumulative: 0}}}
}

// DayStart returns midnight of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Rebase shifts a series onto another day, preserving each point's offset
// from its own day start. Lets a pattern recorded on one Friday be charted
// and interpolated against the next.
func Rebase(s DaySeries, dayStart time.Time) DaySeries {
	if len(s.Points) == 0 {
		return s
	}
	origin := DayStart(s.Points[0].Timestamp)
	out := DaySeries{Points: make([]HourlyPoint, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = HourlyPoint{
			Timestamp:  dayStart.Add(p.Timestamp.Sub(origin)),
			Cumulative: p.Cumulative,
		}
	}
	return out
}

// Sample is one raw observation from the health-data provider: kcal burned
// starting at Start. Samples are unordered and may be sub-hourly.
type Sample struct {
	Start time.Time `json:"ts"`
	Kcal  float64   `json:"kcal"`
}
