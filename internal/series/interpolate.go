package series

import (
	"time"

	"kcalpace/internal/model"
)

// Interpolate estimates the cumulative value of a series at an arbitrary
// instant. The two points bracketing at are interpolated linearly by
// minutes-into-the-gap. Before the first point the first value is returned;
// after the last point the last value; an empty series yields ok=false.
//
// Pure function: used by the averaging engine to place a "now" marker and by
// the resolver to compute "average at as-of".
func Interpolate(s model.DaySeries, at time.Time) (float64, bool) {
	pts := s.Points
	if len(pts) == 0 {
		return 0, false
	}
	if !at.After(pts[0].Timestamp) {
		return pts[0].Cumulative, true
	}
	last := pts[len(pts)-1]
	if !at.Before(last.Timestamp) {
		return last.Cumulative, true
	}

	for i := 1; i < len(pts); i++ {
		if at.Before(pts[i].Timestamp) {
			p0, p1 := pts[i-1], pts[i]
			if at.Equal(p0.Timestamp) {
				return p0.Cumulative, true
			}
			span := p1.Timestamp.Sub(p0.Timestamp)
			if span <= 0 {
				return p1.Cumulative, true
			}
			frac := float64(at.Sub(p0.Timestamp)) / float64(span)
			return p0.Cumulative + (p1.Cumulative-p0.Cumulative)*frac, true
		}
		if at.Equal(pts[i].Timestamp) {
			return pts[i].Cumulative, true
		}
	}
	return last.Cumulative, true
}
