package average

import (
	"math"
	"reflect"
	"testing"
	"time"

	"kcalpace/internal/model"
	"kcalpace/internal/series"
)

// historical generates samples for n prior occurrences of weekday, each day
// burning hourlyKcal[h] during hour h.
func historical(target time.Time, weekday time.Weekday, n int, hourlyKcal map[int]float64) []model.Sample {
	var out []model.Sample
	d := model.DayStart(target)
	for n > 0 {
		d = d.AddDate(0, 0, -1)
		if d.Weekday() != weekday {
			continue
		}
		for h, kcal := range hourlyKcal {
			out = append(out, model.Sample{Start: d.Add(time.Duration(h)*time.Hour + 5*time.Minute), Kcal: kcal})
		}
		n--
	}
	return out
}

func TestCompute_AveragesAndProjectedTotal(t *testing.T) {
	target := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC) // a Friday
	asOf := target.Add(15*time.Hour + 40*time.Minute)

	// Ten identical Fridays: 510 burned by 15:00, 1013 by end of day.
	burn := map[int]float64{6: 200, 10: 210, 14: 100, 18: 303, 22: 200}
	samples := historical(target, time.Friday, 10, burn)

	pattern, projected := Compute(samples, time.Friday, target, asOf)

	if math.Abs(projected-1013) > 1e-9 {
		t.Errorf("projected total = %v, want 1013", projected)
	}

	// Cumulative by end of hour 14 (the 15:00 point) is 510 on every day.
	v, ok := series.Interpolate(pattern, target.Add(15*time.Hour))
	if !ok || math.Abs(v-510) > 1e-9 {
		t.Errorf("average at 15:00 = %v, want 510", v)
	}

	if !pattern.Monotonic() {
		t.Fatalf("averaged pattern not monotonic: %+v", pattern.Points)
	}
}

func TestCompute_ExcludesZeroDaysPerHour(t *testing.T) {
	target := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC) // Friday
	asOf := target.Add(23 * time.Hour)

	// Two Fridays burning 100 in hour 8, one Friday that only synced data
	// from hour 12 onward. Hour 8's average must ignore the late day.
	var samples []model.Sample
	fridays := []time.Time{
		target.AddDate(0, 0, -7),
		target.AddDate(0, 0, -14),
		target.AddDate(0, 0, -21),
	}
	for i, d := range fridays {
		if i < 2 {
			samples = append(samples, model.Sample{Start: d.Add(8*time.Hour + 30*time.Minute), Kcal: 100})
		}
		samples = append(samples, model.Sample{Start: d.Add(12 * time.Hour), Kcal: 40})
	}

	pattern, _ := Compute(samples, time.Friday, target, asOf)

	// End of hour 8 -> the 09:00 point: mean of {100, 100}, late day excluded.
	v, _ := series.Interpolate(pattern, target.Add(9*time.Hour))
	if math.Abs(v-100) > 1e-9 {
		t.Errorf("hour 8 average = %v, want 100 (zero day excluded)", v)
	}

	// End of hour 12: all three days qualify: mean of {140, 140, 40}.
	v, _ = series.Interpolate(pattern, target.Add(13*time.Hour))
	want := (140.0 + 140.0 + 40.0) / 3.0
	if math.Abs(v-want) > 1e-9 {
		t.Errorf("hour 12 average = %v, want %v", v, want)
	}
}

func TestCompute_NoQualifyingDaysYieldsZeroNotNaN(t *testing.T) {
	target := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	pattern, projected := Compute(nil, time.Friday, target, target.Add(12*time.Hour))

	if projected != 0 {
		t.Errorf("projected = %v, want 0", projected)
	}
	for _, p := range pattern.Points {
		if math.IsNaN(p.Cumulative) {
			t.Fatalf("NaN at %v", p.Timestamp)
		}
		if p.Cumulative != 0 {
			t.Errorf("cumulative at %v = %v, want 0", p.Timestamp, p.Cumulative)
		}
	}
}

func TestCompute_OtherWeekdaysDropped(t *testing.T) {
	target := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC) // Friday
	thursday := target.AddDate(0, 0, -1)
	samples := []model.Sample{
		{Start: thursday.Add(10 * time.Hour), Kcal: 500},
		{Start: target.AddDate(0, 0, -7).Add(10 * time.Hour), Kcal: 80},
	}

	_, projected := Compute(samples, time.Friday, target, target.Add(12*time.Hour))
	if projected != 80 {
		t.Errorf("projected = %v, want 80 (Thursday data dropped)", projected)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	target := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	asOf := target.Add(15*time.Hour + 40*time.Minute)
	samples := historical(target, time.Friday, 10, map[int]float64{7: 123.4, 12: 88.8, 20: 310.7})

	p1, t1 := Compute(samples, time.Friday, target, asOf)
	p2, t2 := Compute(samples, time.Friday, target, asOf)

	if t1 != t2 {
		t.Errorf("projected totals differ: %v vs %v", t1, t2)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Error("patterns differ across identical runs")
	}
}

func TestCompute_MarkerAtAsOf(t *testing.T) {
	target := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	asOf := target.Add(15*time.Hour + 40*time.Minute)
	samples := historical(target, time.Friday, 4, map[int]float64{14: 60})

	pattern, _ := Compute(samples, time.Friday, target, asOf)

	found := false
	for _, p := range pattern.Points {
		if p.Timestamp.Equal(asOf) {
			found = true
		}
	}
	if !found {
		t.Fatalf("no marker point at as-of %v", asOf)
	}
}
