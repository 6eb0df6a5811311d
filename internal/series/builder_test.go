package series

import (
	"testing"
	"time"

	"kcalpace/internal/model"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
}

func at(dayStart time.Time, h, m int) time.Time {
	return dayStart.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestBuild_Empty(t *testing.T) {
	dayStart := day(t)
	s := Build(nil, dayStart, at(dayStart, 12, 0))

	if len(s.Points) != 1 {
		t.Fatalf("points = %d, want 1 (single zero point)", len(s.Points))
	}
	if !s.Points[0].Timestamp.Equal(dayStart) {
		t.Errorf("zero point at %v, want day start %v", s.Points[0].Timestamp, dayStart)
	}
	if s.Points[0].Cumulative != 0 {
		t.Errorf("zero point value = %v, want 0", s.Points[0].Cumulative)
	}
}

func TestBuild_HourEndTimestamps(t *testing.T) {
	dayStart := day(t)
	samples := []model.Sample{
		{Start: at(dayStart, 8, 10), Kcal: 30},
		{Start: at(dayStart, 8, 40), Kcal: 20},
		{Start: at(dayStart, 9, 5), Kcal: 40},
	}

	s := Build(samples, dayStart, at(dayStart, 11, 0))

	// zero point + hours 0..10 completed
	if len(s.Points) != 12 {
		t.Fatalf("points = %d, want 12", len(s.Points))
	}

	// Hour 8's contribution lands on the point timestamped 09:00.
	p := s.Points[9]
	if !p.Timestamp.Equal(at(dayStart, 9, 0)) {
		t.Errorf("hour 8 point at %v, want 09:00", p.Timestamp)
	}
	if p.Cumulative != 50 {
		t.Errorf("cumulative at 09:00 = %v, want 50", p.Cumulative)
	}
	if s.Points[10].Cumulative != 90 {
		t.Errorf("cumulative at 10:00 = %v, want 90", s.Points[10].Cumulative)
	}
}

func TestBuild_PartialHourAtAsOf(t *testing.T) {
	dayStart := day(t)
	asOf := at(dayStart, 15, 40)
	samples := []model.Sample{
		{Start: at(dayStart, 14, 30), Kcal: 500},
		{Start: at(dayStart, 15, 10), Kcal: 50},
	}

	s := Build(samples, dayStart, asOf)

	last, ok := s.Last()
	if !ok {
		t.Fatal("series unexpectedly empty")
	}
	if !last.Timestamp.Equal(asOf) {
		t.Errorf("last point at %v, want as-of %v", last.Timestamp, asOf)
	}
	if last.Cumulative != 550 {
		t.Errorf("last cumulative = %v, want 550", last.Cumulative)
	}
}

func TestBuild_NoPartialPointWithoutContribution(t *testing.T) {
	dayStart := day(t)
	samples := []model.Sample{{Start: at(dayStart, 9, 30), Kcal: 100}}

	s := Build(samples, dayStart, at(dayStart, 15, 40))

	last, _ := s.Last()
	if !last.Timestamp.Equal(at(dayStart, 15, 0)) {
		t.Errorf("last point at %v, want 15:00 hour boundary", last.Timestamp)
	}
}

func TestBuild_IgnoresSamplesOutsideDay(t *testing.T) {
	dayStart := day(t)
	samples := []model.Sample{
		{Start: dayStart.Add(-time.Hour), Kcal: 999},
		{Start: at(dayStart, 10, 0), Kcal: 10},
		{Start: at(dayStart, 22, 0), Kcal: 999}, // beyond as-of
	}

	s := Build(samples, dayStart, at(dayStart, 12, 0))
	if got := s.Total(); got != 10 {
		t.Errorf("total = %v, want 10", got)
	}
}

func TestBuild_Monotonic(t *testing.T) {
	dayStart := day(t)
	samples := []model.Sample{
		{Start: at(dayStart, 1, 0), Kcal: 12},
		{Start: at(dayStart, 3, 15), Kcal: 80},
		{Start: at(dayStart, 3, 45), Kcal: 5},
		{Start: at(dayStart, 7, 59), Kcal: 61},
		{Start: at(dayStart, 18, 30), Kcal: 200},
	}

	s := Build(samples, dayStart, at(dayStart, 19, 12))
	if !s.Monotonic() {
		t.Fatalf("series not monotonic: %+v", s.Points)
	}
	if got := s.Total(); got != 358 {
		t.Errorf("total = %v, want 358", got)
	}
}
