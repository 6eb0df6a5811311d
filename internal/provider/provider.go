// Package provider defines the health-data source boundary and its local
// reference implementations.
package provider

import (
	"context"
	"errors"
	"time"

	"kcalpace/internal/model"
)

var (
	// ErrUnauthorized means the data source has never been granted (or the
	// grant was revoked). Surfaced as its own resolver state, not a generic
	// failure.
	ErrUnauthorized = errors.New("provider: health data access not granted")
	// ErrUnavailable means the source exists but cannot be read right now
	// (device locked, export in progress). Always recoverable via cache.
	ErrUnavailable = errors.New("provider: health data temporarily unavailable")
)

// HealthData is the external biometric source. It is queried, never owned:
// implementations must not cache or mutate engine state. All calls are
// read-only and cancellable through ctx.
type HealthData interface {
	// FetchTodayHourly returns today's raw samples and the timestamp of the
	// newest sample. A nil latest means the source returned no samples yet
	// today.
	FetchTodayHourly(ctx context.Context) ([]model.Sample, *time.Time, error)

	// FetchHistoricalForWeekday returns raw samples from roughly the last
	// `weeks` weeks, already filtered to the given weekday's calendar days.
	FetchHistoricalForWeekday(ctx context.Context, weekday time.Weekday, weeks int) ([]model.Sample, error)

	// FetchGoal returns the user's daily energy goal in kcal.
	FetchGoal(ctx context.Context) (float64, error)
}

// Mock is a deterministic in-memory source for tests and demos. Zero value
// is an authorized, empty source.
type Mock struct {
	Samples    []model.Sample
	Historical []model.Sample
	Latest     *time.Time
	Goal       float64

	// Err, when set, is returned by every fetch.
	Err error
}

func (m *Mock) FetchTodayHourly(_ context.Context) ([]model.Sample, *time.Time, error) {
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Samples, m.Latest, nil
}

func (m *Mock) FetchHistoricalForWeekday(_ context.Context, weekday time.Weekday, _ int) ([]model.Sample, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.Sample
	for _, s := range m.Historical {
		if s.Start.Weekday() == weekday {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Mock) FetchGoal(_ context.Context) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Goal, nil
}

// Demo returns a Mock seeded with a plausible burn day relative to now,
// plus ten weeks of history for every weekday. The data is deterministic
// so repeated runs render the same screens.
func Demo(now time.Time) *Mock {
	m := &Mock{Goal: 2400}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for h := 0; h < 24; h++ {
		start := day.Add(time.Duration(h) * time.Hour)
		if !start.Before(now) {
			break
		}
		m.Samples = append(m.Samples, model.Sample{Start: start, Kcal: demoHourKcal(h, day.Weekday())})
	}
	if n := len(m.Samples); n > 0 {
		latest := m.Samples[n-1].Start.Add(30 * time.Minute)
		if latest.After(now) {
			latest = now
		}
		m.Latest = &latest
	}
	for back := 1; back <= 70; back++ {
		d := day.AddDate(0, 0, -back)
		for h := 0; h < 24; h++ {
			m.Historical = append(m.Historical, model.Sample{
				Start: d.Add(time.Duration(h) * time.Hour),
				Kcal:  demoHourKcal(h, d.Weekday()),
			})
		}
	}
	return m
}

// demoHourKcal shapes a basal burn with activity bumps, varied a little by
// weekday so the seven average slots differ.
func demoHourKcal(hour int, weekday time.Weekday) float64 {
	kcal := 68.0
	switch hour {
	case 7, 8:
		kcal += 55 // morning commute
	case 12:
		kcal += 30
	case 18, 19:
		kcal += 90 // evening workout
	}
	if weekday == time.Saturday || weekday == time.Sunday {
		if hour >= 7 && hour <= 9 {
			kcal -= 40
		}
		if hour >= 10 && hour <= 12 {
			kcal += 35
		}
	}
	return kcal + float64(int(weekday))*1.5
}
