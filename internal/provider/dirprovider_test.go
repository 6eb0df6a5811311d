package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDayFile(t *testing.T, dir string, day time.Time, lines string) {
	t.Helper()
	path := filepath.Join(dir, dayFile(day))
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 14, 15, 40, 0, 0, time.UTC) // a Friday
}

func newTestProvider(t *testing.T) (*DirProvider, string) {
	t.Helper()
	dir := t.TempDir()
	p := NewDirProvider(dir, nil)
	p.Now = fixedNow
	return p, dir
}

func TestFetchTodayHourly(t *testing.T) {
	p, dir := newTestProvider(t)
	writeDayFile(t, dir, fixedNow(),
		`{"ts":"2026-08-14T08:10:00Z","kcal":30}
{"ts":"2026-08-14T12:30:00Z","kcal":120}
not json at all
{"ts":"2026-08-14T15:32:00Z","kcal":15}
`)

	samples, latest, err := p.FetchTodayHourly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Errorf("samples = %d, want 3 (malformed line skipped)", len(samples))
	}
	if latest == nil || !latest.Equal(time.Date(2026, 8, 14, 15, 32, 0, 0, time.UTC)) {
		t.Errorf("latest = %v, want 15:32", latest)
	}
}

func TestFetchTodayHourly_MissingDayFile(t *testing.T) {
	p, _ := newTestProvider(t)

	samples, latest, err := p.FetchTodayHourly(context.Background())
	if err != nil {
		t.Fatalf("missing day file should not error, got %v", err)
	}
	if len(samples) != 0 || latest != nil {
		t.Errorf("got %d samples, latest %v; want empty day", len(samples), latest)
	}
}

func TestMissingDirIsUnauthorized(t *testing.T) {
	p := NewDirProvider(filepath.Join(t.TempDir(), "never-created"), nil)
	p.Now = fixedNow

	_, _, err := p.FetchTodayHourly(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if _, err := p.FetchGoal(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("goal err = %v, want ErrUnauthorized", err)
	}
}

func TestFetchHistoricalForWeekday(t *testing.T) {
	p, dir := newTestProvider(t)

	// Two prior Fridays and one Thursday; only Fridays must be read.
	writeDayFile(t, dir, fixedNow().AddDate(0, 0, -7),
		`{"ts":"2026-08-07T10:00:00Z","kcal":100}`)
	writeDayFile(t, dir, fixedNow().AddDate(0, 0, -14),
		`{"ts":"2026-07-31T10:00:00Z","kcal":200}`)
	writeDayFile(t, dir, fixedNow().AddDate(0, 0, -1),
		`{"ts":"2026-08-13T10:00:00Z","kcal":999}`)

	samples, err := p.FetchHistoricalForWeekday(context.Background(), time.Friday, 10)
	if err != nil {
		t.Fatal(err)
	}

	total := 0.0
	for _, s := range samples {
		total += s.Kcal
	}
	if total != 300 {
		t.Errorf("historical kcal = %v, want 300 (Thursday file ignored)", total)
	}
}

func TestFetchGoal(t *testing.T) {
	p, dir := newTestProvider(t)

	// No goal file: goal unset, not an error.
	g, err := p.FetchGoal(context.Background())
	if err != nil || g != 0 {
		t.Errorf("unset goal = (%v, %v), want (0, nil)", g, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "goal.json"), []byte(`{"kcal": 1000}`), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err = p.FetchGoal(context.Background())
	if err != nil || g != 1000 {
		t.Errorf("goal = (%v, %v), want (1000, nil)", g, err)
	}
}

func TestDemoSourceShape(t *testing.T) {
	now := time.Date(2026, 8, 14, 15, 40, 0, 0, time.UTC)
	m := Demo(now)

	samples, latest, err := m.FetchTodayHourly(context.Background())
	if err != nil {
		t.Fatalf("FetchTodayHourly: %v", err)
	}
	if len(samples) == 0 {
		t.Fatal("expected demo samples for a mid-afternoon instant")
	}
	for _, s := range samples {
		if !s.Start.Before(now) {
			t.Errorf("sample at %v is not before now", s.Start)
		}
	}
	if latest == nil || latest.After(now) {
		t.Fatalf("latest = %v, want non-nil and not after %v", latest, now)
	}

	for w := time.Sunday; w <= time.Saturday; w++ {
		hist, err := m.FetchHistoricalForWeekday(context.Background(), w, 10)
		if err != nil {
			t.Fatalf("FetchHistoricalForWeekday(%v): %v", w, err)
		}
		if len(hist) == 0 {
			t.Errorf("no history for %v", w)
		}
	}

	goal, err := m.FetchGoal(context.Background())
	if err != nil || goal <= 0 {
		t.Fatalf("FetchGoal = %v, %v; want positive goal", goal, err)
	}
}
