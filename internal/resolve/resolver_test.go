package resolve

import (
	"context"
	"math"
	"testing"
	"time"

	"kcalpace/internal/model"
	"kcalpace/internal/provider"
	"kcalpace/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	c, err := store.NewFileContainer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store.New(c, 6, nil)
}

// friday1540 is the canonical test instant: Friday 2026-08-14 15:40 UTC.
var friday1540 = time.Date(2026, 8, 14, 15, 40, 0, 0, time.UTC)

// fixtureSource builds a mock whose today samples sum to 550 by 15:40 and
// whose ten historical Fridays average 510 by 15:00 (flat through hour 15)
// and 1013 for the full day.
func fixtureSource() *provider.Mock {
	dayStart := model.DayStart(friday1540)
	latest := dayStart.Add(15*time.Hour + 32*time.Minute)

	m := &provider.Mock{
		Goal:   1000,
		Latest: &latest,
		Samples: []model.Sample{
			{Start: dayStart.Add(8 * time.Hour), Kcal: 300},
			{Start: dayStart.Add(12 * time.Hour), Kcal: 200},
			{Start: dayStart.Add(15*time.Hour + 10*time.Minute), Kcal: 50},
		},
	}

	day := dayStart
	for i := 0; i < 10; i++ {
		day = day.AddDate(0, 0, -7)
		// Nothing during hour 15, so the average stays flat at 510
		// between 15:00 and 16:00.
		m.Historical = append(m.Historical,
			model.Sample{Start: day.Add(7 * time.Hour), Kcal: 260},
			model.Sample{Start: day.Add(12 * time.Hour), Kcal: 250},
			model.Sample{Start: day.Add(18 * time.Hour), Kcal: 303},
			model.Sample{Start: day.Add(22 * time.Hour), Kcal: 200},
		)
	}
	return m
}

func TestResolve_LiveSuccess(t *testing.T) {
	st := newTestStore(t)
	r := New(fixtureSource(), st, 10, nil)

	entry := r.Resolve(context.Background(), friday1540)

	if !entry.Authorized {
		t.Fatal("authorized = false on live success")
	}
	if entry.TodayTotal != 550 {
		t.Errorf("today total = %v, want 550", entry.TodayTotal)
	}
	if math.Abs(entry.AverageAtAsOf-510) > 1e-9 {
		t.Errorf("average at as-of = %v, want 510", entry.AverageAtAsOf)
	}
	if math.Abs(entry.ProjectedTotal-1013) > 1e-9 {
		t.Errorf("projected total = %v, want 1013", entry.ProjectedTotal)
	}
	if entry.Goal != 1000 {
		t.Errorf("goal = %v, want 1000", entry.Goal)
	}
	if !entry.TodaySeries.Monotonic() || !entry.AverageSeries.Monotonic() {
		t.Error("non-monotonic series in entry")
	}

	// As-of pins to the data's freshness, not the wall clock.
	latest := model.DayStart(friday1540).Add(15*time.Hour + 32*time.Minute)
	if !entry.AsOf.Equal(latest) {
		t.Errorf("as-of = %v, want latest sample %v", entry.AsOf, latest)
	}
}

func TestResolve_LiveSuccessWritesBackCaches(t *testing.T) {
	st := newTestStore(t)
	r := New(fixtureSource(), st, 10, nil)

	r.Resolve(context.Background(), friday1540)

	snap, ok := st.FreshToday(friday1540)
	if !ok {
		t.Fatal("today store not written after live success")
	}
	if snap.Total != 550 || snap.Goal != 1000 {
		t.Errorf("cached today = total %v goal %v, want 550/1000", snap.Total, snap.Goal)
	}

	avg, ok := st.LoadAverage(time.Friday, friday1540)
	if !ok {
		t.Fatal("weekday average not refreshed and persisted")
	}
	if math.Abs(avg.ProjectedTotal-1013) > 1e-9 {
		t.Errorf("cached projected = %v, want 1013", avg.ProjectedTotal)
	}
}

func TestResolve_FallsBackToSameDayTodayCache(t *testing.T) {
	st := newTestStore(t)

	// Prime caches with a successful run, then break the source.
	src := fixtureSource()
	r := New(src, st, 10, nil)
	r.Resolve(context.Background(), friday1540)

	src.Err = provider.ErrUnavailable
	later := friday1540.Add(30 * time.Minute)
	entry := r.Resolve(context.Background(), later)

	if !entry.Authorized {
		t.Fatal("authorized = false with same-day cache present")
	}
	if entry.TodayTotal != 550 {
		t.Errorf("today total = %v, want cached 550", entry.TodayTotal)
	}

	// The entry freezes at the cache's own freshness instant.
	latest := model.DayStart(friday1540).Add(15*time.Hour + 32*time.Minute)
	if !entry.AsOf.Equal(latest) {
		t.Errorf("as-of = %v, want cached latest %v, not now", entry.AsOf, later)
	}
}

func TestResolve_DegradedToAverageOnly(t *testing.T) {
	st := newTestStore(t)

	// Yesterday's run left a today record with yesterday's freshness plus a
	// weekday-average slot for Friday.
	src := fixtureSource()
	r := New(src, st, 10, nil)
	r.Resolve(context.Background(), friday1540)

	// Saturday: live fails, today cache is from the wrong day, but
	// Saturday's average slot doesn't exist either. Write one.
	saturday := friday1540.AddDate(0, 0, 1)
	if err := st.SaveAverage(model.WeekdayAverageSnapshot{
		Weekday:        time.Saturday,
		Pattern:        model.ZeroSeries(model.DayStart(saturday)),
		ProjectedTotal: 880,
		WrittenAt:      friday1540,
	}); err != nil {
		t.Fatal(err)
	}

	src.Err = provider.ErrUnavailable
	entry := r.Resolve(context.Background(), saturday)

	if !entry.Authorized {
		t.Fatal("authorized = false although cache proves a prior grant")
	}
	if entry.TodayTotal != 0 {
		t.Errorf("today total = %v, want 0", entry.TodayTotal)
	}
	if len(entry.TodaySeries.Points) != 1 || entry.TodaySeries.Points[0].Cumulative != 0 {
		t.Errorf("today series = %+v, want single zero point", entry.TodaySeries.Points)
	}
	if entry.ProjectedTotal != 880 {
		t.Errorf("projected = %v, want 880 from Saturday snapshot", entry.ProjectedTotal)
	}
	if entry.AverageSeries.Empty() {
		t.Error("average series empty despite cached snapshot")
	}
}

func TestResolve_NoCacheAtAllIsUnauthorized(t *testing.T) {
	st := newTestStore(t)
	src := &provider.Mock{Err: provider.ErrUnauthorized}
	r := New(src, st, 10, nil)

	entry := r.Resolve(context.Background(), friday1540)

	if entry.Authorized {
		t.Fatal("authorized = true with no cache and failing source")
	}
	if entry.TodayTotal != 0 || entry.ProjectedTotal != 0 {
		t.Errorf("non-zero totals in empty entry: %+v", entry)
	}
	if !entry.TodaySeries.Empty() || !entry.AverageSeries.Empty() {
		t.Error("series not empty in unauthorized entry")
	}
}

func TestResolve_CanceledContextPersistsNothing(t *testing.T) {
	st := newTestStore(t)
	r := New(fixtureSource(), st, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Resolve(ctx, friday1540)

	if _, ok := st.LoadToday(); ok {
		t.Error("today record persisted despite canceled context")
	}
	if _, ok := st.LoadAverage(time.Friday, friday1540); ok {
		t.Error("average record persisted despite canceled context")
	}
}

func TestStraddlesMidnight(t *testing.T) {
	lateEvening := time.Date(2026, 8, 14, 23, 58, 0, 0, time.UTC)
	if !StraddlesMidnight(lateEvening, lateEvening.Add(15*time.Minute)) {
		t.Error("23:58 -> 00:13 not detected as straddling midnight")
	}
	noon := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	if StraddlesMidnight(noon, noon.Add(15*time.Minute)) {
		t.Error("12:00 -> 12:15 reported as straddling midnight")
	}
}

func TestMidnightEntry(t *testing.T) {
	st := newTestStore(t)

	// Prime Friday's caches, and give Saturday its own average snapshot so
	// the synthesized entry must pick the NEW weekday's pattern.
	src := fixtureSource()
	r := New(src, st, 10, nil)
	r.Resolve(context.Background(), friday1540)

	saturday := model.DayStart(friday1540.AddDate(0, 0, 1))
	if err := st.SaveAverage(model.WeekdayAverageSnapshot{
		Weekday:        time.Saturday,
		Pattern:        model.ZeroSeries(saturday),
		ProjectedTotal: 880,
		WrittenAt:      friday1540,
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveProjection(model.ProjectionSnapshot{ProjectedTotal: 1013, ObservedAt: friday1540}); err != nil {
		t.Fatal(err)
	}

	// Source must not be consulted at midnight.
	src.Err = provider.ErrUnavailable

	entry := r.MidnightEntry(saturday)

	if !entry.AsOf.Equal(saturday) {
		t.Errorf("as-of = %v, want exact midnight %v", entry.AsOf, saturday)
	}
	if entry.TodayTotal != 0 {
		t.Errorf("today total = %v, want 0", entry.TodayTotal)
	}
	if entry.ProjectedTotal != 880 {
		t.Errorf("projected = %v, want 880 (Saturday's snapshot, not Friday's)", entry.ProjectedTotal)
	}
	if !entry.Authorized {
		t.Error("authorized = false at rollover with cache present")
	}

	if _, ok := st.LoadProjection(friday1540); ok {
		t.Error("projection record survived the rollover")
	}
}

func TestRefreshWeekday_OtherThanToday(t *testing.T) {
	st := newTestStore(t)
	src := fixtureSource()
	r := New(src, st, 10, nil)

	// Asking for Friday's pattern on a Saturday computes it from the
	// source instead of waiting for the next Friday resolution.
	saturday := friday1540.AddDate(0, 0, 1)
	snap, ok := r.RefreshWeekday(context.Background(), time.Friday, saturday)
	if !ok {
		t.Fatal("refresh of another weekday failed with history available")
	}
	if snap.Weekday != time.Friday {
		t.Errorf("weekday = %v, want Friday", snap.Weekday)
	}
	if math.Abs(snap.ProjectedTotal-1013) > 1e-9 {
		t.Errorf("projected total = %v, want 1013", snap.ProjectedTotal)
	}

	// The slot is persisted for subsequent loads.
	cached, ok := st.LoadAverage(time.Friday, saturday)
	if !ok {
		t.Fatal("refreshed slot not persisted")
	}
	if math.Abs(cached.ProjectedTotal-1013) > 1e-9 {
		t.Errorf("cached projected total = %v, want 1013", cached.ProjectedTotal)
	}
}
