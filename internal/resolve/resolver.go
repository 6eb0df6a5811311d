// Package resolve turns a live-query attempt and the snapshot cache into
// the entry a rendering surface shows.
package resolve

import (
	"context"
	"log/slog"
	"time"

	"kcalpace/internal/average"
	"kcalpace/internal/logging"
	"kcalpace/internal/model"
	"kcalpace/internal/provider"
	"kcalpace/internal/series"
	"kcalpace/internal/store"
)

// Resolver decides what combination of today, average, projection, and
// authorization state to surface. Every failure inside a resolution is
// converted into one of the degraded branches; Resolve never returns an
// error and never panics the host.
type Resolver struct {
	source       provider.HealthData
	store        *store.Store
	historyWeeks int
	logger       *slog.Logger
}

// New builds a resolver. historyWeeks is the averaging window (about ten
// weeks guarantees roughly ten weekday matches even with sync gaps).
func New(source provider.HealthData, st *store.Store, historyWeeks int, logger *slog.Logger) *Resolver {
	if historyWeeks < 1 {
		historyWeeks = 10
	}
	return &Resolver{
		source:       source,
		store:        st,
		historyWeeks: historyWeeks,
		logger:       logging.WithComponent(logger, "resolve"),
	}
}

// Resolve performs one resolution at now: attempt the live query, fall back
// through the cache layers on failure, and return the entry to display.
func (r *Resolver) Resolve(ctx context.Context, now time.Time) model.ResolvedEntry {
	live, err := r.fetchLive(ctx, now)
	if err != nil {
		r.logger.Info("live query failed, serving from cache", "error", err)
		return r.resolveDegraded(now)
	}
	return r.resolveLive(ctx, now, live)
}

// liveResult joins the two concurrent read-only queries of the live path.
type liveResult struct {
	samples []model.Sample
	latest  *time.Time
	goal    float64
}

// fetchLive issues the today-data and goal queries concurrently and joins
// them. The today query is authoritative: its failure fails the live path.
// A goal-only failure is tolerated; the goal then falls back to the cached
// value so a flaky goal endpoint cannot degrade the whole entry.
func (r *Resolver) fetchLive(ctx context.Context, now time.Time) (liveResult, error) {
	var (
		res     liveResult
		goalErr error
		todErr  error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		res.goal, goalErr = r.source.FetchGoal(ctx)
	}()
	res.samples, res.latest, todErr = r.source.FetchTodayHourly(ctx)
	<-done

	if todErr != nil {
		return liveResult{}, todErr
	}
	if goalErr != nil {
		r.logger.Warn("goal query failed, using cached goal", "error", goalErr)
		if cached, ok := r.store.LoadToday(); ok {
			res.goal = cached.Goal
		}
	}
	if err := ctx.Err(); err != nil {
		// Canceled mid-fetch: a partial result must never reach the cache.
		return liveResult{}, err
	}
	return res, nil
}

func (r *Resolver) resolveLive(ctx context.Context, now time.Time, live liveResult) model.ResolvedEntry {
	dayStart := model.DayStart(now)

	// The as-of instant tracks the data's own freshness, not the wall
	// clock: a delayed sync must not show a "now" marker ahead of the data.
	asOf := now
	if live.latest != nil && live.latest.Before(now) {
		asOf = *live.latest
	}

	today := series.Build(live.samples, dayStart, asOf)

	avg, avgOK := r.weekdayAverage(ctx, now)

	entry := r.compose(asOf, today, avg, avgOK, live.goal, true)

	// Side effect of every successful live query: the today store is
	// rewritten so the next provider outage still has today's shape.
	if ctx.Err() == nil {
		snap := model.TodaySnapshot{
			Total:        today.Total(),
			Pattern:      today,
			Goal:         live.goal,
			LatestSample: live.latest,
			WrittenAt:    now,
		}
		if err := r.store.SaveToday(snap); err != nil {
			r.logger.Warn("today cache write failed", "error", err)
		}
	}

	return entry
}

// weekdayAverage serves the current weekday's snapshot, recomputing and
// persisting it first when the refresh gate says it is due.
func (r *Resolver) weekdayAverage(ctx context.Context, now time.Time) (model.WeekdayAverageSnapshot, bool) {
	weekday := now.Weekday()

	if r.store.ShouldRefresh(weekday, now) {
		if snap, ok := r.refreshAverage(ctx, now); ok {
			return snap, true
		}
		// Refresh failed: fall through to whatever the cache still holds.
	}
	return r.store.LoadAverage(weekday, now)
}

func (r *Resolver) refreshAverage(ctx context.Context, now time.Time) (model.WeekdayAverageSnapshot, bool) {
	return r.RefreshWeekday(ctx, now.Weekday(), now)
}

// RefreshWeekday recomputes one weekday's snapshot from the source and
// persists it, bypassing the staleness gate. Inspection surfaces use it to
// fill a slot for a weekday other than today's.
func (r *Resolver) RefreshWeekday(ctx context.Context, weekday time.Weekday, now time.Time) (model.WeekdayAverageSnapshot, bool) {
	hist, err := r.source.FetchHistoricalForWeekday(ctx, weekday, r.historyWeeks)
	if err != nil {
		r.logger.Warn("historical query failed, keeping stale average",
			"weekday", weekday.String(), "error", err)
		return model.WeekdayAverageSnapshot{}, false
	}

	pattern, projected := average.Compute(hist, weekday, model.DayStart(now), now)
	snap := model.WeekdayAverageSnapshot{
		Weekday:        weekday,
		Pattern:        pattern,
		ProjectedTotal: projected,
		WrittenAt:      now,
	}

	if err := ctx.Err(); err != nil {
		return model.WeekdayAverageSnapshot{}, false
	}
	if err := r.store.SaveAverage(snap); err != nil {
		// A failed cache write degrades future calls to live-only; this
		// call still has the freshly computed snapshot.
		r.logger.Warn("average cache write failed", "weekday", weekday.String(), "error", err)
	}
	return snap, true
}

// resolveDegraded walks the cache layers after a live failure: same-day
// today snapshot first, then the weekday average alone, then the empty
// entry whose authorized flag depends on whether any cache exists at all.
func (r *Resolver) resolveDegraded(now time.Time) model.ResolvedEntry {
	weekday := now.Weekday()

	if cached, ok := r.store.FreshToday(now); ok {
		// Values freeze at the cache's own freshness instant; it becomes
		// the effective as-of in place of now.
		asOf := *cached.LatestSample
		avg, avgOK := r.store.LoadAverage(weekday, now)
		return r.compose(asOf, cached.Pattern, avg, avgOK, cached.Goal, true)
	}

	if avg, ok := r.store.LoadAverage(weekday, now); ok {
		goal := 0.0
		if stale, staleOK := r.store.LoadToday(); staleOK {
			goal = stale.Goal
		}
		return r.compose(now, model.ZeroSeries(model.DayStart(now)), avg, true, goal, true)
	}

	// No usable cache. Any record at all still proves a prior grant.
	authorized := r.store.HasAny()
	return model.ResolvedEntry{
		AsOf:        now,
		Authorized:  authorized,
		TodaySeries: model.DaySeries{},
	}
}

// compose assembles the final entry from a today series and an optional
// weekday-average snapshot, interpolating the average at the as-of instant.
func (r *Resolver) compose(asOf time.Time, today model.DaySeries, avg model.WeekdayAverageSnapshot, avgOK bool, goalKcal float64, authorized bool) model.ResolvedEntry {
	entry := model.ResolvedEntry{
		AsOf:        asOf,
		Authorized:  authorized,
		TodayTotal:  today.Total(),
		Goal:        goalKcal,
		TodaySeries: today,
	}
	if avgOK {
		pattern := model.Rebase(avg.Pattern, model.DayStart(asOf))
		entry.AverageSeries = pattern
		entry.ProjectedTotal = avg.ProjectedTotal
		if v, ok := series.Interpolate(pattern, asOf); ok {
			entry.AverageAtAsOf = v
		}
	}
	return entry
}

// StraddlesMidnight reports whether the gap between a resolution at now and
// the next scheduled one crosses a day boundary, in which case the host
// should display a synthesized midnight entry instead of stale evening data.
func StraddlesMidnight(now, next time.Time) bool {
	return !model.SameDay(now, next)
}

// MidnightEntry synthesizes the deterministic zero-state entry for the
// instant midnight of the new day. No live query is needed: today resets to
// zero by definition, and the average carries forward from the NEW
// weekday's snapshot. The projection record is cleared so yesterday's
// closing projection can't trigger a crossing against the fresh morning.
func (r *Resolver) MidnightEntry(midnight time.Time) model.ResolvedEntry {
	midnight = model.DayStart(midnight)

	if err := r.store.ClearProjection(); err != nil {
		r.logger.Warn("projection clear failed at rollover", "error", err)
	}

	goal := 0.0
	if cached, ok := r.store.LoadToday(); ok {
		goal = cached.Goal
	}

	avg, avgOK := r.store.LoadAverage(midnight.Weekday(), midnight)
	entry := r.compose(midnight, model.ZeroSeries(midnight), avg, avgOK, goal, true)
	if !avgOK && !r.store.HasAny() {
		entry.Authorized = false
	}
	return entry
}
