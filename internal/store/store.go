package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kcalpace/internal/logging"
	"kcalpace/internal/model"
)

const (
	todayKey      = "today.json"
	projectionKey = "projection.json"

	// averageMaxAge is how long a weekday-average snapshot stays usable.
	averageMaxAge = 30 * 24 * time.Hour
)

func averageKey(w time.Weekday) string {
	return fmt.Sprintf("average-%d.json", int(w))
}

// Store is the layered snapshot cache: one today record, seven
// weekday-average records, one projection record, each with its own
// staleness rule. All reads tolerate missing or corrupt blobs by reporting
// absence; all writes replace a whole record through the container.
type Store struct {
	container Container
	logger    *slog.Logger

	// refreshAfterHour gates weekday-average refreshes of stale-but-present
	// slots: before this local hour a stale slot is served as-is so
	// background wakeups don't recompute at arbitrary night hours.
	refreshAfterHour int
}

// New wraps a container. A nil logger disables logging.
func New(container Container, refreshAfterHour int, logger *slog.Logger) *Store {
	return &Store{
		container:        container,
		logger:           logging.WithComponent(logger, "store"),
		refreshAfterHour: refreshAfterHour,
	}
}

// load decodes one record into dst, mapping missing and corrupt blobs both
// to absence. Corruption is logged; the caller regenerates on the next
// successful live fetch.
func (s *Store) load(key string, dst any) bool {
	data, err := s.container.Read(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("unreadable cache record, treating as absent",
				"key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("corrupt cache record, treating as absent",
			"key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.container.Write(key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// SaveToday replaces the today record.
func (s *Store) SaveToday(snap model.TodaySnapshot) error {
	return s.save(todayKey, snap)
}

// LoadToday returns the raw today record regardless of freshness.
func (s *Store) LoadToday() (model.TodaySnapshot, bool) {
	var snap model.TodaySnapshot
	ok := s.load(todayKey, &snap)
	return snap, ok
}

// FreshToday returns the today record only when it is usable at now: its
// latest-sample timestamp must be present and on the same calendar day.
// A record with no freshness timestamp is stale by definition, never
// trusted.
func (s *Store) FreshToday(now time.Time) (model.TodaySnapshot, bool) {
	snap, ok := s.LoadToday()
	if !ok {
		return model.TodaySnapshot{}, false
	}
	if snap.LatestSample == nil {
		return model.TodaySnapshot{}, false
	}
	if !model.SameDay(snap.LatestSample.In(now.Location()), now) {
		return model.TodaySnapshot{}, false
	}
	return snap, true
}

// SaveAverage replaces the record for the snapshot's weekday.
func (s *Store) SaveAverage(snap model.WeekdayAverageSnapshot) error {
	return s.save(averageKey(snap.Weekday), snap)
}

// LoadAverage returns the weekday-average record for w when present and not
// older than the staleness window. The caller always names the weekday
// explicitly; a slot for another weekday is simply a different record.
func (s *Store) LoadAverage(w time.Weekday, now time.Time) (model.WeekdayAverageSnapshot, bool) {
	var snap model.WeekdayAverageSnapshot
	if !s.load(averageKey(w), &snap) {
		return model.WeekdayAverageSnapshot{}, false
	}
	if now.Sub(snap.WrittenAt) > averageMaxAge {
		return model.WeekdayAverageSnapshot{}, false
	}
	return snap, true
}

// ShouldRefresh reports whether the weekday-average slot for w needs
// recomputing at now: always for a missing slot, and for a present one only
// when it was not written today AND now is past the refresh-window start
// hour. Deferring stale refreshes keeps overnight wakeups cheap.
func (s *Store) ShouldRefresh(w time.Weekday, now time.Time) bool {
	var snap model.WeekdayAverageSnapshot
	if !s.load(averageKey(w), &snap) {
		return true
	}
	if model.SameDay(snap.WrittenAt.In(now.Location()), now) {
		return false
	}
	return now.Hour() >= s.refreshAfterHour
}

// SaveProjection replaces the projection record.
func (s *Store) SaveProjection(snap model.ProjectionSnapshot) error {
	return s.save(projectionKey, snap)
}

// LoadProjection returns the projection record only when it was observed on
// the same calendar day as now; yesterday's closing projection must never be
// compared against today's early-morning one.
func (s *Store) LoadProjection(now time.Time) (model.ProjectionSnapshot, bool) {
	var snap model.ProjectionSnapshot
	if !s.load(projectionKey, &snap) {
		return model.ProjectionSnapshot{}, false
	}
	if !model.SameDay(snap.ObservedAt.In(now.Location()), now) {
		return model.ProjectionSnapshot{}, false
	}
	return snap, true
}

// ClearProjection removes the projection record. Called at day rollover.
func (s *Store) ClearProjection() error {
	return s.container.Delete(projectionKey)
}

// Clear removes every cache record. The next live fetch rebuilds them.
func (s *Store) Clear() error {
	keys := []string{todayKey, projectionKey}
	for w := time.Sunday; w <= time.Saturday; w++ {
		keys = append(keys, averageKey(w))
	}
	for _, key := range keys {
		if err := s.container.Delete(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// HasAny reports whether any record exists at all. Cache presence proves the
// user granted data access at some point, which the resolver uses to
// distinguish "degraded" from "unauthorized".
func (s *Store) HasAny() bool {
	if _, ok := s.LoadToday(); ok {
		return true
	}
	for w := time.Sunday; w <= time.Saturday; w++ {
		var snap model.WeekdayAverageSnapshot
		if s.load(averageKey(w), &snap) {
			return true
		}
	}
	var p model.ProjectionSnapshot
	return s.load(projectionKey, &p)
}
