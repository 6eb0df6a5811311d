// Package daemon provides the long-running background refresh service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"kcalpace/internal/goal"
	"kcalpace/internal/logging"
	"kcalpace/internal/model"
	"kcalpace/internal/notify"
	"kcalpace/internal/resolve"
	"kcalpace/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	RefreshMinutes int
	Addr           string
	GoalKcal       float64
	EventsBuffer   int
}

// Event is emitted whenever a refresh produces a new entry.
type Event struct {
	ID        int64               `json:"id"`
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Entry     model.ResolvedEntry `json:"entry"`
	Crossing  string              `json:"crossing,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt          time.Time `json:"started_at"`
	LastRefreshAt      time.Time `json:"last_refresh_at"`
	RefreshIntervalMin int       `json:"refresh_interval_min"`
	RefreshCount       int64     `json:"refresh_count"`
	GoalKcal           float64   `json:"goal_kcal"`
	LastError          string    `json:"last_error,omitempty"`
	EventCount         int       `json:"event_count"`
	SubscriberCount    int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	resolver *resolve.Resolver
	store    *store.Store
	sender   notify.Sender
	logger   *slog.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	hasEntry      bool
	entry         model.ResolvedEntry
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, resolver *resolve.Resolver, st *store.Store, sender notify.Sender, logger *slog.Logger) *Service {
	if cfg.RefreshMinutes < 1 {
		cfg.RefreshMinutes = 15
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8641"
	}
	if sender == nil {
		sender = notify.New("", 0)
	}

	return &Service{
		cfg:       cfg,
		resolver:  resolver,
		store:     st,
		sender:    sender,
		logger:    logging.WithComponent(logger, "daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and the refresh schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/entry", s.handleEntry)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sched := cron.New()
	if _, err := sched.AddFunc(fmt.Sprintf("*/%d * * * *", s.cfg.RefreshMinutes), func() {
		s.refreshOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	if _, err := sched.AddFunc("0 0 * * *", func() {
		s.rollover(time.Now())
	}); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Seed an initial entry so /v1/entry is useful immediately.
	s.refreshOnce(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) refreshOnce(ctx context.Context) {
	now := time.Now()
	entry := s.resolver.Resolve(ctx, now)

	crossing := s.trackCrossing(ctx, entry, now)

	var ev Event

	s.mu.Lock()
	s.hasEntry = true
	s.entry = entry
	s.lastRefreshAt = now
	s.refreshCount++
	if entry.Authorized {
		s.lastError = ""
	} else {
		s.lastError = "no data source and no cache"
	}

	s.nextEventID++
	ev = Event{
		ID:        s.nextEventID,
		Type:      "entry",
		Timestamp: now,
		Entry:     entry,
	}
	if crossing != goal.None {
		ev.Type = "crossing"
		ev.Crossing = crossing.String()
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

// trackCrossing compares the new projected total against the last observed
// one and fires a notification when the goal boundary is crossed. Delivery
// failures are logged, never propagated.
func (s *Service) trackCrossing(ctx context.Context, entry model.ResolvedEntry, now time.Time) goal.Crossing {
	// Entries without an average snapshot carry a zero projection that means
	// "unknown", not "behind". Comparing or persisting it would turn a
	// transient outage into a crossing, so the tracker sits this one out and
	// keeps the last real baseline.
	if !entry.Authorized || entry.AverageSeries.Empty() {
		return goal.None
	}

	goalKcal := s.cfg.GoalKcal
	if goalKcal <= 0 {
		goalKcal = entry.Goal
	}

	var prev *float64
	if snap, ok := s.store.LoadProjection(now); ok {
		prev = &snap.ProjectedTotal
	}

	crossing := goal.DetectCrossing(prev, entry.ProjectedTotal, goalKcal)
	if crossing != goal.None {
		s.logger.Info("goal crossing detected",
			"crossing", crossing.String(),
			"projected", entry.ProjectedTotal,
			"goal", goalKcal)
		if err := s.sender.NotifyCrossing(ctx, crossing, entry.ProjectedTotal, goalKcal); err != nil {
			s.logger.Warn("crossing notification failed", "error", err)
		}
	}

	if err := s.store.SaveProjection(model.ProjectionSnapshot{
		ProjectedTotal: entry.ProjectedTotal,
		ObservedAt:     now,
	}); err != nil {
		s.logger.Warn("persisting projection failed", "error", err)
	}

	return crossing
}

// rollover publishes a synthesized midnight entry for the new day without
// touching the data source.
func (s *Service) rollover(now time.Time) {
	midnight := model.DayStart(now)
	entry := s.resolver.MidnightEntry(midnight)

	var ev Event

	s.mu.Lock()
	s.hasEntry = true
	s.entry = entry
	s.nextEventID++
	ev = Event{
		ID:        s.nextEventID,
		Type:      "rollover",
		Timestamp: now,
		Entry:     entry,
	}
	s.mu.Unlock()

	s.logger.Info("day rollover", "day", midnight.Format("2006-01-02"))
	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:          s.startedAt,
		LastRefreshAt:      s.lastRefreshAt,
		RefreshIntervalMin: s.cfg.RefreshMinutes,
		RefreshCount:       s.refreshCount,
		GoalKcal:           s.cfg.GoalKcal,
		LastError:          s.lastError,
		EventCount:         len(s.events),
		SubscriberCount:    len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleEntry(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	entry := s.entry
	ok := s.hasEntry
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "no entry yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entry)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current entry immediately.
	s.mu.RLock()
	if s.hasEntry {
		writeSSE(w, Event{Type: "entry", Timestamp: time.Now(), Entry: s.entry})
		flusher.Flush()
	}
	s.mu.RUnlock()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
