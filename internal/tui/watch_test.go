package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kcalpace/internal/model"
	"kcalpace/internal/provider"
	"kcalpace/internal/resolve"
	"kcalpace/internal/store"
)

func newWatchModel(t *testing.T, src provider.HealthData) Watch {
	t.Helper()
	c, err := store.NewFileContainer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(c, 6, nil)
	return NewWatch(resolve.New(src, st, 10, nil), 0)
}

func TestWatch_QuitKey(t *testing.T) {
	w := newWatchModel(t, &provider.Mock{})
	_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q produced no command")
	}
}

func TestWatch_ViewBeforeLoad(t *testing.T) {
	w := newWatchModel(t, &provider.Mock{})
	if !strings.Contains(w.View(), "loading") {
		t.Error("pre-load view missing loading indicator")
	}
}

func TestWatch_EntryMsgRendersTotals(t *testing.T) {
	w := newWatchModel(t, &provider.Mock{})
	now := time.Date(2026, 8, 14, 15, 40, 0, 0, time.UTC)

	entry := model.ResolvedEntry{
		AsOf:           now,
		Authorized:     true,
		TodayTotal:     550,
		AverageAtAsOf:  510,
		ProjectedTotal: 1013,
		Goal:           1000,
	}
	m, _ := w.Update(EntryMsg{Entry: entry, At: now})
	view := m.(Watch).View()

	if !strings.Contains(view, "550") {
		t.Error("view missing today total")
	}
	if !strings.Contains(view, "1,013 kcal") {
		t.Error("view missing projected total")
	}
}

func TestWatch_UnauthorizedView(t *testing.T) {
	w := newWatchModel(t, &provider.Mock{})
	m, _ := w.Update(EntryMsg{Entry: model.ResolvedEntry{Authorized: false}})
	view := m.(Watch).View()
	if !strings.Contains(view, "no energy data") {
		t.Error("unauthorized view missing message")
	}
}

func TestWatch_TickAcrossMidnightSynthesizes(t *testing.T) {
	// Source errors: a live resolve would produce a degraded entry, but the
	// midnight path must not consult the source at all.
	w := newWatchModel(t, &provider.Mock{Err: provider.ErrUnavailable})
	w.lastTick = time.Date(2026, 8, 14, 23, 59, 0, 0, time.UTC)

	next := time.Date(2026, 8, 15, 0, 0, 30, 0, time.UTC)
	m, cmd := w.Update(TickMsg(next))
	got := m.(Watch)

	// The synthesis runs as a command, not inside Update.
	if got.loaded {
		t.Fatal("entry set synchronously during the midnight tick")
	}
	if cmd == nil {
		t.Fatal("midnight tick produced no command")
	}

	msg := got.midnightCmd(next)()
	em, ok := msg.(EntryMsg)
	if !ok {
		t.Fatalf("midnight command produced %T, want EntryMsg", msg)
	}
	m, _ = got.Update(em)
	got = m.(Watch)

	if !got.loaded {
		t.Fatal("model not loaded after midnight entry")
	}
	if got.entry.TodayTotal != 0 {
		t.Errorf("today total = %v, want 0 at rollover", got.entry.TodayTotal)
	}
	if !got.entry.AsOf.Equal(model.DayStart(next)) {
		t.Errorf("as-of = %v, want midnight", got.entry.AsOf)
	}
}

func TestHourlyDeltas(t *testing.T) {
	day := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	s := model.DaySeries{Points: []model.HourlyPoint{
		{Timestamp: day, Cumulative: 0},
		{Timestamp: day.Add(time.Hour), Cumulative: 100},
		{Timestamp: day.Add(2 * time.Hour), Cumulative: 150},
	}}
	deltas := hourlyDeltas(s)
	if len(deltas) != 2 || deltas[0] != 100 || deltas[1] != 50 {
		t.Errorf("deltas = %v, want [100 50]", deltas)
	}
}
