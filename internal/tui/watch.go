// Package tui provides the interactive Bubble Tea watch view for kcalpace.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kcalpace/internal/cli"
	"kcalpace/internal/model"
	"kcalpace/internal/resolve"
	"kcalpace/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = time.Minute

// EntryMsg is sent when a resolve pass finishes.
type EntryMsg struct {
	Entry model.ResolvedEntry
	At    time.Time
}

// TickMsg drives the periodic refresh.
type TickMsg time.Time

// Watch is the root Bubble Tea model for the live view.
type Watch struct {
	resolver *resolve.Resolver
	goalKcal float64

	entry    model.ResolvedEntry
	loaded   bool
	lastTick time.Time

	width   int
	height  int
	spinner spinner.Model
	goalBar progress.Model
}

// NewWatch builds the watch model. goalKcal of zero falls back to the
// entry's own goal.
func NewWatch(resolver *resolve.Resolver, goalKcal float64) Watch {
	t := theme.Active

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent)

	bar := progress.New(
		progress.WithSolidFill(string(t.Green)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return Watch{
		resolver: resolver,
		goalKcal: goalKcal,
		lastTick: time.Now(),
		spinner:  sp,
		goalBar:  bar,
	}
}

func (w Watch) Init() tea.Cmd {
	return tea.Batch(w.spinner.Tick, w.resolveCmd(time.Now()), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (w Watch) resolveCmd(now time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return EntryMsg{Entry: w.resolver.Resolve(ctx, now), At: now}
	}
}

// midnightCmd synthesizes the new day's zero entry off the update loop; the
// store round-trip inside MidnightEntry must not block rendering.
func (w Watch) midnightCmd(now time.Time) tea.Cmd {
	return func() tea.Msg {
		return EntryMsg{Entry: w.resolver.MidnightEntry(now), At: now}
	}
}

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return w, tea.Quit
		case "r":
			return w, w.resolveCmd(time.Now())
		}

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case TickMsg:
		now := time.Time(msg)
		prev := w.lastTick
		w.lastTick = now
		if resolve.StraddlesMidnight(prev, now) {
			// The new day starts from a synthesized zero entry; the next
			// tick picks up live data.
			return w, tea.Batch(w.midnightCmd(now), tickCmd())
		}
		return w, tea.Batch(w.resolveCmd(now), tickCmd())

	case EntryMsg:
		w.entry = msg.Entry
		w.loaded = true
		return w, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}

	return w, nil
}

func (w Watch) View() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	warnStyle := lipgloss.NewStyle().Foreground(t.Red)

	var b strings.Builder
	b.WriteString(titleStyle.Render("kcalpace"))
	b.WriteString("\n\n")

	if !w.loaded {
		b.WriteString(w.spinner.View())
		b.WriteString(labelStyle.Render(" loading..."))
		b.WriteString("\n")
		return b.String()
	}

	entry := w.entry
	if !entry.Authorized {
		b.WriteString(warnStyle.Render("no energy data available"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("check the samples directory and run kcalpace setup"))
		b.WriteString("\n")
		return b.String()
	}

	goalKcal := w.goalKcal
	if goalKcal <= 0 {
		goalKcal = entry.Goal
	}

	// Goal progress
	if goalKcal > 0 {
		pct := entry.TodayTotal / goalKcal
		if pct > 1 {
			pct = 1
		}
		b.WriteString(labelStyle.Render("goal    "))
		b.WriteString(w.goalBar.ViewAs(pct))
		b.WriteString(fmt.Sprintf(" %s / %s\n", cli.FormatKcalShort(entry.TodayTotal), cli.FormatKcal(goalKcal)))
	} else {
		b.WriteString(labelStyle.Render("today   "))
		b.WriteString(cli.FormatKcal(entry.TodayTotal))
		b.WriteString("\n")
	}

	// Pace against the typical same weekday
	b.WriteString("\n")
	b.WriteString(cli.RenderPaceBars(entry.TodayTotal, entry.AverageAtAsOf, 30))

	if entry.ProjectedTotal > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("  projected "))
		b.WriteString(cli.FormatKcal(entry.ProjectedTotal))
		b.WriteString(dimStyle.Render(" by end of day"))
		b.WriteString("\n")
	}

	// Hourly shape of the day so far
	if deltas := hourlyDeltas(entry.TodaySeries); len(deltas) > 1 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("  hourly  "))
		b.WriteString(cli.RenderSparkline(deltas))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  as of %s (%s)", cli.FormatClock(entry.AsOf), cli.FormatAge(entry.AsOf, time.Now()))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  r refresh · q quit"))
	b.WriteString("\n")

	return b.String()
}

// hourlyDeltas converts a cumulative series into per-hour increments for
// the sparkline.
func hourlyDeltas(s model.DaySeries) []float64 {
	if len(s.Points) < 2 {
		return nil
	}
	deltas := make([]float64, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		deltas = append(deltas, s.Points[i].Cumulative-s.Points[i-1].Cumulative)
	}
	return deltas
}
