// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatKcal formats an energy value for display.
// e.g., 1013.4 -> "1,013 kcal", 42 -> "42 kcal"
func FormatKcal(kcal float64) string {
	return FormatNumber(int64(kcal+0.5)) + " kcal"
}

// FormatKcalShort formats an energy value without the unit suffix.
func FormatKcalShort(kcal float64) string {
	return FormatNumber(int64(kcal + 0.5))
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the gap between today and the typical pace, signed.
// e.g., today 550 vs average 510 -> "+40 kcal"
func FormatDelta(today, average float64) string {
	delta := today - average
	if delta >= 0 {
		return "+" + FormatKcal(delta)
	}
	return "-" + FormatKcal(-delta)
}

// FormatClock renders an instant as a local wall-clock time, e.g. "15:40".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// FormatAge describes how old a timestamp is relative to now.
// e.g., "8m ago", "2h 5m ago", "just now"
func FormatAge(t time.Time, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	hours := int(d / time.Hour)
	mins := int(d%time.Hour) / int(time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm ago", hours, mins)
	}
	return fmt.Sprintf("%dm ago", mins)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
