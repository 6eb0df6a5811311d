package cli

import (
	"testing"
	"time"
)

func TestFormatKcal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 kcal"},
		{42, "42 kcal"},
		{550.4, "550 kcal"},
		{1013, "1,013 kcal"},
		{12345.6, "12,346 kcal"},
	}
	for _, tt := range tests {
		if got := FormatKcal(tt.in); got != tt.want {
			t.Errorf("FormatKcal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(550, 510); got != "+40 kcal" {
		t.Errorf("FormatDelta(550, 510) = %q", got)
	}
	if got := FormatDelta(480, 510); got != "-30 kcal" {
		t.Errorf("FormatDelta(480, 510) = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 8, 14, 15, 40, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-8 * time.Minute), "8m ago"},
		{now.Add(-2*time.Hour - 5*time.Minute), "2h 5m ago"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.at, now); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestFormatDayOfWeek(t *testing.T) {
	if got := FormatDayOfWeek(5); got != "Fri" {
		t.Errorf("FormatDayOfWeek(5) = %q, want Fri", got)
	}
	if got := FormatDayOfWeek(9); got != "???" {
		t.Errorf("FormatDayOfWeek(9) = %q, want ???", got)
	}
}
