package cmd

import (
	"fmt"
	"strings"
	"time"

	"kcalpace/internal/cli"
	"kcalpace/internal/model"

	"github.com/spf13/cobra"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Today's burn by hour, against the typical pattern",
	RunE:  runHourly,
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(_ *cobra.Command, _ []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	entry, _, err := resolveEntry(d)
	if err != nil {
		return err
	}

	if !entry.Authorized {
		fmt.Println("\n  No energy data available.")
		return nil
	}

	today := perHour(entry.TodaySeries)
	typical := perHour(entry.AverageSeries)

	maxKcal := 0.0
	for h := 0; h < 24; h++ {
		if today[h] > maxKcal {
			maxKcal = today[h]
		}
		if typical[h] > maxKcal {
			maxKcal = typical[h]
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HOURLY BURN  %s", entry.AsOf.Format("2006-01-02"))))
	fmt.Println()

	maxBarWidth := 30
	peakHour := 0
	for h := 0; h < 24; h++ {
		if today[h] > today[peakHour] {
			peakHour = h
		}

		todayLen, typicalLen := 0, 0
		if maxKcal > 0 {
			todayLen = int(today[h] / maxKcal * float64(maxBarWidth))
			typicalLen = int(typical[h] / maxKcal * float64(maxBarWidth))
		}

		marker := strings.Repeat("█", todayLen)
		ghost := ""
		if typicalLen > todayLen {
			ghost = strings.Repeat("░", typicalLen-todayLen)
		}

		fmt.Printf("  %02d:00 │ %6s │ %s%s\n",
			h, cli.FormatKcalShort(today[h]), marker, ghost)
	}

	if today[peakHour] > 0 {
		fmt.Printf("\n  Peak: %02d:00 (%s)    ░ marks the typical pace\n\n",
			peakHour, cli.FormatKcal(today[peakHour]))
	} else {
		fmt.Println()
	}

	return nil
}

// perHour flattens a cumulative series into per-hour increments indexed by
// local hour.
func perHour(s model.DaySeries) [24]float64 {
	var out [24]float64
	for i := 1; i < len(s.Points); i++ {
		delta := s.Points[i].Cumulative - s.Points[i-1].Cumulative
		// Completed hours are stamped at the hour end; attribute the burn
		// to the hour that produced it.
		h := s.Points[i].Timestamp.Add(-time.Minute).Hour()
		out[h] += delta
	}
	return out
}
