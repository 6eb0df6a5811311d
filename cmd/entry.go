package cmd

import (
	"fmt"

	"kcalpace/internal/cli"

	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Today's burn against your typical day",
	RunE:  runEntry,
}

func init() {
	rootCmd.AddCommand(entryCmd)
}

func runEntry(_ *cobra.Command, _ []string) error {
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
		fmt.Println("  Check the samples directory, or run `kcalpace setup`.")
		return nil
	}

	goalKcal := effectiveGoal(d.cfg, entry.Goal)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("KCALPACE  %s %s",
		cli.FormatDayOfWeek(int(entry.AsOf.Weekday())), entry.AsOf.Format("2006-01-02"))))
	fmt.Println()

	rows := [][]string{
		{"Today", cli.FormatKcal(entry.TodayTotal)},
		{"Typical by now", cli.FormatKcal(entry.AverageAtAsOf)},
		{"Pace", cli.FormatDelta(entry.TodayTotal, entry.AverageAtAsOf)},
		{"---"},
		{"Projected total", cli.FormatKcal(entry.ProjectedTotal)},
	}
	if goalKcal > 0 {
		rows = append(rows,
			[]string{"Goal", cli.FormatKcal(goalKcal)},
			[]string{"Goal progress", cli.FormatPercent(entry.TodayTotal / goalKcal)},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if goalKcal > 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderGoalBar(entry.TodayTotal, goalKcal, 40))
	}

	fmt.Println()
	fmt.Println(cli.RenderStatusLine(fmt.Sprintf("as of %s", cli.FormatClock(entry.AsOf))))
	fmt.Println()

	return nil
}
