package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kcalpace/internal/cli"

	"github.com/spf13/cobra"
)

var flagWeekday string

var averageCmd = &cobra.Command{
	Use:   "average [weekday]",
	Short: "Typical weekday pattern and projected total",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAverage,
}

func init() {
	averageCmd.Flags().StringVarP(&flagWeekday, "weekday", "w", "", "Weekday to show (mon..sun, default today)")
	rootCmd.AddCommand(averageCmd)
}

func parseWeekday(s string, fallback time.Weekday) (time.Weekday, error) {
	if s == "" {
		return fallback, nil
	}
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
		"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
		"sat": time.Saturday,
	}
	if w, ok := names[strings.ToLower(s[:min(3, len(s))])]; ok {
		return w, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func runAverage(_ *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	at, err := resolveAt()
	if err != nil {
		return err
	}

	name := flagWeekday
	if len(args) > 0 {
		name = args[0]
	}
	weekday, err := parseWeekday(name, at.Weekday())
	if err != nil {
		return err
	}

	snap, ok := d.store.LoadAverage(weekday, at)
	if !ok {
		// No usable slot; compute the requested weekday from the source
		// directly, so asking about Monday works on a Friday too.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, ok = d.resolver.RefreshWeekday(ctx, weekday, at)
	}
	if !ok {
		fmt.Printf("\n  No average data for %s yet.\n", cli.FormatDayOfWeek(int(weekday)))
		fmt.Println("  It builds up as historical samples accumulate.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TYPICAL %s", strings.ToUpper(cli.FormatDayOfWeek(int(weekday))))))
	fmt.Println()

	rows := make([][]string, 0, len(snap.Pattern.Points))
	prev := 0.0
	for _, p := range snap.Pattern.Points[1:] {
		rows = append(rows, []string{
			cli.FormatClock(p.Timestamp),
			cli.FormatKcalShort(p.Cumulative - prev),
			cli.FormatKcalShort(p.Cumulative),
		})
		prev = p.Cumulative
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"By", "Burn", "Cumulative"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  Projected full-day total: %s\n", cli.FormatKcal(snap.ProjectedTotal))
	fmt.Println(cli.RenderStatusLine(fmt.Sprintf("computed %s", snap.WrittenAt.Format("2006-01-02"))))
	fmt.Println()

	return nil
}
