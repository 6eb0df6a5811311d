package cmd

import (
	"fmt"
	"time"

	"kcalpace/internal/cli"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the snapshot cache",
	RunE:  runCacheStatus,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache record freshness",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache records",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(_ *cobra.Command, _ []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	now, err := resolveAt()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CACHE STATUS"))
	fmt.Println()

	rows := [][]string{}

	if snap, ok := d.store.FreshToday(now); ok {
		rows = append(rows, []string{"today", "fresh", cli.FormatKcal(snap.Total), cli.FormatAge(*snap.LatestSample, now)})
	} else if snap, ok := d.store.LoadToday(); ok {
		age := "no sample timestamp"
		if snap.LatestSample != nil {
			age = cli.FormatAge(*snap.LatestSample, now)
		}
		rows = append(rows, []string{"today", "stale", cli.FormatKcal(snap.Total), age})
	} else {
		rows = append(rows, []string{"today", "missing", "", ""})
	}

	rows = append(rows, []string{"---"})

	for w := time.Sunday; w <= time.Saturday; w++ {
		label := "avg " + cli.FormatDayOfWeek(int(w))
		if snap, ok := d.store.LoadAverage(w, now); ok {
			state := "fresh"
			if d.store.ShouldRefresh(w, now) {
				state = "refresh due"
			}
			rows = append(rows, []string{label, state, cli.FormatKcal(snap.ProjectedTotal), cli.FormatAge(snap.WrittenAt, now)})
		} else {
			rows = append(rows, []string{label, "missing", "", ""})
		}
	}

	rows = append(rows, []string{"---"})

	if snap, ok := d.store.LoadProjection(now); ok {
		rows = append(rows, []string{"projection", "fresh", cli.FormatKcal(snap.ProjectedTotal), cli.FormatAge(snap.ObservedAt, now)})
	} else {
		rows = append(rows, []string{"projection", "missing", "", ""})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Record", "State", "Value", "Age"},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.store.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Println("  Cache cleared. The next run rebuilds it from live data.")
	return nil
}
