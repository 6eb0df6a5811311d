// Package cmd implements the kcalpace CLI commands.
package cmd

import (
	"fmt"

	"kcalpace/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.GoalKcal > 0 {
		fmt.Printf("    Daily goal:         %.0f kcal\n", cfg.General.GoalKcal)
	} else {
		fmt.Println("    Daily goal:         not set")
	}
	fmt.Printf("    History weeks:      %d\n", cfg.General.HistoryWeeks)
	fmt.Printf("    Refresh after hour: %02d:00\n", cfg.General.RefreshAfterHour)
	fmt.Println()

	fmt.Println("  [Source]")
	fmt.Printf("    Samples directory: %s\n", config.SamplesDir(cfg))
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Backend:   %s\n", cfg.Cache.Backend)
	fmt.Printf("    Directory: %s\n", config.CacheDir(cfg))
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Refresh interval: %dm\n", cfg.Daemon.RefreshMinutes)
	fmt.Printf("    Listen address:   %s\n", cfg.Daemon.ListenAddr)
	fmt.Println()

	fmt.Println("  [Notify]")
	topic := config.GetNtfyTopic(cfg)
	if topic != "" {
		fmt.Printf("    ntfy topic: %s\n", topic)
	} else {
		fmt.Println("    ntfy topic: not configured")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `kcalpace setup` to reconfigure.")
	return nil
}
