package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"kcalpace/internal/config"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to kcalpace!")
	fmt.Println()

	// 1. Samples directory
	fmt.Println("  1. Energy samples directory")
	fmt.Println("     Where kcalpace finds the exported energy-YYYY-MM-DD.jsonl files.")
	fmt.Printf("     Current: %s\n", config.SamplesDir(cfg))
	fmt.Print("     > ")
	dir, _ := reader.ReadString('\n')
	dir = strings.TrimSpace(dir)
	if dir != "" {
		cfg.Source.SamplesDir = dir
	}
	fmt.Println()

	// 2. Daily goal
	fmt.Println("  2. Daily burn goal in kcal (empty to skip)")
	if cfg.General.GoalKcal > 0 {
		fmt.Printf("     Current: %.0f\n", cfg.General.GoalKcal)
	}
	fmt.Print("     > ")
	goalStr, _ := reader.ReadString('\n')
	goalStr = strings.TrimSpace(goalStr)
	if goalStr != "" {
		goalKcal, err := strconv.ParseFloat(goalStr, 64)
		if err != nil || goalKcal <= 0 {
			fmt.Println("     Not a positive number, keeping the current goal.")
		} else {
			cfg.General.GoalKcal = goalKcal
		}
	}
	fmt.Println()

	// 3. Cache backend
	fmt.Println("  3. Cache backend")
	fmt.Println("     (1) File (one JSON file per record) [default]")
	fmt.Println("     (2) SQLite")
	fmt.Print("     > ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "2":
		cfg.Cache.Backend = "sqlite"
	default:
		cfg.Cache.Backend = "file"
	}
	fmt.Println()

	// 4. Notifications
	fmt.Println("  4. ntfy topic URL for goal notifications (empty to disable)")
	if cfg.Notify.NtfyTopic != "" {
		fmt.Printf("     Current: %s\n", cfg.Notify.NtfyTopic)
	}
	fmt.Print("     > ")
	topic, _ := reader.ReadString('\n')
	topic = strings.TrimSpace(topic)
	if topic != "" {
		cfg.Notify.NtfyTopic = topic
	}
	fmt.Println()

	// 5. Theme
	fmt.Println("  5. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(themeChoice) {
	case "2":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `kcalpace setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
