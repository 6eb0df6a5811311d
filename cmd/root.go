package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kcalpace/internal/config"
	"kcalpace/internal/logging"
	"kcalpace/internal/model"
	"kcalpace/internal/provider"
	"kcalpace/internal/resolve"
	"kcalpace/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagSamplesDir string
	flagCacheDir   string
	flagGoal       float64
	flagAt         string
	flagBackend    string
	flagQuiet      bool
	flagDemo       bool
)

var rootCmd = &cobra.Command{
	Use:   "kcalpace",
	Short: "Energy burn pacing CLI",
	Long:  "Track today's energy burn against your typical day: cumulative series, weekday averages, and a projected daily total.",
	RunE:  runEntry,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagSamplesDir, "samples-dir", "d", "", "Energy sample directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default from config)")
	rootCmd.PersistentFlags().Float64VarP(&flagGoal, "goal", "g", 0, "Daily goal in kcal (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAt, "at", "", "Resolve as of this RFC3339 instant instead of now")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "cache-backend", "", "Cache backend: file or sqlite (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use built-in demo data and a throwaway cache")
}

// deps bundles everything a command needs, built once per invocation.
type deps struct {
	cfg      config.Config
	store    *store.Store
	source   provider.HealthData
	dir      *provider.DirProvider // nil in demo mode
	resolver *resolve.Resolver
	close    func()
}

// buildDeps wires config, cache container, sample source, and resolver.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.NewNop()
	if !flagQuiet {
		logger = logging.New(cfg.General.LogLevel)
	}

	cacheDir := flagCacheDir
	if cacheDir == "" {
		cacheDir = config.CacheDir(cfg)
	}
	var demoTmp string
	if flagDemo {
		// Demo data must never leak into the real cache records.
		tmp, err := os.MkdirTemp("", "kcalpace-demo-")
		if err != nil {
			return nil, fmt.Errorf("creating demo cache: %w", err)
		}
		cacheDir = tmp
		demoTmp = tmp
	}

	backend := flagBackend
	if backend == "" {
		backend = cfg.Cache.Backend
	}

	var (
		container store.Container
		closeFn   = func() {}
	)
	switch backend {
	case "sqlite":
		db, err := store.OpenSQLite(filepath.Join(cacheDir, "kcalpace.db"))
		if err != nil {
			return nil, fmt.Errorf("opening cache database: %w", err)
		}
		container = db
		closeFn = func() { _ = db.Close() }
	case "", "file":
		fc, err := store.NewFileContainer(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("opening cache directory: %w", err)
		}
		container = fc
	default:
		return nil, fmt.Errorf("unknown cache backend %q (file or sqlite)", backend)
	}

	st := store.New(container, cfg.General.RefreshAfterHour, logger)

	if demoTmp != "" {
		base := closeFn
		closeFn = func() {
			base()
			_ = os.RemoveAll(demoTmp)
		}
	}

	d := &deps{cfg: cfg, store: st, close: closeFn}
	if flagDemo {
		at, err := resolveAt()
		if err != nil {
			return nil, err
		}
		d.source = provider.Demo(at)
	} else {
		samplesDir := flagSamplesDir
		if samplesDir == "" {
			samplesDir = config.SamplesDir(cfg)
		}
		d.dir = provider.NewDirProvider(samplesDir, logger)
		d.source = d.dir
	}
	d.resolver = resolve.New(d.source, st, cfg.General.HistoryWeeks, logger)
	return d, nil
}

// resolveEntry runs one resolve pass at the effective instant. An --at
// override also pins the sample source's clock so "today" means the same
// day everywhere.
func resolveEntry(d *deps) (model.ResolvedEntry, time.Time, error) {
	at, err := resolveAt()
	if err != nil {
		return model.ResolvedEntry{}, time.Time{}, err
	}
	if flagAt != "" && d.dir != nil {
		d.dir.Now = func() time.Time { return at }
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return d.resolver.Resolve(ctx, at), at, nil
}

// resolveAt returns the instant commands resolve against: --at when given,
// otherwise the wall clock.
func resolveAt() (time.Time, error) {
	if flagAt == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, flagAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value %q: %w", flagAt, err)
	}
	return at.Local(), nil
}

// effectiveGoal applies the flag/config/entry precedence for the daily goal.
func effectiveGoal(cfg config.Config, entryGoal float64) float64 {
	if flagGoal > 0 {
		return flagGoal
	}
	if cfg.General.GoalKcal > 0 {
		return cfg.General.GoalKcal
	}
	return entryGoal
}
