package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kcalpace/internal/logging"
	"kcalpace/internal/model"
)

// DirProvider reads exported energy samples from a directory: one JSONL
// file per calendar day named energy-2006-01-02.jsonl, each line a
// {"ts": RFC3339, "kcal": float} record, plus an optional goal.json holding
// {"kcal": float}. A phone-side export job keeps the directory current.
type DirProvider struct {
	dir    string
	logger *slog.Logger

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// NewDirProvider wraps an export directory. The directory is probed lazily,
// so a not-yet-granted export simply fails each fetch with ErrUnauthorized.
func NewDirProvider(dir string, logger *slog.Logger) *DirProvider {
	return &DirProvider{
		dir:    dir,
		logger: logging.WithComponent(logger, "provider"),
	}
}

func (p *DirProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// checkDir maps a missing export directory to the unauthorized state: no
// export has ever been set up, which is indistinguishable from no grant.
func (p *DirProvider) checkDir() error {
	info, err := os.Stat(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return ErrUnauthorized
	}
	return nil
}

func dayFile(day time.Time) string {
	return "energy-" + day.Format("2006-01-02") + ".jsonl"
}

// FetchTodayHourly reads today's sample file. A missing day file is an
// authorized-but-empty day, not an error.
func (p *DirProvider) FetchTodayHourly(ctx context.Context) ([]model.Sample, *time.Time, error) {
	if err := p.checkDir(); err != nil {
		return nil, nil, err
	}

	samples, err := p.readDay(ctx, p.now())
	if err != nil {
		return nil, nil, err
	}

	var latest *time.Time
	for _, s := range samples {
		if latest == nil || s.Start.After(*latest) {
			t := s.Start
			latest = &t
		}
	}
	return samples, latest, nil
}

// FetchHistoricalForWeekday reads the day files for the last `weeks`
// occurrences of weekday, skipping days that were never exported.
func (p *DirProvider) FetchHistoricalForWeekday(ctx context.Context, weekday time.Weekday, weeks int) ([]model.Sample, error) {
	if err := p.checkDir(); err != nil {
		return nil, err
	}
	if weeks < 1 {
		weeks = 1
	}

	var out []model.Sample
	day := model.DayStart(p.now())
	for i := 0; i < weeks*7; i++ {
		day = day.AddDate(0, 0, -1)
		if day.Weekday() != weekday {
			continue
		}
		samples, err := p.readDay(ctx, day)
		if err != nil {
			return nil, err
		}
		out = append(out, samples...)
	}
	return out, nil
}

// FetchGoal reads goal.json. A missing goal file means no goal is set,
// reported as zero.
func (p *DirProvider) FetchGoal(_ context.Context) (float64, error) {
	if err := p.checkDir(); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(filepath.Join(p.dir, "goal.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var g struct {
		Kcal float64 `json:"kcal"`
	}
	if err := json.Unmarshal(data, &g); err != nil {
		return 0, fmt.Errorf("%w: malformed goal.json: %v", ErrUnavailable, err)
	}
	return g.Kcal, nil
}

// readDay parses one day file line by line. Individual malformed lines are
// skipped with a warning; the provider trusts sample contents otherwise.
func (p *DirProvider) readDay(ctx context.Context, day time.Time) ([]model.Sample, error) {
	path := filepath.Join(p.dir, dayFile(day))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	var samples []model.Sample
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var s model.Sample
		if err := json.Unmarshal(raw, &s); err != nil {
			p.logger.Warn("skipping malformed sample line",
				"file", filepath.Base(path), "line", line, "error", err)
			continue
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return samples, nil
}
