package energy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jgoulah/envirolink/internal/config"
	"github.com/jgoulah/envirolink/pkg/models"
)

// MaxDays is the longest period Week will collect
const MaxDays = 30

// ErrNoData is returned when a source has no readings for the requested day
var ErrNoData = errors.New("no energy data")

// Source supplies daily and real-time readings
type Source interface {
	Daily(ctx context.Context, date time.Time) (models.DailyAggregate, error)
	RealTime(ctx context.Context) (models.EnergyReading, error)
}

// Dashboard supplies the category breakdown and pre-written tips
type Dashboard interface {
	Breakdown(ctx context.Context) ([]models.UsageBreakdown, error)
	Tips(ctx context.Context) ([]models.EnergyInsight, error)
}

// Week collects n consecutive days starting at start
func Week(ctx context.Context, src Source, start time.Time, n int) ([]models.DailyAggregate, error) {
	if n < 1 || n > MaxDays {
		return nil, fmt.Errorf("days must be between 1 and %d, got %d", MaxDays, n)
	}

	days := make([]models.DailyAggregate, 0, n)
	start = startOfDay(start)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		day, err := src.Daily(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", date.Format("2006-01-02"), err)
		}
		days = append(days, day)
	}
	return days, nil
}

// LastDays collects the n days ending today
func LastDays(ctx context.Context, src Source, now time.Time, n int) ([]models.DailyAggregate, error) {
	return Week(ctx, src, now.AddDate(0, 0, -(n - 1)), n)
}

// Available collects the days with data among the n days ending today,
// oldest first. Days reporting ErrNoData are skipped; ErrNoData is returned
// only when none of the n days has data.
func Available(ctx context.Context, src Source, now time.Time, n int) ([]models.DailyAggregate, error) {
	if n < 1 || n > MaxDays {
		return nil, fmt.Errorf("days must be between 1 and %d, got %d", MaxDays, n)
	}

	start := startOfDay(now).AddDate(0, 0, -(n - 1))
	var days []models.DailyAggregate
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		day, err := src.Daily(ctx, date)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", date.Format("2006-01-02"), err)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, ErrNoData
	}
	return days, nil
}

// Provider is a Source that can also feed the dashboard
type Provider interface {
	Source
	Dashboard
}

// NewRemoteOrMock returns the configured energy API client, or mock data
// when no API URL is configured
func NewRemoteOrMock(cfg *config.Config) Provider {
	if cfg.EnergyAPI.URL != "" {
		return NewHTTPSource(cfg.EnergyAPI.URL, cfg.GetEnergyAPIKey(), cfg.GetEnergyAPITimeout())
	}
	return NewMockSource(time.Now().UnixNano())
}
