package energy

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

var mockInsights = []models.EnergyInsight{
	{
		ID:          "ins-1",
		Type:        models.InsightTip,
		Title:       "Reduce Standby Power",
		Description: "Your electronics use 12% more power in standby mode than average. Consider using power strips to completely turn off devices.",
		Impact:      5.2,
		Priority:    models.PriorityMedium,
	},
	{
		ID:          "ins-2",
		Type:        models.InsightAlert,
		Title:       "Unusual Consumption Pattern",
		Description: "Yesterday's evening consumption was 28% higher than your weekly average. Check if any appliances were left running.",
		Impact:      3.8,
		Priority:    models.PriorityHigh,
	},
	{
		ID:          "ins-3",
		Type:        models.InsightAchievement,
		Title:       "Weekly Goal Reached",
		Description: "You've reached your energy reduction goal for this week! You've saved 7.5 kWh compared to last week.",
		Impact:      7.5,
		Priority:    models.PriorityLow,
	},
	{
		ID:          "ins-4",
		Type:        models.InsightTip,
		Title:       "Optimal AC Temperature",
		Description: "Setting your AC to 78°F instead of 72°F could save up to 18% on cooling costs.",
		Impact:      8.3,
		Priority:    models.PriorityMedium,
	},
}

// MockSource generates realistic household usage. It is safe for concurrent use.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewMockSource creates a mock source; the same seed yields the same data
func NewMockSource(seed int64) *MockSource {
	return &MockSource{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Daily generates 24 hourly readings for date
func (m *MockSource) Daily(_ context.Context, date time.Time) (models.DailyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	morningBase := 2 + m.rng.Float64()*3
	middayBase := 4 + m.rng.Float64()*3
	eveningPeak := 6 + m.rng.Float64()*4
	nightBase := 1 + m.rng.Float64()*2

	day := startOfDay(date)
	readings := make([]models.EnergyReading, 0, 24)
	for hour := 0; hour < 24; hour++ {
		var value float64
		switch {
		case hour < 6:
			value = nightBase * (0.8 + m.rng.Float64()*0.4)
		case hour < 11:
			value = morningBase * (0.9 + m.rng.Float64()*0.6)
		case hour < 17:
			value = middayBase * (0.9 + m.rng.Float64()*0.3)
		case hour < 22:
			value = eveningPeak * (0.9 + m.rng.Float64()*0.2)
		default:
			value = nightBase * (1 + m.rng.Float64()*0.5)
		}

		readings = append(readings, models.EnergyReading{
			Timestamp: time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location()),
			Value:     round2(value),
			Unit:      Unit,
		})
	}

	return NewDailyAggregate(day, readings), nil
}

// RealTime returns the current consumption, shaped by time of day
func (m *MockSource) RealTime(_ context.Context) (models.EnergyReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	hour := now.Hour()

	var base float64
	switch {
	case hour >= 6 && hour < 11:
		base = 3 + m.rng.Float64()*2
	case hour >= 11 && hour < 17:
		base = 4 + m.rng.Float64()*3
	case hour >= 17 && hour < 22:
		base = 5 + m.rng.Float64()*4
	default:
		base = 1 + m.rng.Float64()*1.5
	}

	sign := 1.0
	if m.rng.Float64() <= 0.5 {
		sign = -1
	}
	value := base + sign*m.rng.Float64()*0.5
	if value < 0.1 {
		value = 0.1
	}

	return models.EnergyReading{Timestamp: now, Value: round2(value), Unit: Unit}, nil
}

// Breakdown splits consumption over five categories summing to 100%
func (m *MockSource) Breakdown(_ context.Context) ([]models.UsageBreakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lighting := 20 + m.rng.Intn(10)
	heating := 25 + m.rng.Intn(15)
	appliances := 15 + m.rng.Intn(10)
	electronics := 10 + m.rng.Intn(10)
	other := 100 - (lighting + heating + appliances + electronics)

	entry := func(category string, pct int) models.UsageBreakdown {
		return models.UsageBreakdown{Category: category, Percentage: pct, Value: round2(float64(pct) * 0.1)}
	}
	return []models.UsageBreakdown{
		entry("Lighting", lighting),
		entry("Heating", heating),
		entry("Appliances", appliances),
		entry("Electronics", electronics),
		entry("Other", other),
	}, nil
}

// Tips returns two or three of the canned insights in random order
func (m *MockSource) Tips(_ context.Context) ([]models.EnergyInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tips := make([]models.EnergyInsight, len(mockInsights))
	copy(tips, mockInsights)
	m.rng.Shuffle(len(tips), func(i, j int) { tips[i], tips[j] = tips[j], tips[i] })
	return tips[:2+m.rng.Intn(2)], nil
}
