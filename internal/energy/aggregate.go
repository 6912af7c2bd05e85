// Package energy acquires energy readings and reduces them to the statistics
// used by insights.
package energy

import (
	"fmt"
	"math"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

// Unit is the unit of every reading this package produces
const Unit = "kWh"

// NewDailyAggregate derives totals and the peak hour from a day of readings.
// The average is per hour over 24 hours regardless of how many readings exist.
func NewDailyAggregate(date time.Time, readings []models.EnergyReading) models.DailyAggregate {
	agg := models.DailyAggregate{
		Date:     startOfDay(date),
		Readings: readings,
	}
	if len(readings) == 0 {
		return agg
	}

	var total float64
	peak := readings[0]
	for _, r := range readings {
		total += r.Value
		if r.Value > peak.Value {
			peak = r
		}
	}

	hour := peak.Timestamp.Hour()
	agg.TotalConsumption = round2(total)
	agg.AverageConsumption = round2(total / 24)
	agg.PeakValue = peak.Value
	agg.PeakTime = fmt.Sprintf("%d:00-%d:00", hour, hour+1)
	return agg
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
